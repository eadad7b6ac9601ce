package api

import (
	"net/http"

	"github.com/Veraticus/fti/internal/model"
)

const defaultAlertLimit = 20

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request, userID string) {
	alerts, err := s.store.ListAlerts(r.Context(), userID, defaultAlertLimit)
	if err != nil {
		s.writeFailure(w, r, err, "failed to load alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": toAlertResponses(alerts)})
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.store.MarkAlertRead(r.Context(), userID, r.PathValue("id")); err != nil {
		s.writeFailure(w, r, err, "failed to update alert")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetAlertSettings returns the saved settings, or every rule enabled when the
// user never saved any.
func (s *Server) handleGetAlertSettings(w http.ResponseWriter, r *http.Request, userID string) {
	settings, err := s.store.GetAlertSettings(r.Context(), userID)
	if err != nil {
		if statusFor(err) != http.StatusNotFound {
			s.writeFailure(w, r, err, "failed to load alert settings")
			return
		}
		d := model.DefaultAlertSettings(userID)
		settings = &d
	}
	writeJSON(w, http.StatusOK, toAlertSettingsResponse(*settings))
}

func (s *Server) handleSaveAlertSettings(w http.ResponseWriter, r *http.Request, userID string) {
	var req alertSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err, "failed to save alert settings")
		return
	}

	settings := model.DefaultAlertSettings(userID)
	setIf(&settings.BudgetAlert, req.BudgetAlert)
	setIf(&settings.LargeTransactionAlert, req.LargeTransactionAlert)
	setIf(&settings.GoalAlert, req.GoalAlert)
	setIf(&settings.RecurringAlert, req.RecurringAlert)

	if err := s.store.SaveAlertSettings(r.Context(), &settings); err != nil {
		s.writeFailure(w, r, err, "failed to save alert settings")
		return
	}
	writeJSON(w, http.StatusOK, toAlertSettingsResponse(settings))
}

func setIf(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
