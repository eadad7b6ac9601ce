package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/fti/internal/model"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request, userID string) {
	goals, err := s.store.ListGoals(r.Context(), userID)
	if err != nil {
		s.writeFailure(w, r, err, "failed to load goals")
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request, userID string) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err, "failed to create goal")
		return
	}

	goal := model.Goal{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Status:        model.GoalActive,
	}
	if strings.TrimSpace(req.TargetDate) != "" {
		date, err := parseDate(req.TargetDate, s.engine.Location())
		if err != nil {
			s.writeFailure(w, r, err, "failed to create goal")
			return
		}
		goal.TargetDate = date
	}

	if err := s.store.CreateGoal(r.Context(), &goal); err != nil {
		s.writeFailure(w, r, err, "failed to create goal")
		return
	}
	s.invalidate(userID)

	writeJSON(w, http.StatusCreated, goalUpdatedResponse{
		Goal:   toGoalResponse(goal),
		Alerts: toAlertResponses(s.alerts.EvaluateGoal(r.Context(), userID, goal)),
	})
}

// handleUpdateGoal sets a goal's current amount and reports a goal-reached alert
// when the update takes the goal from below its target to at or above it.
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request, userID string) {
	var req goalProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err, "failed to update goal")
		return
	}
	if !req.CurrentAmount.Valid {
		s.writeFailure(w, r, badRequest("current_amount is required"), "failed to update goal")
		return
	}

	previous, err := s.store.GetGoal(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err, "failed to update goal")
		return
	}

	goal, err := s.store.UpdateGoalProgress(r.Context(), userID, previous.ID, req.CurrentAmount.Decimal)
	if err != nil {
		s.writeFailure(w, r, err, "failed to update goal")
		return
	}
	s.invalidate(userID)

	var alerts []model.Alert
	if !previous.Reached() {
		alerts = s.alerts.EvaluateGoal(r.Context(), userID, *goal)
	}

	writeJSON(w, http.StatusOK, goalUpdatedResponse{
		Goal:   toGoalResponse(*goal),
		Alerts: toAlertResponses(alerts),
	})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.store.DeleteGoal(r.Context(), userID, r.PathValue("id")); err != nil {
		s.writeFailure(w, r, err, "failed to delete goal")
		return
	}
	s.invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}
