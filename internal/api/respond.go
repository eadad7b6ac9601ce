package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
	"github.com/Veraticus/fti/internal/storage"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks request errors detected by the handlers themselves.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps an error to the HTTP status it should be reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidTransaction),
		errors.Is(err, model.ErrInvalidBudget),
		errors.Is(err, model.ErrInvalidGoal),
		errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInvalidKind),
		errors.Is(err, model.ErrUnknownCategory),
		errors.Is(err, model.ErrInvalidMonth),
		errors.Is(err, storage.ErrEmptyString),
		errors.Is(err, storage.ErrNilParameter),
		errors.Is(err, storage.ErrInvalidLimit),
		errors.Is(err, storage.ErrInvalidDateRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure reports err to the client. Server-side failures are logged and
// their detail is withheld.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		common.LogError(r.Context(), s.logger, err, msg, common.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON payload")
	}
	return nil
}

// queryLimit reads a positive limit parameter, capped at maxLimit.
func queryLimit(r *http.Request, def, maxLimit int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, badRequest("limit must be a positive integer")
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}

// queryMonth reads an optional YYYY-MM month parameter. The zero month is returned
// when it is absent.
func queryMonth(r *http.Request) (model.Month, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return model.Month{}, nil
	}
	return model.ParseMonth(raw)
}

// parseDate accepts RFC 3339 timestamps and plain dates. Plain dates are midnight in loc.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	return time.Time{}, badRequest("invalid date %q", raw)
}
