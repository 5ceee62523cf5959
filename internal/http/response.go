package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"salesdash/internal/core"
	applog "salesdash/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// clientMessage is the 400 response text for a client input error.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrMonthRequired):
		return "Month is required"
	case errors.Is(err, core.ErrInvalidMonth):
		return "Invalid month: use a month name (March), abbreviation (Mar) or number (3)"
	default:
		return "Invalid request"
	}
}

// writeServiceError maps a service error to a response. Client input errors
// become 400 with a descriptive message; anything else is logged and
// reported as 500 with internalMsg.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, op, internalMsg string) {
	if core.IsClientInput(err) {
		writeJSONError(w, http.StatusBadRequest, clientMessage(err))
		return
	}

	ctx := r.Context()
	sl := applog.NewStructuredLogger(applog.FromContext(ctx).WithComponent(applog.ComponentAnalytics))
	errType := applog.ErrorTypeInternal
	if errors.Is(err, core.ErrUpstream) {
		errType = applog.ErrorTypeUpstream
	}
	sl.LogError(ctx, "Request failed", err, op,
		applog.NewFields().
			WithErrorType(errType).
			WithQuery(r.URL.Query().Get("month"), r.URL.Query().Get("search"), 0, 0))
	writeJSONError(w, http.StatusInternalServerError, internalMsg)
}
