package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for API clients, HTML otherwise

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/rowmap/internal/core"
	"github.com/JonMunkholm/rowmap/internal/logging"
	"github.com/JonMunkholm/rowmap/internal/mapper"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusForError picks the HTTP status for an error returned by the service.
// Mapping failures are server-side: the definition and its target disagree.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrQueryNotFound), errors.Is(err, mapper.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, core.ErrArgCount), errors.Is(err, core.ErrInvalidArg):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and returns a
// user-friendly one in the format the client asked for.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	userMsg := core.MapError(err)
	if errors.Is(err, core.ErrBusy) {
		w.Header().Set("Retry-After", "5")
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		writeJSON(w, r, status, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}
	render(w, r, status, page("Error", errorAlert(userMsg)))
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
