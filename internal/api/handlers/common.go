package handlers

import (
	"errors"
	"net/http"

	"vigil-server/internal/analytics"
	"vigil-server/internal/broadcast"
	"vigil-server/internal/monitor"
)

// ErrNotMonitoring is returned for feed operations while the system is
// not in the Monitoring state.
var ErrNotMonitoring = errors.New("api: system is not monitoring")

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the uniform success body for commands without a
// richer payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// statusFor maps the named pipeline errors to HTTP statuses. Destroyed
// is Gone: the resource can never come back.
func statusFor(err error) int {
	switch {
	case errors.Is(err, monitor.ErrSystemDestroyed), errors.Is(err, broadcast.ErrHubClosed):
		return http.StatusGone
	case errors.Is(err, monitor.ErrInvalidTransition), errors.Is(err, analytics.ErrInvalidOperation), errors.Is(err, ErrNotMonitoring):
		return http.StatusConflict
	case errors.Is(err, broadcast.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
