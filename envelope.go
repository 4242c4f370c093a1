package pinblob

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pinblob/storage"
)

// ErrUnauthorized is returned by the admin gate for gated routes without a
// valid admin session.
var ErrUnauthorized = errors.New("unauthorized")

// Envelope is the JSON body of every /api response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func (a *App) respondError(c echo.Context, err error) error {
	status, env := a.errorEnvelope(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	return c.JSON(status, env)
}

// errorEnvelope maps err to a status code and failure envelope. Storage
// failures carry a hint naming the secret to check.
func (a *App) errorEnvelope(err error) (int, Envelope) {
	var verr *storage.ValidationError
	var cerr *storage.ConfigurationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, Envelope{Error: verr.Error()}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, Envelope{Error: "Unauthorized"}
	case errors.As(err, &cerr):
		return http.StatusInternalServerError, Envelope{Error: cerr.Error(), Details: remediation(cerr.Key)}
	}
	env := Envelope{Error: err.Error()}
	if a.creds != nil {
		env.Details = remediation(a.creds.Key)
	}
	return http.StatusInternalServerError, env
}

func remediation(key string) string {
	return "Make sure " + key + " is properly set in your environment variables without quotes."
}
