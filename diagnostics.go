package pinblob

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pinblob/storage"
)

// Diagnosis describes the configured storage secret and whether the store
// accepts it. The secret itself is never included.
type Diagnosis struct {
	Success     bool               `json:"success"`
	Error       string             `json:"error,omitempty"`
	Driver      string             `json:"driver"`
	TokenKey    string             `json:"tokenKey,omitempty"`
	TokenExists bool               `json:"tokenExists"`
	TokenInfo   *storage.TokenInfo `json:"tokenInfo,omitempty"`
	Environment string             `json:"environment"`
	Verified    bool               `json:"verified"`
	Status      int                `json:"status,omitempty"`
	StatusText  string             `json:"statusText,omitempty"`
}

// Diagnose analyzes the secret gw reads and probes the store with it.
func Diagnose(ctx context.Context, gw *storage.Gateway, environment string) Diagnosis {
	d := Diagnosis{Driver: gw.Driver(), Environment: environment, TokenExists: true}

	if creds := gw.Credentials(); creds != nil {
		d.TokenKey = creds.Key
		raw, ok := creds.Raw()
		if !ok {
			d.TokenExists = false
			d.Error = (&storage.ConfigurationError{Key: creds.Key}).Error()
			return d
		}
		info := storage.AnalyzeToken(raw)
		d.TokenInfo = &info
	}

	err := gw.Verify(ctx)
	var uerr *storage.UpstreamError
	if errors.As(err, &uerr) {
		d.Status = uerr.Status
		d.StatusText = http.StatusText(uerr.Status)
	}
	if err != nil {
		d.Error = err.Error()
		return d
	}
	d.Success, d.Verified = true, true
	return d
}

type checkTokenResponse struct {
	Success     bool   `json:"success"`
	Driver      string `json:"driver"`
	TokenKey    string `json:"tokenKey,omitempty"`
	TokenExists bool   `json:"tokenExists"`
	Environment string `json:"environment"`
}

func (a *App) handleCheckToken(c echo.Context) error {
	resp := checkTokenResponse{
		Success:     true,
		Driver:      a.Gateway.Driver(),
		TokenExists: true,
		Environment: a.Config.Environment,
	}
	if creds := a.Gateway.Credentials(); creds != nil {
		resp.TokenKey = creds.Key
		_, resp.TokenExists = creds.Raw()
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleTokenDiagnostic(c echo.Context) error {
	return c.JSON(http.StatusOK, Diagnose(c.Request().Context(), a.Gateway, a.Config.Environment))
}
