package pinblob

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pinblob/views"
)

func (a *App) handleGallery(c echo.Context) error {
	isAdmin := IsAdmin(c)
	page := views.GalleryPage{
		Site:      a.site(),
		IsAdmin:   isAdmin,
		CanUpload: isAdmin || a.Config.PublicUploads,
	}
	images, err := a.Gateway.ListImages(c.Request().Context())
	if err != nil {
		_, env := a.errorEnvelope(err)
		page.Error, page.Details = env.Error, env.Details
	} else {
		page.Images = images
	}
	return Render(c, a.Views.Gallery(page))
}

func handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nDisallow: /api/\nDisallow: /login\n")
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// httpErrorHandler answers /api requests with an envelope and everything else
// with an HTML page.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}

	if strings.HasPrefix(c.Request().URL.Path, "/api/") || c.Request().URL.Path == "/api" {
		_ = c.JSON(code, Envelope{Error: msg})
		return
	}
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(a.site()))
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError(a.site()))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
