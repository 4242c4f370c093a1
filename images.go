package pinblob

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pinblob/storage"
	"github.com/eringen/pinblob/storage/local"
)

// filesPrefix is where the local driver's files are served.
const filesPrefix = "/files"

func (a *App) handleListImages(c echo.Context) error {
	images, err := a.Gateway.ListImages(c.Request().Context())
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: images})
}

func (a *App) handleUploadImage(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return a.respondError(c, &storage.ValidationError{Reason: storage.MissingInput, Msg: "No file provided"})
		}
		return c.JSON(http.StatusBadRequest, Envelope{Error: "Failed to process form data", Details: err.Error()})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := a.Gateway.UploadImage(c.Request().Context(), storage.Upload{
		Body:        src,
		Name:        file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Size:        file.Size,
	})
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: img})
}

type deleteRequest struct {
	Pathname string `json:"pathname" form:"pathname"`
}

func (a *App) handleDeleteImage(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Envelope{Error: "Invalid request body"})
	}
	if err := a.Gateway.DeleteImage(c.Request().Context(), req.Pathname); err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(http.StatusOK, Envelope{Success: true})
}

func (a *App) handleFile(files *local.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		path, contentType, err := files.Lookup(c.Request().Context(), c.Param("pathname"))
		if errors.Is(err, os.ErrNotExist) {
			return echo.ErrNotFound
		}
		if err != nil {
			return err
		}
		h := c.Response().Header()
		h.Set(echo.HeaderContentType, contentType)
		// Uploads are served from the app's origin; an SVG must not run script here.
		h.Set(echo.HeaderContentSecurityPolicy, "sandbox; default-src 'none'; img-src 'self' data:; style-src 'unsafe-inline'")
		h.Set(echo.HeaderXContentTypeOptions, "nosniff")
		return c.File(path)
	}
}
