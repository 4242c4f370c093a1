// Package pinblob is an image gallery built with Go, Echo, and templ.
// Visitors browse a masonry grid of images held in an object store; one
// admin, authenticated with a signed cookie, uploads and deletes them.
//
// The storage access token never leaves the server: every storage call goes
// through a storage.Gateway, and destructive API routes are intercepted by the
// admin gate before they reach it.
package pinblob

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/pinblob/storage"
	"github.com/eringen/pinblob/storage/local"
	"github.com/eringen/pinblob/views"
)

// ViewFuncs holds the templ components the app renders pages with.
type ViewFuncs struct {
	Gallery     func(page views.GalleryPage) templ.Component
	Login       func(site views.SiteConfig) templ.Component
	NotFound    func(site views.SiteConfig) templ.Component
	ServerError func(site views.SiteConfig) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Gallery:     views.Gallery,
		Login:       views.Login,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App wires the storage gateway, admin gate, handlers, and templates together.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Gateway *storage.Gateway
	Views   ViewFuncs

	driver       storage.Driver
	creds        *storage.Resolver
	lookup       storage.LookupFunc
	customRoutes []func(*App)
	ready        bool
}

// New creates an App. Nothing is opened until Setup or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  DefaultViews(),
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup opens the storage driver and registers middleware and routes.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("pinblob: SessionSecret is required")
	}

	if a.driver == nil {
		d, creds, err := OpenDriver(ctx, a.Config, a.lookup)
		if err != nil {
			return fmt.Errorf("pinblob: open storage: %w", err)
		}
		a.driver, a.creds = d, creds
	}
	a.Gateway = storage.NewGateway(a.driver, a.creds, a.Echo.Logger)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

// Start runs Setup if needed and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	a.Echo.Logger.Infof("pinblob listening on %s (storage: %s)", a.Config.Addr, a.Gateway.Driver())
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/", a.handleGallery)
	e.GET("/login", a.handleLoginPage)
	e.GET("/robots.txt", handleRobots)
	e.GET("/healthz", handleHealth)

	if files, ok := a.driver.(*local.Store); ok {
		e.GET(filesPrefix+"/:pathname", a.handleFile(files))
	}

	api := e.Group("/api", a.adminGate)
	api.GET("/images", a.handleListImages)
	api.POST("/images/upload", a.handleUploadImage)
	api.POST("/images/delete", a.handleDeleteImage)
	api.POST("/auth/admin-login", a.handleAdminLogin)
	api.POST("/auth/logout", handleAdminLogout)
	api.GET("/auth/check-admin", handleCheckAdmin)
	api.GET("/check-token", a.handleCheckToken)
	api.GET("/token-diagnostic", a.handleTokenDiagnostic)
}

// Close releases storage resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Gateway != nil {
		return a.Gateway.Close()
	}
	if c, ok := a.driver.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}
