package pinblob

import (
	"time"

	"github.com/eringen/pinblob/storage"
)

// SiteConfig holds all configuration for a PinBlob site. The struct tags are
// read by caarlos0/env; zero values are filled by setDefaults so the struct
// can also be built by hand. Storage secrets and the admin credential are not
// part of SiteConfig; they are looked up on each use.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // default "PinBlob"
	URL         string `env:"SITE_URL"`         // default "http://localhost:3000"
	Description string `env:"SITE_DESCRIPTION"`
	Environment string `env:"APP_ENV"` // reported by diagnostics, default "development"

	Addr           string        `env:"ADDR"`             // default ":3000"
	MaxRequestBody string        `env:"MAX_REQUEST_BODY"` // default "32M"
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE"`   // default 10s

	SessionSecret string `env:"SESSION_SECRET"` // required
	SessionMaxAge int    `env:"SESSION_MAX_AGE"`
	CookieSecure  bool   `env:"COOKIE_SECURE"`
	PublicUploads bool   `env:"PUBLIC_UPLOADS"`

	Driver         string        `env:"STORAGE_DRIVER"`  // vercel, s3, gcs or local
	StorageTimeout time.Duration `env:"STORAGE_TIMEOUT"` // default 30s
	BlobAPIURL     string        `env:"BLOB_API_URL"`

	S3    S3Config    `envPrefix:"S3_"`
	GCS   GCSConfig   `envPrefix:"GCS_"`
	Local LocalConfig `envPrefix:"LOCAL_"`
}

// S3Config configures the s3 driver. The secret key is S3_SECRET_ACCESS_KEY.
type S3Config struct {
	Bucket        string `env:"BUCKET"`
	Region        string `env:"REGION"`
	Endpoint      string `env:"ENDPOINT"`
	AccessKeyID   string `env:"ACCESS_KEY_ID"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	UsePathStyle  bool   `env:"USE_PATH_STYLE"`
	PublicACL     bool   `env:"PUBLIC_ACL"`
	PartSizeMB    int64  `env:"PART_SIZE_MB"`
	Concurrency   int    `env:"CONCURRENCY"`
}

// GCSConfig configures the gcs driver. The credential is GCS_CREDENTIALS_JSON.
type GCSConfig struct {
	Bucket        string `env:"BUCKET"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	Endpoint      string `env:"ENDPOINT"`
	ChunkSize     int    `env:"CHUNK_SIZE"`
	PublicACL     bool   `env:"PUBLIC_ACL"`
}

// LocalConfig configures the local driver.
type LocalConfig struct {
	Dir          string `env:"STORAGE_DIR"`   // default "data/files"
	DatabasePath string `env:"DATABASE_PATH"` // default "data/blobs.db"
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "PinBlob"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.MaxRequestBody == "" {
		c.MaxRequestBody = "32M"
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = 10 * time.Second
	}
	if c.Driver == "" {
		c.Driver = "vercel"
	}
	if c.StorageTimeout == 0 {
		c.StorageTimeout = 30 * time.Second
	}
	if c.Local.Dir == "" {
		c.Local.Dir = "data/files"
	}
	if c.Local.DatabasePath == "" {
		c.Local.DatabasePath = "data/blobs.db"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithDriver uses d instead of the driver named by SiteConfig.Driver.
// creds may be nil when d reads no secret.
func WithDriver(d storage.Driver, creds *storage.Resolver) Option {
	return func(a *App) {
		a.driver = d
		a.creds = creds
	}
}

// WithLookup replaces os.LookupEnv for secrets and the admin credential.
func WithLookup(fn storage.LookupFunc) Option {
	return func(a *App) {
		a.lookup = fn
	}
}

// WithViews replaces the built-in page templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
