package storage

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// Logger is the subset of echo.Logger the gateway writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Upload is an inbound upload candidate.
type Upload struct {
	Body        io.Reader
	Name        string
	ContentType string
	Size        int64
}

// Gateway exposes list, upload and delete against a Driver. It does not
// retry and does not check authorization; the caller owns both.
type Gateway struct {
	driver Driver
	creds  *Resolver
	log    Logger
	now    func() time.Time
}

// NewGateway wraps d. creds is the resolver d reads its secret from and may be
// nil for drivers that need none. A nil logger logs through gommon.
func NewGateway(d Driver, creds *Resolver, logger Logger) *Gateway {
	if logger == nil {
		logger = log.New("storage")
	}
	return &Gateway{driver: d, creds: creds, log: logger, now: time.Now}
}

// Driver returns the backend name.
func (g *Gateway) Driver() string {
	return g.driver.Name()
}

// Credentials returns the resolver for the backend secret, or nil.
func (g *Gateway) Credentials() *Resolver {
	return g.creds
}

// ListImages returns all stored images, newest first.
func (g *Gateway) ListImages(ctx context.Context) ([]StoredImage, error) {
	images, err := g.driver.List(ctx)
	if err != nil {
		g.log.Errorf("list images via %s: %v", g.driver.Name(), err)
		return nil, err
	}
	if images == nil {
		images = []StoredImage{}
	}
	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i].UploadedAt, images[j].UploadedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return images, nil
}

// UploadImage validates up and stores it. Validation failures return before
// the driver is touched.
func (g *Gateway) UploadImage(ctx context.Context, up Upload) (StoredImage, error) {
	if err := ValidateUpload(up.Size, up.ContentType); err != nil {
		g.log.Warnf("rejected upload %q: %v", up.Name, err)
		return StoredImage{}, err
	}
	if up.Body == nil {
		return StoredImage{}, &ValidationError{Reason: MissingInput, Msg: "No file provided"}
	}
	name := strings.TrimSpace(up.Name)
	if name == "" {
		name = "image"
	}

	var width, height int
	if rs, ok := up.Body.(io.ReadSeeker); ok {
		width, height, _ = ProbeDimensions(rs)
	}

	img, err := g.driver.Put(ctx, name, up.Body, PutOptions{
		ContentType: up.ContentType,
		Size:        up.Size,
		Multipart:   up.Size > MultipartThreshold,
	})
	if err != nil {
		g.log.Errorf("upload %q via %s: %v", name, g.driver.Name(), err)
		return StoredImage{}, err
	}
	if img.Size == 0 {
		img.Size = up.Size
	}
	if img.ContentType == "" {
		img.ContentType = up.ContentType
	}
	if img.UploadedAt == nil {
		now := g.now().UTC()
		img.UploadedAt = &now
	}
	if img.Width == 0 && img.Height == 0 {
		img.Width, img.Height = width, height
	}
	g.log.Infof("uploaded %s (%d bytes) via %s", img.Pathname, img.Size, g.driver.Name())
	return img, nil
}

// DeleteImage removes pathname from the store.
func (g *Gateway) DeleteImage(ctx context.Context, pathname string) error {
	if strings.TrimSpace(pathname) == "" {
		return &ValidationError{Reason: MissingInput, Msg: "No pathname provided"}
	}
	if err := g.driver.Delete(ctx, pathname); err != nil {
		g.log.Errorf("delete %s via %s: %v", pathname, g.driver.Name(), err)
		return err
	}
	g.log.Infof("deleted %s via %s", pathname, g.driver.Name())
	return nil
}

// Verify checks that the configured credential is accepted by the store.
func (g *Gateway) Verify(ctx context.Context) error {
	return g.driver.Probe(ctx)
}

// Close releases driver resources when the driver holds any.
func (g *Gateway) Close() error {
	if c, ok := g.driver.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
