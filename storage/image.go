package storage

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// StoredImage is one object in the blob store. Pathname is its identity.
type StoredImage struct {
	URL         string     `json:"url"`
	Pathname    string     `json:"pathname"`
	Size        int64      `json:"size,omitempty"`
	UploadedAt  *time.Time `json:"uploadedAt,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	Width       int        `json:"width,omitempty"`
	Height      int        `json:"height,omitempty"`
}

// SuffixedPathname builds a collision-free object key from an uploaded file
// name, e.g. "My Cat.PNG" becomes "my-cat-<ksuid>.png". Drivers whose store
// does not add its own random suffix use it.
func SuffixedPathname(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	base := Slugify(strings.TrimSuffix(name, path.Ext(name)))
	if base == "" {
		base = "image"
	}
	if ext != "" && Slugify(ext[1:]) != ext[1:] {
		ext = ""
	}
	return base + "-" + ksuid.New().String() + ext
}

// Slugify converts s to a lowercase, dash-separated, URL-safe string.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ProbeDimensions reads the image header from r and rewinds it. ok is false
// when the bytes do not decode; that is never a validation failure.
func ProbeDimensions(r io.ReadSeeker) (width, height int, ok bool) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, 0, false
	}
	cfg, _, decodeErr := image.DecodeConfig(r)
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, 0, false
	}
	if decodeErr != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
