package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/eringen/pinblob/storage"
)

// FormatSize renders a byte count for captions, or "" when unknown.
func FormatSize(n int64) string {
	if n <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(n))
}

// Caption is the line under an image: size and relative upload time.
func Caption(img storage.StoredImage) string {
	var parts []string
	if s := FormatSize(img.Size); s != "" {
		parts = append(parts, s)
	}
	if img.Width > 0 && img.Height > 0 {
		parts = append(parts, fmt.Sprintf("%d×%d", img.Width, img.Height))
	}
	if img.UploadedAt != nil {
		parts = append(parts, humanize.Time(*img.UploadedAt))
	}
	return strings.Join(parts, " · ")
}

// AltText derives alt text from a pathname.
func AltText(pathname string) string {
	name := pathname
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "-", " ")
}

// writer accumulates the first write error so templates can be written as a
// flat sequence of calls.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) attr(name, value string) {
	w.raw(" " + name + "=\"" + templ.EscapeString(value) + "\"")
}
