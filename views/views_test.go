package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pinblob/storage"
)

func render(t *testing.T, cmp templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := cmp.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func TestGalleryVisitor(t *testing.T) {
	now := time.Now()
	html := render(t, Gallery(GalleryPage{
		Site: SiteConfig{Name: "Pins"},
		Images: []storage.StoredImage{
			{URL: "https://blob.test/cat-1.png", Pathname: "cat-1.png", Size: 2048, UploadedAt: &now},
		},
	}))
	if !strings.Contains(html, `src="https://blob.test/cat-1.png"`) {
		t.Error("image missing from grid")
	}
	if strings.Contains(html, `class="delete"`) || strings.Contains(html, "upload-form") {
		t.Error("visitor should not see admin controls")
	}
	if !strings.Contains(html, "/login") {
		t.Error("login link missing")
	}
}

func TestGalleryAdmin(t *testing.T) {
	html := render(t, Gallery(GalleryPage{
		Site:      SiteConfig{Name: "Pins"},
		IsAdmin:   true,
		CanUpload: true,
		Images:    []storage.StoredImage{{URL: "https://blob.test/a.png", Pathname: "a.png"}},
	}))
	for _, want := range []string{`data-pathname="a.png"`, "upload-form", `id="logout"`} {
		if !strings.Contains(html, want) {
			t.Errorf("admin page missing %q", want)
		}
	}
}

func TestGalleryStates(t *testing.T) {
	empty := render(t, Gallery(GalleryPage{Site: SiteConfig{Name: "Pins"}}))
	if !strings.Contains(empty, "No images yet.") {
		t.Error("empty state missing")
	}
	failed := render(t, Gallery(GalleryPage{
		Site:    SiteConfig{Name: "Pins"},
		Error:   "<boom>",
		Details: "Make sure BLOB_READ_WRITE_TOKEN is properly set",
	}))
	if !strings.Contains(failed, "&lt;boom&gt;") || strings.Contains(failed, "<boom>") {
		t.Error("error text must be escaped")
	}
	if !strings.Contains(failed, "BLOB_READ_WRITE_TOKEN") {
		t.Error("remediation hint missing")
	}
}

func TestCaption(t *testing.T) {
	img := storage.StoredImage{Size: 1536, Width: 4, Height: 3}
	if got := Caption(img); got != "1.5 KiB · 4×3" {
		t.Errorf("Caption = %q", got)
	}
	if got := Caption(storage.StoredImage{}); got != "" {
		t.Errorf("Caption of empty image = %q", got)
	}
}

func TestAltText(t *testing.T) {
	if got := AltText("my-cat-2abc.png"); got != "my cat 2abc" {
		t.Errorf("AltText = %q", got)
	}
}
