package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eringen/pinblob/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "files"), filepath.Join(dir, "data", "blobs.db"), "/files/")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	if err := s.Probe(context.Background()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
}

func TestPutAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	img, err := s.Put(ctx, "cat.png", strings.NewReader("pngdata"), storage.PutOptions{ContentType: "image/png", Size: 7})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !strings.HasPrefix(img.Pathname, "cat-") || !strings.HasSuffix(img.Pathname, ".png") {
		t.Errorf("Pathname = %q", img.Pathname)
	}
	if img.URL != "/files/"+img.Pathname {
		t.Errorf("URL = %q", img.URL)
	}
	if img.Size != 7 {
		t.Errorf("Size = %d, want 7", img.Size)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, img.Pathname))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "pngdata" {
		t.Errorf("file content = %q", data)
	}

	images, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}
	if images[0].ContentType != "image/png" || images[0].UploadedAt == nil {
		t.Errorf("unexpected listing: %+v", images[0])
	}
}

func TestListNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var names []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		img, err := s.Put(ctx, "a.jpg", strings.NewReader("x"), storage.PutOptions{ContentType: "image/jpeg"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		names = append(names, img.Pathname)
	}

	images, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(images) != 3 || images[0].Pathname != names[2] || images[2].Pathname != names[0] {
		t.Errorf("unexpected order: %v", images)
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	img, err := s.Put(ctx, "gone.gif", strings.NewReader("gif"), storage.PutOptions{ContentType: "image/gif"})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, img.Pathname); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.dir, img.Pathname)); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}
	images, _ := s.List(ctx)
	if len(images) != 0 {
		t.Errorf("expected empty listing, got %v", images)
	}

	// Deleting again is fine.
	if err := s.Delete(ctx, img.Pathname); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}

func TestLookup(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	img, err := s.Put(ctx, "dog.webp", strings.NewReader("webp"), storage.PutOptions{ContentType: "image/webp"})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	p, ct, err := s.Lookup(ctx, img.Pathname)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ct != "image/webp" || p != filepath.Join(s.dir, img.Pathname) {
		t.Errorf("Lookup = %q, %q", p, ct)
	}

	for _, bad := range []string{"missing.png", "../blobs.db", "a/b.png", ""} {
		if _, _, err := s.Lookup(ctx, bad); !os.IsNotExist(err) {
			t.Errorf("Lookup(%q) err = %v, want not-exist", bad, err)
		}
	}
}

func TestCleanPathname(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"cat.png", "cat.png", true},
		{"/cat.png", "cat.png", true},
		{"../cat.png", "cat.png", true},
		{"a/b.png", "", false},
		{"..\\..\\x.png", "x.png", true},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := cleanPathname(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("cleanPathname(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
