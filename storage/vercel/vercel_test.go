package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eringen/pinblob/storage"
)

// fakeBlobAPI emulates the subset of the Vercel Blob API the client uses.
type fakeBlobAPI struct {
	t     *testing.T
	token string

	mu      sync.Mutex
	hits    int
	blobs   map[string]blobResult
	order   []string
	parts   map[int][]byte
	counter int
}

func newFakeBlobAPI(t *testing.T, token string) (*fakeBlobAPI, *httptest.Server) {
	t.Helper()
	f := &fakeBlobAPI{t: t, token: token, blobs: make(map[string]blobResult), parts: make(map[int][]byte)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeBlobAPI) suffixed(name string) string {
	f.counter++
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return fmt.Sprintf("%s-r%04d", name, f.counter)
	}
	return fmt.Sprintf("%s-r%04d%s", name[:dot], f.counter, name[dot:])
}

func (f *fakeBlobAPI) store(name, contentType string, size int) blobResult {
	pathname := f.suffixed(name)
	b := blobResult{
		URL:         "https://store.public.blob.test/" + pathname,
		Pathname:    pathname,
		Size:        int64(size),
		UploadedAt:  time.Date(2026, 1, 1, 0, 0, f.counter, 0, time.UTC),
		ContentType: contentType,
	}
	f.blobs[pathname] = b
	f.order = append(f.order, pathname)
	return b
}

func (f *fakeBlobAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++

	if r.Header.Get("Authorization") != "Bearer "+f.token {
		http.Error(w, `{"error":{"code":"forbidden"}}`, http.StatusForbidden)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		// Pages of two, cursor is the start index.
		start := 0
		fmt.Sscanf(r.URL.Query().Get("cursor"), "%d", &start)
		end := start + 2
		if end > len(f.order) {
			end = len(f.order)
		}
		page := listResult{Blobs: []blobResult{}}
		for _, p := range f.order[start:end] {
			if b, ok := f.blobs[p]; ok {
				page.Blobs = append(page.Blobs, b)
			}
		}
		if end < len(f.order) {
			page.HasMore = true
			page.Cursor = fmt.Sprint(end)
		}
		json.NewEncoder(w).Encode(page)

	case r.Method == http.MethodPut && r.URL.Path != "/":
		if r.Header.Get("x-add-random-suffix") != "1" {
			f.t.Errorf("missing x-add-random-suffix header")
		}
		body, _ := io.ReadAll(r.Body)
		b := f.store(strings.TrimPrefix(r.URL.Path, "/"), r.Header.Get("x-content-type"), len(body))
		json.NewEncoder(w).Encode(b)

	case r.Method == http.MethodPost && r.URL.Path == "/mpu":
		f.serveMultipart(w, r)

	case r.Method == http.MethodPost && r.URL.Path == "/delete":
		var req struct {
			URLs []string `json:"urls"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, u := range req.URLs {
			if _, ok := f.blobs[u]; !ok {
				http.Error(w, `{"error":{"code":"not_found"}}`, http.StatusNotFound)
				return
			}
			delete(f.blobs, u)
		}
		w.Write([]byte("null"))

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBlobAPI) serveMultipart(w http.ResponseWriter, r *http.Request) {
	pathname := r.URL.Query().Get("pathname")
	switch r.Header.Get("x-mpu-action") {
	case "create":
		f.parts = make(map[int][]byte)
		json.NewEncoder(w).Encode(mpuCreated{Key: "key/" + pathname, UploadID: "upload-1"})
	case "upload":
		if r.Header.Get("x-mpu-upload-id") != "upload-1" {
			http.Error(w, "bad upload id", http.StatusBadRequest)
			return
		}
		var n int
		fmt.Sscanf(r.Header.Get("x-mpu-part-number"), "%d", &n)
		body, _ := io.ReadAll(r.Body)
		f.parts[n] = body
		json.NewEncoder(w).Encode(mpuPart{ETag: fmt.Sprintf("etag-%d", n)})
	case "complete":
		var parts []mpuPart
		json.NewDecoder(r.Body).Decode(&parts)
		size := 0
		for i, p := range parts {
			if p.PartNumber != i+1 || p.ETag != fmt.Sprintf("etag-%d", i+1) {
				http.Error(w, "bad parts", http.StatusBadRequest)
				return
			}
			size += len(f.parts[p.PartNumber])
		}
		json.NewEncoder(w).Encode(f.store(pathname, r.Header.Get("x-content-type"), size))
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (f *fakeBlobAPI) Hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits
}

func newTestClient(srv *httptest.Server, env map[string]string, partSize int64) *Client {
	creds := storage.NewResolver(TokenKey, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	return New(creds, Options{BaseURL: srv.URL, HTTPClient: srv.Client(), PartSize: partSize})
}

func TestMissingTokenMakesNoRequests(t *testing.T) {
	api, srv := newFakeBlobAPI(t, "tok")
	c := newTestClient(srv, map[string]string{}, 0)
	ctx := context.Background()

	var cerr *storage.ConfigurationError
	if _, err := c.List(ctx); !errors.As(err, &cerr) {
		t.Errorf("List: expected ConfigurationError, got %v", err)
	}
	if _, err := c.Put(ctx, "a.png", strings.NewReader("x"), storage.PutOptions{ContentType: "image/png", Size: 1}); !errors.As(err, &cerr) {
		t.Errorf("Put: expected ConfigurationError, got %v", err)
	}
	if err := c.Delete(ctx, "a.png"); !errors.As(err, &cerr) {
		t.Errorf("Delete: expected ConfigurationError, got %v", err)
	}
	if api.Hits() != 0 {
		t.Errorf("hits = %d, want 0", api.Hits())
	}
}

func TestQuotedTokenIsAccepted(t *testing.T) {
	_, srv := newFakeBlobAPI(t, "vercel_blob_rw_s_x")
	c := newTestClient(srv, map[string]string{TokenKey: `"vercel_blob_rw_s_x"`}, 0)
	if err := c.Probe(context.Background()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
}

func TestWrongTokenIsUpstreamError(t *testing.T) {
	_, srv := newFakeBlobAPI(t, "right")
	c := newTestClient(srv, map[string]string{TokenKey: "wrong"}, 0)
	_, err := c.List(context.Background())
	var uerr *storage.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if uerr.Status != http.StatusForbidden || !strings.Contains(uerr.Body, "forbidden") {
		t.Errorf("unexpected upstream error: %+v", uerr)
	}
}

func TestPutAndListAcrossPages(t *testing.T) {
	_, srv := newFakeBlobAPI(t, "tok")
	c := newTestClient(srv, map[string]string{TokenKey: "tok"}, 0)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		img, err := c.Put(ctx, "cat.png", strings.NewReader("png"), storage.PutOptions{ContentType: "image/png", Size: 3})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !strings.HasPrefix(img.Pathname, "cat-") || !strings.HasSuffix(img.Pathname, ".png") {
			t.Errorf("Pathname = %q", img.Pathname)
		}
		if seen[img.Pathname] {
			t.Fatalf("duplicate pathname %q", img.Pathname)
		}
		seen[img.Pathname] = true
		if img.URL == "" || img.UploadedAt == nil || img.Size != 3 {
			t.Errorf("incomplete result: %+v", img)
		}
	}

	images, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(images) != 5 {
		t.Fatalf("List returned %d images, want 5 (pagination not followed?)", len(images))
	}
	for _, img := range images {
		if !seen[img.Pathname] {
			t.Errorf("unexpected pathname %q", img.Pathname)
		}
	}
}

func TestMultipartUpload(t *testing.T) {
	api, srv := newFakeBlobAPI(t, "tok")
	c := newTestClient(srv, map[string]string{TokenKey: "tok"}, 1024)
	data := bytes.Repeat([]byte("a"), 2500)

	img, err := c.Put(context.Background(), "big.jpg", bytes.NewReader(data), storage.PutOptions{
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Multipart:   true,
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if img.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", img.Size, len(data))
	}
	if len(api.parts) != 3 {
		t.Errorf("parts = %d, want 3", len(api.parts))
	}
	// create + 3 parts + complete
	if api.Hits() != 5 {
		t.Errorf("hits = %d, want 5", api.Hits())
	}
}

func TestDeleteMissingIsSuccess(t *testing.T) {
	_, srv := newFakeBlobAPI(t, "tok")
	c := newTestClient(srv, map[string]string{TokenKey: "tok"}, 0)
	ctx := context.Background()

	img, err := c.Put(ctx, "a.png", strings.NewReader("x"), storage.PutOptions{ContentType: "image/png", Size: 1})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Delete(ctx, img.Pathname); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := c.Delete(ctx, img.Pathname); err != nil {
		t.Fatalf("second Delete should succeed, got %v", err)
	}
	images, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("expected empty listing, got %v", images)
	}
}

func TestEscapePathname(t *testing.T) {
	if got := escapePathname("/my cat.png"); got != "my%20cat.png" {
		t.Errorf("escapePathname = %q", got)
	}
	if got := escapePathname("a/b?.png"); got != "a/b%3F.png" {
		t.Errorf("escapePathname = %q", got)
	}
}
