package pinblob

import (
	"context"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/eringen/pinblob/storage"
	"github.com/eringen/pinblob/storage/s3store"
)

func TestOpenDriverS3WithCABundle(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()
	bundle := filepath.Join(t.TempDir(), "ca.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(bundle, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AWS_CA_BUNDLE", bundle)
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg := SiteConfig{Driver: "s3", S3: S3Config{Bucket: "pins"}}
	d, creds, err := OpenDriver(context.Background(), cfg, func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("OpenDriver(s3) err = %v", err)
	}
	if _, ok := d.(*s3store.Store); !ok {
		t.Errorf("driver = %T, want *s3store.Store", d)
	}
	if creds == nil || creds.Key != s3store.SecretKey {
		t.Errorf("resolver = %+v", creds)
	}
}

func TestOpenDriverS3RequiresBucket(t *testing.T) {
	_, _, err := OpenDriver(context.Background(), SiteConfig{Driver: "s3"}, nil)
	var cerr *storage.ConfigurationError
	if !errors.As(err, &cerr) || cerr.Key != "S3_BUCKET" {
		t.Fatalf("expected ConfigurationError for S3_BUCKET, got %v", err)
	}
}
