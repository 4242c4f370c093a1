package storage

import (
	"errors"
	"testing"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`vercel_blob_rw_abc_123`, "vercel_blob_rw_abc_123"},
		{`"vercel_blob_rw_abc_123"`, "vercel_blob_rw_abc_123"},
		{`'vercel_blob_rw_abc_123'`, "vercel_blob_rw_abc_123"},
		{`"vercel_blob_rw_abc_123`, "vercel_blob_rw_abc_123"},
		{" \"tok\"\n", "tok"},
		{`""`, ""},
		{`"`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeToken(tt.in); got != tt.want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolverMissing(t *testing.T) {
	for _, env := range []map[string]string{
		{},
		{"BLOB_READ_WRITE_TOKEN": ""},
		{"BLOB_READ_WRITE_TOKEN": `""`},
	} {
		r := NewResolver("BLOB_READ_WRITE_TOKEN", mapLookup(env))
		_, err := r.Resolve()
		var cerr *ConfigurationError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected ConfigurationError for %v, got %v", env, err)
		}
		if cerr.Key != "BLOB_READ_WRITE_TOKEN" {
			t.Errorf("Key = %q", cerr.Key)
		}
	}
}

func TestResolverReadsAtCallTime(t *testing.T) {
	env := map[string]string{}
	r := NewResolver("TOKEN", mapLookup(env))
	if _, err := r.Resolve(); err == nil {
		t.Fatal("expected error before token is set")
	}
	env["TOKEN"] = `'secret'`
	got, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "secret" {
		t.Errorf("Resolve = %q, want %q", got, "secret")
	}
}

func TestAnalyzeToken(t *testing.T) {
	info := AnalyzeToken(`"vercel_blob_rw_store42_abcdefghijklmnop"`)
	if !info.HadQuotes {
		t.Error("HadQuotes should be true")
	}
	if info.Format != "vercel_blob" || info.Type != "rw" || info.StoreID != "store42" {
		t.Errorf("unexpected parse: %+v", info)
	}
	if info.FirstChars != "vercel_blo..." {
		t.Errorf("FirstChars = %q", info.FirstChars)
	}
	if info.LastChars != "...lmnop" {
		t.Errorf("LastChars = %q", info.LastChars)
	}

	short := AnalyzeToken("abc")
	if short.Format != "unknown" || short.FirstChars != "..." {
		t.Errorf("short token leaked or parsed: %+v", short)
	}
}
