package storage

import (
	"os"
	"strings"
)

// LookupFunc reads a configuration value. os.LookupEnv is the default.
type LookupFunc func(key string) (string, bool)

// Resolver reads a storage secret from process configuration each time it is
// asked, so a rotated token takes effect without a restart.
type Resolver struct {
	Key    string
	lookup LookupFunc
}

// NewResolver returns a Resolver for key. A nil lookup reads the environment.
func NewResolver(key string, lookup LookupFunc) *Resolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Resolver{Key: key, lookup: lookup}
}

// Resolve returns the normalized secret or a *ConfigurationError when it is
// unset or empty after normalization.
func (r *Resolver) Resolve() (string, error) {
	raw, _ := r.lookup(r.Key)
	token := NormalizeToken(raw)
	if token == "" {
		return "", &ConfigurationError{Key: r.Key}
	}
	return token, nil
}

// Raw returns the configured value exactly as set, for diagnostics.
func (r *Resolver) Raw() (string, bool) {
	v, ok := r.lookup(r.Key)
	return v, ok && v != ""
}

// NormalizeToken strips surrounding whitespace and one leading and one
// trailing quote character. Operators often paste tokens into .env files
// with the quotes included.
func NormalizeToken(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}

// HasQuotes reports whether raw starts or ends with a quote character.
func HasQuotes(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	first, last := raw[0], raw[len(raw)-1]
	return first == '"' || first == '\'' || last == '"' || last == '\''
}
