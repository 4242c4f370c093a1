// Package storage is the server-side proxy between the HTTP surface and the
// external object store. It resolves the storage credential, validates
// uploads before any network I/O, and maps provider failures onto
// ConfigurationError, ValidationError and UpstreamError.
package storage

import (
	"context"
	"io"
)

// PutOptions controls how a driver writes one object.
type PutOptions struct {
	ContentType string
	Size        int64
	// Multipart asks for a chunked transfer when the store supports one.
	Multipart bool
}

// Driver is an object store backend. Every method that reaches the network
// must resolve its credential first and return a *ConfigurationError without
// making a request when the credential is missing.
type Driver interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string

	// List returns every stored object, following provider pagination.
	List(ctx context.Context) ([]StoredImage, error)

	// Put stores body under a unique pathname derived from name, with public
	// read access.
	Put(ctx context.Context, name string, body io.Reader, opts PutOptions) (StoredImage, error)

	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, pathname string) error

	// Probe makes the cheapest authenticated call the backend offers.
	Probe(ctx context.Context) error
}
