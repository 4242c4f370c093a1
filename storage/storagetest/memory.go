// Package storagetest provides an in-memory storage.Driver for tests.
package storagetest

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/eringen/pinblob/storage"
)

var _ storage.Driver = (*Memory)(nil)

// Memory keeps objects in a map and counts every call that would have reached
// the network.
type Memory struct {
	mu      sync.Mutex
	objects map[string]storage.StoredImage
	data    map[string][]byte
	calls   int
	lastPut storage.PutOptions

	// Err, when set, is returned by every operation.
	Err error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]storage.StoredImage),
		data:    make(map[string][]byte),
	}
}

func (m *Memory) Name() string { return "memory" }

// Calls returns how many driver operations ran.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPut returns the options of the most recent Put.
func (m *Memory) LastPut() storage.PutOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPut
}

// Bytes returns the stored content of pathname.
func (m *Memory) Bytes(pathname string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[pathname]
	return b, ok
}

func (m *Memory) List(ctx context.Context) ([]storage.StoredImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]storage.StoredImage, 0, len(m.objects))
	for _, img := range m.objects {
		out = append(out, img)
	}
	return out, nil
}

func (m *Memory) Put(ctx context.Context, name string, body io.Reader, opts storage.PutOptions) (storage.StoredImage, error) {
	m.mu.Lock()
	m.calls++
	m.lastPut = opts
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return storage.StoredImage{}, err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return storage.StoredImage{}, err
	}
	pathname := storage.SuffixedPathname(name)
	now := time.Now().UTC()
	img := storage.StoredImage{
		URL:         "https://blob.test/" + pathname,
		Pathname:    pathname,
		Size:        int64(len(b)),
		UploadedAt:  &now,
		ContentType: opts.ContentType,
	}
	m.mu.Lock()
	m.objects[pathname] = img
	m.data[pathname] = b
	m.mu.Unlock()
	return img, nil
}

func (m *Memory) Delete(ctx context.Context, pathname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return m.Err
	}
	delete(m.objects, pathname)
	delete(m.data, pathname)
	return nil
}

func (m *Memory) Probe(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Err
}
