// Package gcsstore stores images in a Google Cloud Storage bucket.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/eringen/pinblob/storage"
)

// CredentialsKey is the environment variable holding the service account JSON.
const CredentialsKey = "GCS_CREDENTIALS_JSON"

// defaultChunkSize is the resumable upload chunk; it must be a multiple of
// googleapi.MinUploadChunkSize.
const defaultChunkSize = 4 * googleapi.MinUploadChunkSize

// Compile-time check to ensure Store implements storage.Driver.
var _ storage.Driver = (*Store)(nil)

// Opts configures the bucket connection.
type Opts struct {
	Bucket        string
	PublicBaseURL string
	// Endpoint overrides the API endpoint, for emulators.
	Endpoint  string
	ChunkSize int
	// PublicACL sets the publicRead predefined ACL on uploads. Leave it off
	// for buckets with uniform bucket-level access.
	PublicACL bool
}

// Store is a storage.Driver backed by GCS. The client is built from the
// credential on first use and rebuilt when the credential changes.
type Store struct {
	creds *storage.Resolver
	opts  Opts

	mu     sync.Mutex
	client *gcs.Client
	token  string
	// retired holds clients replaced after a credential change. Requests
	// started before the change may still hold their bucket handles, so
	// these are only closed by Close.
	retired []*gcs.Client
}

// New returns a Store. No connection is made until the first operation.
func New(creds *storage.Resolver, opts Opts) (*Store, error) {
	if opts.Bucket == "" {
		return nil, &storage.ConfigurationError{Key: "GCS_BUCKET", Msg: "GCS_BUCKET is required for the gcs driver"}
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	if opts.PublicBaseURL == "" {
		opts.PublicBaseURL = "https://storage.googleapis.com/" + opts.Bucket
	}
	return &Store{creds: creds, opts: opts}, nil
}

func (s *Store) Name() string { return "gcs" }

func (s *Store) bucket(ctx context.Context) (*gcs.BucketHandle, error) {
	token, err := s.creds.Resolve()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil || s.token != token {
		clientOpts := []option.ClientOption{option.WithCredentialsJSON([]byte(token))}
		if s.opts.Endpoint != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(s.opts.Endpoint))
		}
		client, err := gcs.NewClient(context.WithoutCancel(ctx), clientOpts...)
		if err != nil {
			return nil, &storage.ConfigurationError{Key: s.creds.Key, Msg: fmt.Sprintf("%s is not usable: %v", s.creds.Key, err)}
		}
		if s.client != nil {
			s.retired = append(s.retired, s.client)
		}
		s.client, s.token = client, token
	}
	return s.client.Bucket(s.opts.Bucket), nil
}

// List iterates every object in the bucket.
func (s *Store) List(ctx context.Context) ([]storage.StoredImage, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}
	var images []storage.StoredImage
	it := b.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, upstream("list", err)
		}
		images = append(images, s.image(attrs))
	}
	return images, nil
}

// Put streams body to a suffixed object. Multipart uploads use a resumable
// session in ChunkSize pieces; smaller ones go in a single request.
func (s *Store) Put(ctx context.Context, name string, body io.Reader, opts storage.PutOptions) (storage.StoredImage, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return storage.StoredImage{}, err
	}
	key := storage.SuffixedPathname(name)
	w := b.Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.ChunkSize = 0
	if opts.Multipart {
		w.ChunkSize = s.opts.ChunkSize
	}
	if s.opts.PublicACL {
		w.PredefinedACL = "publicRead"
	}
	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return storage.StoredImage{}, upstream("put", err)
	}
	if err := w.Close(); err != nil {
		return storage.StoredImage{}, upstream("put", err)
	}
	img := s.image(w.Attrs())
	if img.Size == 0 {
		img.Size = opts.Size
	}
	return img, nil
}

// Delete removes the object; a missing object is not an error.
func (s *Store) Delete(ctx context.Context, pathname string) error {
	b, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	err = b.Object(pathname).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return upstream("delete", err)
	}
	return nil
}

// Probe reads the bucket attributes.
func (s *Store) Probe(ctx context.Context) error {
	b, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	if _, err := b.Attrs(ctx); err != nil {
		return upstream("probe", err)
	}
	return nil
}

// Close releases the current client and any retired ones.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, c := range s.retired {
		errs = append(errs, c.Close())
	}
	if s.client != nil {
		errs = append(errs, s.client.Close())
	}
	s.client, s.retired = nil, nil
	return errors.Join(errs...)
}

// PublicURL returns the browser-accessible URL for key.
func (s *Store) PublicURL(key string) string {
	return s.opts.PublicBaseURL + "/" + key
}

func (s *Store) image(attrs *gcs.ObjectAttrs) storage.StoredImage {
	if attrs == nil {
		return storage.StoredImage{}
	}
	img := storage.StoredImage{
		URL:         s.PublicURL(attrs.Name),
		Pathname:    attrs.Name,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
	}
	if !attrs.Created.IsZero() {
		t := attrs.Created.UTC()
		img.UploadedAt = &t
	}
	return img
}

func upstream(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &storage.UpstreamError{Op: op, Status: gerr.Code, Body: gerr.Message, Err: err}
	}
	if errors.Is(err, gcs.ErrBucketNotExist) {
		return &storage.UpstreamError{Op: op, Status: 404, Body: err.Error(), Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
