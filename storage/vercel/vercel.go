// Package vercel talks to the Vercel Blob REST API.
package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/pinblob/storage"
)

const (
	// DefaultBaseURL is the public Vercel Blob endpoint.
	DefaultBaseURL = "https://blob.vercel-storage.com"
	// TokenKey is the environment variable holding the read-write token.
	TokenKey = "BLOB_READ_WRITE_TOKEN"

	apiVersion      = "7"
	listPageSize    = 1000
	defaultPartSize = 5 << 20
	maxErrorBody    = 64 << 10
)

// Compile-time check to ensure Client implements storage.Driver.
var _ storage.Driver = (*Client)(nil)

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// PartSize is the chunk size of multipart uploads (default 5MB).
	PartSize int64
}

// Client is a storage.Driver for Vercel Blob. Every request carries the
// bearer token read from the resolver at call time.
type Client struct {
	base     string
	http     *http.Client
	creds    *storage.Resolver
	partSize int64
}

// New returns a Client reading its token from creds.
func New(creds *storage.Resolver, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.PartSize <= 0 {
		opts.PartSize = defaultPartSize
	}
	return &Client{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		http:     opts.HTTPClient,
		creds:    creds,
		partSize: opts.PartSize,
	}
}

func (c *Client) Name() string { return "vercel" }

type blobResult struct {
	URL         string    `json:"url"`
	Pathname    string    `json:"pathname"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
	ContentType string    `json:"contentType"`
}

func (b blobResult) image() storage.StoredImage {
	img := storage.StoredImage{
		URL:         b.URL,
		Pathname:    b.Pathname,
		Size:        b.Size,
		ContentType: b.ContentType,
	}
	if !b.UploadedAt.IsZero() {
		t := b.UploadedAt.UTC()
		img.UploadedAt = &t
	}
	return img
}

type listResult struct {
	Blobs   []blobResult `json:"blobs"`
	Cursor  string       `json:"cursor"`
	HasMore bool         `json:"hasMore"`
}

// List follows the cursor until the store reports no more pages.
func (c *Client) List(ctx context.Context) ([]storage.StoredImage, error) {
	var images []storage.StoredImage
	cursor := ""
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(listPageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		req, err := c.newRequest(ctx, http.MethodGet, "/", q, nil)
		if err != nil {
			return nil, err
		}
		var page listResult
		if err := c.do(req, "list", &page); err != nil {
			return nil, err
		}
		for _, b := range page.Blobs {
			images = append(images, b.image())
		}
		if !page.HasMore || page.Cursor == "" || page.Cursor == cursor {
			break
		}
		cursor = page.Cursor
	}
	return images, nil
}

// Put uploads body in one request, or through the multipart API when
// opts.Multipart is set. The store appends the random suffix.
func (c *Client) Put(ctx context.Context, name string, body io.Reader, opts storage.PutOptions) (storage.StoredImage, error) {
	if opts.Multipart {
		return c.putMultipart(ctx, name, body, opts)
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/"+escapePathname(name), nil, body)
	if err != nil {
		return storage.StoredImage{}, err
	}
	c.setPutHeaders(req, opts)
	if opts.Size > 0 {
		req.ContentLength = opts.Size
	}
	var out blobResult
	if err := c.do(req, "put", &out); err != nil {
		return storage.StoredImage{}, err
	}
	img := out.image()
	if img.Size == 0 {
		img.Size = opts.Size
	}
	return img, nil
}

type mpuCreated struct {
	Key      string `json:"key"`
	UploadID string `json:"uploadId"`
}

type mpuPart struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

func (c *Client) putMultipart(ctx context.Context, name string, body io.Reader, opts storage.PutOptions) (storage.StoredImage, error) {
	q := url.Values{"pathname": {name}}

	req, err := c.newRequest(ctx, http.MethodPost, "/mpu", q, nil)
	if err != nil {
		return storage.StoredImage{}, err
	}
	c.setPutHeaders(req, opts)
	req.Header.Set("x-mpu-action", "create")
	var created mpuCreated
	if err := c.do(req, "multipart create", &created); err != nil {
		return storage.StoredImage{}, err
	}

	var parts []mpuPart
	buf := make([]byte, c.partSize)
	for number := 1; ; number++ {
		n, readErr := io.ReadFull(body, buf)
		if n > 0 {
			req, err := c.newRequest(ctx, http.MethodPost, "/mpu", q, bytes.NewReader(buf[:n]))
			if err != nil {
				return storage.StoredImage{}, err
			}
			c.setMultipartHeaders(req, "upload", created)
			req.Header.Set("x-mpu-part-number", strconv.Itoa(number))
			var part mpuPart
			if err := c.do(req, fmt.Sprintf("multipart upload part %d", number), &part); err != nil {
				return storage.StoredImage{}, err
			}
			parts = append(parts, mpuPart{PartNumber: number, ETag: part.ETag})
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return storage.StoredImage{}, fmt.Errorf("read upload body: %w", readErr)
		}
	}

	payload, err := json.Marshal(parts)
	if err != nil {
		return storage.StoredImage{}, err
	}
	req, err = c.newRequest(ctx, http.MethodPost, "/mpu", q, bytes.NewReader(payload))
	if err != nil {
		return storage.StoredImage{}, err
	}
	c.setMultipartHeaders(req, "complete", created)
	req.Header.Set("Content-Type", "application/json")
	var out blobResult
	if err := c.do(req, "multipart complete", &out); err != nil {
		return storage.StoredImage{}, err
	}
	img := out.image()
	if img.Size == 0 {
		img.Size = opts.Size
	}
	return img, nil
}

// Delete removes pathname. The store answers deletes of unknown objects with
// success; a 404 is treated the same way.
func (c *Client) Delete(ctx context.Context, pathname string) error {
	payload, err := json.Marshal(map[string][]string{"urls": {pathname}})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/delete", nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	err = c.do(req, "delete", nil)
	var uerr *storage.UpstreamError
	if errors.As(err, &uerr) && uerr.Status == http.StatusNotFound {
		return nil
	}
	return err
}

// Probe lists a single blob.
func (c *Client) Probe(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/", url.Values{"limit": {"1"}}, nil)
	if err != nil {
		return err
	}
	return c.do(req, "probe", nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	token, err := c.creds.Resolve()
	if err != nil {
		return nil, err
	}
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-api-version", apiVersion)
	return req, nil
}

func (c *Client) setPutHeaders(req *http.Request, opts storage.PutOptions) {
	req.Header.Set("x-vercel-blob-access", "public")
	req.Header.Set("x-add-random-suffix", "1")
	if opts.ContentType != "" {
		req.Header.Set("x-content-type", opts.ContentType)
	}
}

func (c *Client) setMultipartHeaders(req *http.Request, action string, created mpuCreated) {
	req.Header.Set("x-mpu-action", action)
	req.Header.Set("x-mpu-key", url.QueryEscape(created.Key))
	req.Header.Set("x-mpu-upload-id", created.UploadID)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &storage.UpstreamError{
			Op:     op,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func escapePathname(p string) string {
	segs := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
