// Package local keeps images on disk with their metadata in SQLite. It is
// meant for development and single-node installs.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/pinblob/storage"
)

// Compile-time check to ensure Store implements storage.Driver.
var _ storage.Driver = (*Store)(nil)

// Store is a storage.Driver writing files under a directory.
type Store struct {
	db      *sql.DB
	dir     string
	baseURL string
	now     func() time.Time
}

// Open opens (or creates) the metadata database at dbPath and the file
// directory dir. baseURL is the URL prefix files are served under.
func Open(dir, dbPath, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// WAL lets the gallery read while an upload commits; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &Store{
		db:      db,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS blobs (
    pathname TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

func (s *Store) Name() string { return "local" }

// List returns every stored blob.
func (s *Store) List(ctx context.Context) ([]storage.StoredImage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pathname, content_type, size, uploaded_at FROM blobs ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []storage.StoredImage
	for rows.Next() {
		var pathname, contentType, uploadedAt string
		var size int64
		if err := rows.Scan(&pathname, &contentType, &size, &uploadedAt); err != nil {
			return nil, err
		}
		images = append(images, s.image(pathname, contentType, size, uploadedAt))
	}
	return images, rows.Err()
}

// Put writes the file first and records it afterwards, so a listed blob
// always has its bytes on disk.
func (s *Store) Put(ctx context.Context, name string, body io.Reader, opts storage.PutOptions) (storage.StoredImage, error) {
	pathname := storage.SuffixedPathname(name)
	dst := filepath.Join(s.dir, pathname)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return storage.StoredImage{}, fmt.Errorf("create %s: %w", pathname, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return storage.StoredImage{}, fmt.Errorf("write %s: %w", pathname, err)
	}

	uploadedAt := s.now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO blobs (pathname, content_type, size, uploaded_at) VALUES (?, ?, ?, ?)`,
		pathname, opts.ContentType, n, uploadedAt); err != nil {
		os.Remove(dst)
		return storage.StoredImage{}, err
	}
	return s.image(pathname, opts.ContentType, n, uploadedAt), nil
}

// Delete removes the record and the file. Missing blobs are not an error.
func (s *Store) Delete(ctx context.Context, pathname string) error {
	clean, ok := cleanPathname(pathname)
	if !ok {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE pathname = ?`, clean); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, clean)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Probe pings the database and checks the file directory.
func (s *Store) Probe(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Lookup returns the on-disk path and content type of a stored blob.
func (s *Store) Lookup(ctx context.Context, pathname string) (string, string, error) {
	clean, ok := cleanPathname(pathname)
	if !ok {
		return "", "", os.ErrNotExist
	}
	var contentType string
	err := s.db.QueryRowContext(ctx, `SELECT content_type FROM blobs WHERE pathname = ?`, clean).Scan(&contentType)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", os.ErrNotExist
	}
	if err != nil {
		return "", "", err
	}
	return filepath.Join(s.dir, clean), contentType, nil
}

func (s *Store) image(pathname, contentType string, size int64, uploadedAt string) storage.StoredImage {
	img := storage.StoredImage{
		URL:         s.baseURL + "/" + pathname,
		Pathname:    pathname,
		Size:        size,
		ContentType: contentType,
	}
	if t, err := time.Parse(time.RFC3339Nano, uploadedAt); err == nil {
		img.UploadedAt = &t
	}
	return img
}

// cleanPathname rejects anything that is not a single file name.
func cleanPathname(p string) (string, bool) {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))[1:]
	if p == "" || strings.Contains(p, "/") {
		return "", false
	}
	return p, true
}
