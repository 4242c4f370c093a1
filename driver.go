package pinblob

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eringen/pinblob/storage"
	"github.com/eringen/pinblob/storage/gcsstore"
	"github.com/eringen/pinblob/storage/local"
	"github.com/eringen/pinblob/storage/s3store"
	"github.com/eringen/pinblob/storage/vercel"
)

// OpenDriver builds the driver named by cfg.Driver together with the resolver
// for its secret. The local driver needs no secret and returns a nil resolver.
func OpenDriver(ctx context.Context, cfg SiteConfig, lookup storage.LookupFunc) (storage.Driver, *storage.Resolver, error) {
	cfg.setDefaults()

	switch cfg.Driver {
	case "vercel":
		creds := storage.NewResolver(vercel.TokenKey, lookup)
		httpClient := &http.Client{Timeout: cfg.StorageTimeout}
		return vercel.New(creds, vercel.Options{BaseURL: cfg.BlobAPIURL, HTTPClient: httpClient}), creds, nil

	case "s3":
		creds := storage.NewResolver(s3store.SecretKey, lookup)
		d, err := s3store.New(ctx, creds, s3store.Opts{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKeyID:   cfg.S3.AccessKeyID,
			PublicBaseURL: cfg.S3.PublicBaseURL,
			UsePathStyle:  cfg.S3.UsePathStyle,
			PublicACL:     cfg.S3.PublicACL,
			PartSizeMB:    cfg.S3.PartSizeMB,
			Concurrency:   cfg.S3.Concurrency,
			Timeout:       cfg.StorageTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return d, creds, nil

	case "gcs":
		creds := storage.NewResolver(gcsstore.CredentialsKey, lookup)
		d, err := gcsstore.New(creds, gcsstore.Opts{
			Bucket:        cfg.GCS.Bucket,
			PublicBaseURL: cfg.GCS.PublicBaseURL,
			Endpoint:      cfg.GCS.Endpoint,
			ChunkSize:     cfg.GCS.ChunkSize,
			PublicACL:     cfg.GCS.PublicACL,
		})
		if err != nil {
			return nil, nil, err
		}
		return d, creds, nil

	case "local":
		d, err := local.Open(cfg.Local.Dir, cfg.Local.DatabasePath, filesPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("open local store: %w", err)
		}
		return d, nil, nil
	}
	return nil, nil, &storage.ConfigurationError{
		Key: "STORAGE_DRIVER",
		Msg: fmt.Sprintf("unknown STORAGE_DRIVER %q (want vercel, s3, gcs or local)", cfg.Driver),
	}
}

// OpenGateway opens the configured driver and wraps it in a Gateway.
func OpenGateway(ctx context.Context, cfg SiteConfig, lookup storage.LookupFunc, logger storage.Logger) (*storage.Gateway, error) {
	d, creds, err := OpenDriver(ctx, cfg, lookup)
	if err != nil {
		return nil, err
	}
	return storage.NewGateway(d, creds, logger), nil
}
