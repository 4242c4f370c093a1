// Package s3store stores images in an S3-compatible bucket.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/eringen/pinblob/storage"
)

// SecretKey is the environment variable holding the secret access key.
const SecretKey = "S3_SECRET_ACCESS_KEY"

// Compile-time check to ensure Store implements storage.Driver.
var _ storage.Driver = (*Store)(nil)

// Opts configures the bucket connection. The secret access key is not part of
// Opts; it is read through the resolver on every call.
type Opts struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKeyID   string
	PublicBaseURL string
	UsePathStyle  bool
	// PublicACL sets the public-read canned ACL on uploads. Leave it off for
	// buckets with ACLs disabled and a public bucket policy instead.
	PublicACL   bool
	PartSizeMB  int64 // default 5
	Concurrency int   // default 2
	// Timeout bounds each request. The SDK's own buildable client is kept so
	// AWS_CA_BUNDLE and other transport settings still apply.
	Timeout time.Duration
}

// Store is a storage.Driver backed by S3.
type Store struct {
	client      *s3.Client
	creds       *storage.Resolver
	bucket      string
	publicBase  string
	publicACL   bool
	partSize    int64
	concurrency int
}

// New builds an S3 client. No request is made until the first operation.
func New(ctx context.Context, creds *storage.Resolver, opts Opts) (*Store, error) {
	if opts.Bucket == "" {
		return nil, &storage.ConfigurationError{Key: "S3_BUCKET", Msg: "S3_BUCKET is required for the s3 driver"}
	}
	if opts.PartSizeMB <= 0 {
		opts.PartSizeMB = 5
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	provider := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		secret, err := creds.Resolve()
		if err != nil {
			return aws.Credentials{}, err
		}
		return aws.Credentials{
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: secret,
			Source:          "pinblob",
		}, nil
	})

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(provider),
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(opts.Endpoint))
	}
	if opts.Timeout > 0 {
		loadOpts = append(loadOpts, config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(opts.Timeout)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	// The config wraps provider in a credentials cache; the client gets the
	// bare provider so a rotated secret is picked up on the next request.
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		o.Credentials = provider
	})

	publicBase := strings.TrimRight(opts.PublicBaseURL, "/")
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return &Store{
		client:      client,
		creds:       creds,
		bucket:      opts.Bucket,
		publicBase:  publicBase,
		publicACL:   opts.PublicACL,
		partSize:    opts.PartSizeMB * 1024 * 1024,
		concurrency: opts.Concurrency,
	}, nil
}

func (s *Store) Name() string { return "s3" }

// checkCreds fails fast so a missing secret never reaches the SDK.
func (s *Store) checkCreds() error {
	_, err := s.creds.Resolve()
	return err
}

// List pages through the whole bucket.
func (s *Store) List(ctx context.Context) ([]storage.StoredImage, error) {
	if err := s.checkCreds(); err != nil {
		return nil, err
	}
	var images []storage.StoredImage
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, upstream("list", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			img := storage.StoredImage{
				URL:      s.PublicURL(key),
				Pathname: key,
				Size:     aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				t := obj.LastModified.UTC()
				img.UploadedAt = &t
			}
			images = append(images, img)
		}
	}
	return images, nil
}

// Put writes body under a suffixed key. Multipart requests and unseekable
// bodies go through the transfer manager, which splits them into parts.
func (s *Store) Put(ctx context.Context, name string, body io.Reader, opts storage.PutOptions) (storage.StoredImage, error) {
	if err := s.checkCreds(); err != nil {
		return storage.StoredImage{}, err
	}
	key := storage.SuffixedPathname(name)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(opts.ContentType),
	}
	if s.publicACL {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	_, seekable := body.(io.ReadSeeker)
	if opts.Multipart || !seekable {
		uploader := manager.NewUploader(s.client, func(m *manager.Uploader) {
			m.PartSize = s.partSize
			m.Concurrency = s.concurrency
		})
		if _, err := uploader.Upload(ctx, input); err != nil {
			return storage.StoredImage{}, upstream("put", err)
		}
	} else {
		if opts.Size > 0 {
			input.ContentLength = aws.Int64(opts.Size)
		}
		if _, err := s.client.PutObject(ctx, input); err != nil {
			return storage.StoredImage{}, upstream("put", err)
		}
	}

	return storage.StoredImage{
		URL:         s.PublicURL(key),
		Pathname:    key,
		Size:        opts.Size,
		ContentType: opts.ContentType,
	}, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *Store) Delete(ctx context.Context, pathname string) error {
	if err := s.checkCreds(); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(pathname),
	})
	var nsk *types.NoSuchKey
	if err != nil && !errors.As(err, &nsk) {
		return upstream("delete", err)
	}
	return nil
}

// Probe checks that the bucket is reachable with the configured keys.
func (s *Store) Probe(ctx context.Context) error {
	if err := s.checkCreds(); err != nil {
		return err
	}
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return upstream("probe", err)
	}
	return nil
}

// PublicURL returns the browser-accessible URL for key.
func (s *Store) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

func upstream(op string, err error) error {
	var cerr *storage.ConfigurationError
	if errors.As(err, &cerr) {
		return cerr
	}
	var re *awshttp.ResponseError
	if !errors.As(err, &re) {
		return fmt.Errorf("%s: %w", op, err)
	}
	body := re.Error()
	var ae smithy.APIError
	if errors.As(err, &ae) {
		body = ae.ErrorCode() + ": " + ae.ErrorMessage()
	}
	return &storage.UpstreamError{Op: op, Status: re.HTTPStatusCode(), Body: body, Err: err}
}
