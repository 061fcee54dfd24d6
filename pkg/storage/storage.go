// Package storage issues presigned upload URLs for product images on any
// S3-compatible object store (MinIO in development, S3 in production).
//
// Browsers PUT image bytes straight to the bucket; the API only hands out
// short-lived URLs and records the resulting object keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/logger"
)

// ErrUnavailable is returned by every method when storage is disabled.
var ErrUnavailable = errors.New("object storage is not configured")

// ErrUnsupportedContentType rejects uploads that are not images.
var ErrUnsupportedContentType = errors.New("unsupported image content type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadURL is a presigned PUT target.
type UploadURL struct {
	URL       string    `json:"upload_url"`
	Key       string    `json:"object_key"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store presigns uploads into one bucket. The zero value, and a Store built
// with storage disabled, fail every call with ErrUnavailable.
type Store struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	ttl        time.Duration
	publicBase string
	log        logger.Logger
	now        func() time.Time
}

// New builds a Store from cfg. With cfg.StorageEnabled false it returns a
// disabled Store and no error.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Store, error) {
	if !cfg.StorageEnabled {
		log.Info("object storage disabled")
		return &Store{log: log, now: time.Now}, nil
	}
	if cfg.MinioBucket == "" || cfg.MinioRootUser == "" || cfg.MinioRootPassword == "" {
		return nil, errors.New("storage: bucket and credentials are required")
	}

	endpoint := cfg.MinioEndpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "http://"
		if cfg.MinioUseSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.MinioRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.MinioRootUser, cfg.MinioRootPassword, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}

	// MinIO only serves path-style URLs.
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(endpoint)
	})

	ttl := cfg.StoragePresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Store{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.MinioBucket,
		ttl:        ttl,
		publicBase: strings.TrimRight(cfg.StoragePublicBaseURL, "/"),
		log:        log,
		now:        time.Now,
	}, nil
}

// Enabled reports whether uploads can be presigned.
func (s *Store) Enabled() bool {
	return s != nil && s.presign != nil
}

// EnsureBucket creates the bucket when it is missing.
func (s *Store) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return ErrUnavailable
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("storage: head bucket: %w", err)
	}

	s.log.InfoContext(ctx, "creating storage bucket", "bucket", s.bucket)
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("storage: create bucket: %w", err)
	}
	return nil
}

// PresignProductImage returns a PUT URL for a new image of productID.
func (s *Store) PresignProductImage(ctx context.Context, productID uuid.UUID, contentType string) (*UploadURL, error) {
	if !s.Enabled() {
		return nil, ErrUnavailable
	}
	key, err := ProductImageKey(productID, contentType, s.now())
	if err != nil {
		return nil, err
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("storage: presign %s: %w", key, err)
	}

	return &UploadURL{
		URL:       req.URL,
		Key:       key,
		PublicURL: s.publicBase + "/" + path.Join(s.bucket, key),
		ExpiresAt: s.now().Add(s.ttl),
	}, nil
}

// Ping checks bucket reachability. A disabled Store is always healthy.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("storage: head bucket: %w", err)
	}
	return nil
}

// ProductImageKey builds "products/{productID}/{yyyy}/{mm}/{uuid}{ext}".
func ProductImageKey(productID uuid.UUID, contentType string, now time.Time) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	now = now.UTC()
	return fmt.Sprintf("products/%s/%04d/%02d/%s%s", productID, now.Year(), int(now.Month()), uuid.NewString(), ext), nil
}
