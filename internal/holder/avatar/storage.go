// Package avatar stores profile pictures in S3-compatible object storage.
// Objects are written and read through short-lived presigned URLs; the
// identity store only keeps the object key.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/quickauth/internal/netx"
	"github.com/google/uuid"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("avatar storage is not configured")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type Config struct {
	Bucket   string
	Region   string
	Endpoint string
	User     string
	Password string
	URLTTL   time.Duration
}

func (c Config) Enabled() bool { return c.Bucket != "" }

type S3Storage struct {
	bucket  string
	ttl     time.Duration
	presign *s3.PresignClient
	http    *http.Client
	now     func() time.Time
}

// NewS3Storage builds a presign client for cfg. A custom endpoint (MinIO,
// localstack) switches to path-style addressing.
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.User != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.User,     // MINIO_ROOT_USER
			cfg.Password, // MINIO_ROOT_PASSWORD
			"",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3Storage{
		bucket:  cfg.Bucket,
		ttl:     ttl,
		presign: s3.NewPresignClient(client),
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}, nil
}

// StorageKey returns a fresh object key for username's avatar.
func StorageKey(now time.Time, username string) string {
	return fmt.Sprintf("avatars/%s/%d/%d/%d/%v", username, now.Year(), now.Month(), now.Day(), uuid.New())
}

// Upload stores data under a new key and returns the key.
func (s *S3Storage) Upload(ctx context.Context, username string, data []byte, contentType string) (string, error) {
	key := StorageKey(s.now(), username)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, s.http, req.URL, contentType, data); err != nil {
		return "", err
	}

	return key, nil
}

// URL returns a presigned GET URL for key.
func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}
