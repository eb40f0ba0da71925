package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Options configures an S3 Client.
type S3Options struct {
	Endpoint   string // optional, for MinIO/R2
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PublicURL  string        // optional base URL for a public bucket
	KeyPrefix  string        // e.g. "audio/"
	PresignTTL time.Duration // lifetime of presigned URLs when PublicURL is empty
}

// Client wraps S3 storage operations
type Client struct {
	s3Client   *s3.Client
	bucket     string
	publicURL  string
	keyPrefix  string
	presignTTL time.Duration
}

// NewClient creates a new S3 storage client
func NewClient(ctx context.Context, opts S3Options) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		configOpts = append(configOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	if opts.Endpoint != "" {
		configOpts = append(configOpts, config.WithBaseEndpoint(opts.Endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Path-style addressing for MinIO; checksums only when required so R2 works.
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.Endpoint != ""
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	presignTTL := opts.PresignTTL
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}

	log.Info().
		Str("endpoint", opts.Endpoint).
		Str("bucket", opts.Bucket).
		Msg("S3 client initialized")

	return &Client{
		s3Client:   s3Client,
		bucket:     opts.Bucket,
		publicURL:  opts.PublicURL,
		keyPrefix:  opts.KeyPrefix,
		presignTTL: presignTTL,
	}, nil
}

// PublicURL returns the public URL for an object key. Empty if publicURL was not configured.
func (c *Client) PublicURL(key string) string {
	if c.publicURL == "" {
		return ""
	}
	return strings.TrimSuffix(c.publicURL, "/") + "/" + key
}

// Save uploads data under the configured key prefix and returns a URL the browser can fetch.
func (c *Client) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := c.keyPrefix + name
	if err := c.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return "", err
	}
	if u := c.PublicURL(key); u != "" {
		return u, nil
	}
	return c.GeneratePresignedURL(ctx, key, c.presignTTL)
}

// Upload uploads data to S3. S3-compatible backends (e.g. R2) require the Content-Length header.
func (c *Client) Upload(ctx context.Context, key string, data io.Reader, contentType string, contentLength int64) error {
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(contentLength),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Info().
		Str("bucket", c.bucket).
		Str("key", key).
		Int64("size", contentLength).
		Msg("Audio uploaded to S3")

	return nil
}

// GeneratePresignedURL generates a presigned URL for downloading an object
func (c *Client) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(c.s3Client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return req.URL, nil
}
