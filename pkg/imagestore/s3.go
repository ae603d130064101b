// Package imagestore uploads avatar images to an S3-compatible object
// store and builds the public URLs they are served from.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds the object-store connection details.
type Config struct {
	Region        string
	Bucket        string
	Endpoint      string // optional, for MinIO-style deployments
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store uploads objects to a fixed bucket.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Store builds an S3 client with static credentials and an optional
// custom endpoint.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// Upload puts the object under the given key, overwriting any previous
// version, and returns a version string for cache busting: the bucket's
// VersionId when versioning is on, the upload timestamp otherwise.
func (s *S3Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	version := aws.ToString(out.VersionId)
	if version == "" {
		version = strconv.FormatInt(time.Now().Unix(), 10)
	}
	return version, nil
}

// PublicURL builds the served URL for a key with the fixed square-crop
// transformation applied by the image proxy in front of the bucket.
func (s *S3Store) PublicURL(key, version string) string {
	return fmt.Sprintf("%s/%s/%s?w=250&h=250&fit=crop&v=%s", s.publicBaseURL, s.bucket, key, version)
}
