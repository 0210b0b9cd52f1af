package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	// DefaultRegion is the default AWS region for flight data buckets.
	DefaultRegion = "us-east-1"
)

// S3SourceConfig configures the S3 source.
type S3SourceConfig struct {
	Bucket      string // S3 bucket name
	Prefix      string // Optional key prefix
	Region      string // AWS region
	EndpointURL string // Optional custom endpoint (for MinIO testing)
}

// S3Source implements Source using AWS S3 with anonymous access.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source creates a new S3 source with anonymous credentials.
func NewS3Source(ctx context.Context, cfg S3SourceConfig) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	// Anonymous credentials for public data buckets
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("", "", "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOpts := []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = true // Required for MinIO compatibility
		},
	}
	if cfg.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		})
	}

	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return &S3Source{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Fetch retrieves the named object from the bucket.
func (s *S3Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

// Close releases resources. For S3Source, this is a no-op.
func (s *S3Source) Close() error {
	return nil
}
