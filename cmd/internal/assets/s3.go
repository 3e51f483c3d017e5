package assets

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes the S3-compatible asset host (AWS S3 or MinIO).
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string // optional; set for MinIO / custom endpoints
	PublicURL    string // base URL assets are served from; defaults from endpoint+bucket
}

// S3Host implements Host over an S3-compatible object store.
type S3Host struct {
	client *s3.Client
	bucket string
	public string
}

// NewS3Host builds the client from static credentials. Static credentials are
// deliberate here: the asset host is typically MinIO with root user/password,
// not an AWS role.
func NewS3Host(ctx context.Context, cfg S3Config) (*S3Host, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("assets: empty S3 bucket")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("assets: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		if cfg.BaseEndpoint != "" {
			public = strings.TrimRight(cfg.BaseEndpoint, "/") + "/" + cfg.Bucket
		} else {
			public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Host{
		client: client,
		bucket: cfg.Bucket,
		public: public,
	}, nil
}

func (h *S3Host) Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (Asset, error) {
	if key == "" {
		return Asset{}, fmt.Errorf("assets: empty key")
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}

	if _, err := h.client.PutObject(ctx, in); err != nil {
		return Asset{}, fmt.Errorf("%w: put %s: %v", ErrHostUnavailable, key, err)
	}

	return Asset{
		Key:          key,
		URL:          h.public + "/" + key,
		ResourceType: ResourceTypeForContentType(contentType),
	}, nil
}

func (h *S3Host) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	// DeleteObject is idempotent on S3; an absent key deletes cleanly.
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrHostUnavailable, key, err)
	}
	return nil
}
