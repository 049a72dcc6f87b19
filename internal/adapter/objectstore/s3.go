package objectstore

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"harvest/config"
	"harvest/internal/domain"
	"harvest/internal/port"
)

// S3Store uploads objects to a single bucket with a private ACL.
type S3Store struct {
	bucket  string
	client  *s3.Client
	presign *s3.PresignClient
}

var _ port.ObjectStore = (*S3Store)(nil)

// NewS3Store builds a client from the upload configuration. Credentials come
// from the configured environment variables when both names are set,
// otherwise from the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg config.UploadConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("upload.bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyEnv != "" && cfg.SecretKeyEnv != "" {
		accessKey := os.Getenv(cfg.AccessKeyEnv)
		secretKey := os.Getenv(cfg.SecretKeyEnv)
		if accessKey == "" {
			return nil, fmt.Errorf("%w: $%s is empty", domain.ErrMissingCredential, cfg.AccessKeyEnv)
		}
		if secretKey == "" {
			return nil, fmt.Errorf("%w: $%s is empty", domain.ErrMissingCredential, cfg.SecretKeyEnv)
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newS3Store(awsCfg, cfg), nil
}

func newS3Store(awsCfg aws.Config, cfg config.UploadConfig) *S3Store {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &S3Store{
		bucket:  cfg.Bucket,
		client:  client,
		presign: s3.NewPresignClient(client),
	}
}

// Put uploads obj.Body under obj.Key. The body should be an io.ReadSeeker
// so the request payload can be signed over plain HTTP endpoints.
func (s *S3Store) Put(ctx context.Context, obj port.PutObject) error {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(obj.Key),
		Body:     obj.Body,
		ACL:      types.ObjectCannedACLPrivate,
		Metadata: obj.Metadata,
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, obj.Key, err)
	}
	return nil
}

// PresignGet returns a query-string authenticated GET URL for key.
func (s *S3Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 || expiry > config.MaxPresignExpiry {
		return "", fmt.Errorf("presign expiry %s out of range (0, %s]", expiry, config.MaxPresignExpiry)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign s3://%s/%s: %w", s.bucket, key, err)
	}
	return req.URL, nil
}
