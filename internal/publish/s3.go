package publish

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tuto-go/internal/config"
	"tuto-go/internal/tuto"
)

// bucketAPI is the part of the S3 client the publisher calls directly.
type bucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// uploadAPI is satisfied by *manager.Uploader.
type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Publisher uploads bundles to an S3 bucket or an S3-compatible store.
type S3Publisher struct {
	client   bucketAPI
	uploader uploadAPI
	bucket   string
	prefix   string
}

var _ tuto.Publisher = (*S3Publisher)(nil)

// NewS3Publisher builds a client from cfg. Static keys are used when set,
// otherwise the default AWS credential chain. A custom endpoint switches to
// path-style addressing, as most S3-compatible stores expect.
func NewS3Publisher(ctx context.Context, cfg config.PublishConfig) (*S3Publisher, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 publisher requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Publisher{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
	}, nil
}

// key returns the object key for a bundle name.
func (p *S3Publisher) key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Put uploads the bundle, in parts when it is large.
func (p *S3Publisher) Put(name string, r io.Reader, size int64) error {
	_, err := p.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(p.key(name)),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("uploading %s to s3://%s: %w", name, p.bucket, err)
	}
	return nil
}

// ValidateSetup checks that the bucket exists and is accessible.
func (p *S3Publisher) ValidateSetup() error {
	if _, err := p.client.HeadBucket(context.Background(), &s3.HeadBucketInput{Bucket: aws.String(p.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", p.bucket, err)
	}
	return nil
}
