package storage

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

// DefaultS3Region is used when neither the config nor the ambient AWS
// environment names a region.
const DefaultS3Region = "us-east-1"

// s3API is the subset of *s3.Client used for ranged reads.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ Opener = (*S3)(nil)

// S3 opens objects in S3 or an S3-compatible store.
type S3 struct {
	client s3API
}

// NewS3 creates an S3 accessor. A key or secret selects static credentials;
// otherwise the default AWS credential chain applies. An endpoint switches to
// path-style addressing, which S3-compatible stores expect.
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Key != "" || cfg.Secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = DefaultS3Region
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(cfg.Endpoint))
			o.UsePathStyle = true
		}
	})

	return &S3{client: client}, nil
}

// Open resolves the object size and returns a File backed by ranged GETs.
func (s *S3) Open(ctx context.Context, location string) (File, error) {
	bucket, key, err := ParseS3Path(location)
	if err != nil {
		return nil, err
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	size := aws.ToInt64(head.ContentLength)

	return newRemoteFile(ctx, size, func(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
		})
		if err != nil {
			return nil, err
		}
		return out.Body, nil
	}), nil
}

// endpointURL adds https:// to a bare host.
func endpointURL(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}
