package storage

import (
	"context"
	"fmt"
	"io"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var _ Opener = (*GCS)(nil)

// GCS opens objects in Google Cloud Storage.
type GCS struct {
	client *gcstorage.Client
}

// NewGCS creates a GCS accessor. Key, when set, is the path of a service
// account JSON file; otherwise Application Default Credentials are used.
// The secret has no meaning for GCS and is ignored.
func NewGCS(ctx context.Context, cfg Config) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpointURL(cfg.Endpoint)))
	}
	if cfg.Key != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.Key))
	}

	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Open resolves the object size and returns a File backed by range readers.
func (g *GCS) Open(ctx context.Context, location string) (File, error) {
	bucket, key, err := ParseGCSPath(location)
	if err != nil {
		return nil, err
	}

	obj := g.client.Bucket(bucket).Object(key)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}

	return newRemoteFile(ctx, attrs.Size, func(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
		return obj.NewRangeReader(ctx, offset, length)
	}), nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
