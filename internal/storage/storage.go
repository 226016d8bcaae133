// Package storage opens columnar files on local disk or in object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Supported remote URI schemes.
const (
	SchemeS3    = "s3"
	SchemeGCS   = "gs"
	SchemeAzure = "az"
	SchemeABFSS = "abfss"
)

// Config holds optional object storage access settings.
// The zero value means ambient credentials and default endpoints.
type Config struct {
	Endpoint string `koanf:"endpoint"`
	Key      string `koanf:"key"`
	Secret   string `koanf:"secret"`
	Region   string `koanf:"region"`
}

// IsZero reports whether no setting is present.
func (c Config) IsZero() bool {
	return c == Config{}
}

// File is an opened file that supports random access, which the parquet
// reader needs to seek to the footer.
type File interface {
	io.ReaderAt
	io.Seeker
	io.Closer
}

// Opener opens a file by location.
type Opener interface {
	Open(ctx context.Context, location string) (File, error)
}

// Scheme returns the remote scheme of location, or "" for a local path.
func Scheme(location string) string {
	for _, s := range []string{SchemeS3, SchemeGCS, SchemeAzure, SchemeABFSS} {
		if strings.HasPrefix(location, s+"://") {
			return s
		}
	}
	return ""
}

// IsRemote reports whether location points at object storage.
func IsRemote(location string) bool {
	return Scheme(location) != ""
}

// NewRemote builds the accessor for the object store location belongs to.
func NewRemote(ctx context.Context, location string, cfg Config) (Opener, error) {
	switch Scheme(location) {
	case SchemeS3:
		return NewS3(ctx, cfg)
	case SchemeGCS:
		return NewGCS(ctx, cfg)
	case SchemeAzure, SchemeABFSS:
		return NewAzure(location, cfg)
	default:
		return nil, fmt.Errorf("unsupported remote location %q", location)
	}
}

// splitLocation strips "<scheme>://" and splits the rest at the first "/".
// The key is taken verbatim: object keys may contain '#', '?' and '%'.
func splitLocation(location, scheme string) (authority, key string, err error) {
	rest, ok := strings.CutPrefix(location, scheme+"://")
	if !ok {
		return "", "", fmt.Errorf("expected %s:// scheme in %q", scheme, location)
	}
	authority, key, _ = strings.Cut(rest, "/")
	return authority, key, nil
}

// parseBucketPath extracts bucket and key from "<scheme>://bucket/path/to/file".
func parseBucketPath(location, scheme string) (bucket, key string, err error) {
	bucket, key, err = splitLocation(location, scheme)
	if err != nil {
		return "", "", err
	}
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in path %q", location)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in path %q", location)
	}
	return bucket, key, nil
}

// ParseS3Path extracts bucket and key from an "s3://bucket/path/to/file" URI.
func ParseS3Path(location string) (bucket, key string, err error) {
	return parseBucketPath(location, SchemeS3)
}

// ParseGCSPath extracts bucket and key from a "gs://bucket/path/to/file" URI.
func ParseGCSPath(location string) (bucket, key string, err error) {
	return parseBucketPath(location, SchemeGCS)
}
