package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// fetchFunc returns a reader over length bytes starting at offset.
type fetchFunc func(ctx context.Context, offset, length int64) (io.ReadCloser, error)

// rangedReader serves ReadAt with one ranged request per call.
type rangedReader struct {
	ctx   context.Context
	fetch fetchFunc
}

func (r *rangedReader) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	body, err := r.fetch(r.ctx, off, int64(len(p)))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch bytes %d-%d: %w", off, off+int64(len(p))-1, err)
	}
	defer body.Close()

	n, err := io.ReadFull(body, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return n, io.EOF
	}
	return n, err
}

// remoteFile is a File over an object of known size.
type remoteFile struct {
	*io.SectionReader
}

func newRemoteFile(ctx context.Context, size int64, fetch fetchFunc) *remoteFile {
	return &remoteFile{
		SectionReader: io.NewSectionReader(&rangedReader{ctx: ctx, fetch: fetch}, 0, size),
	}
}

// Close is a no-op; each range request releases its own body.
func (*remoteFile) Close() error { return nil }
