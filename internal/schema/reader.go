// Package schema reads column names from the footer of a parquet file.
package schema

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	pqfile "github.com/apache/arrow/go/v18/parquet/file"

	"github.com/stagemodel/stage-model-builder/internal/storage"
)

// ReadError reports that the schema of a file could not be read: the file
// was missing or unreadable, its footer was malformed, or the storage
// accessor could not be built.
type ReadError struct {
	Location string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read schema from %s: %v", e.Location, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// RemoteFunc builds an accessor for a remote location.
type RemoteFunc func(ctx context.Context, location string, cfg storage.Config) (storage.Opener, error)

// Reader reads parquet schemas from local or remote locations.
type Reader struct {
	Local  storage.Opener
	Remote RemoteFunc
	Logger *slog.Logger
}

// NewReader returns a Reader using the local filesystem and the object
// store accessors from the storage package.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{
		Local:  storage.Local{},
		Remote: storage.NewRemote,
		Logger: logger,
	}
}

// ReadColumnNames reads the column names of the file at location.
// A nil cfg means ambient credentials and default endpoints.
func ReadColumnNames(ctx context.Context, location string, cfg *storage.Config) ([]string, error) {
	return NewReader(nil).ColumnNames(ctx, location, cfg)
}

// ColumnNames opens location once, parses only the parquet footer and returns
// the leaf column names in schema order. Remote locations go through an
// accessor built from cfg; everything else is opened from local disk and cfg
// is ignored.
func (r *Reader) ColumnNames(ctx context.Context, location string, cfg *storage.Config) ([]string, error) {
	var sc storage.Config
	if cfg != nil {
		sc = *cfg
	}

	opener := r.Local
	if storage.IsRemote(location) {
		r.logger().Debug("using object storage accessor",
			"scheme", storage.Scheme(location),
			"endpoint", sc.Endpoint,
			"static_credentials", sc.Key != "")

		remote, err := r.Remote(ctx, location, sc)
		if err != nil {
			return nil, &ReadError{Location: location, Err: fmt.Errorf("failed to create storage accessor: %w", err)}
		}
		if c, ok := remote.(io.Closer); ok {
			defer c.Close()
		}
		opener = remote
	} else if !sc.IsZero() {
		r.logger().Debug("storage settings ignored for local path", "location", location)
	}

	f, err := opener.Open(ctx, location)
	if err != nil {
		return nil, &ReadError{Location: location, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer f.Close()

	names, err := columnNames(f)
	if err != nil {
		return nil, &ReadError{Location: location, Err: err}
	}

	r.logger().Debug("read parquet schema", "location", location, "columns", len(names))
	return names, nil
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// columnNames parses the footer metadata of f without touching row groups.
func columnNames(f storage.File) ([]string, error) {
	pqReader, err := pqfile.NewParquetReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parquet footer: %w", err)
	}

	sc := pqReader.MetaData().Schema
	names := make([]string, sc.NumColumns())
	for i := range names {
		names[i] = sc.Column(i).Name()
	}
	return names, nil
}
