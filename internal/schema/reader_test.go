package schema

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagemodel/stage-model-builder/internal/statement"
	"github.com/stagemodel/stage-model-builder/internal/storage"
)

// parquetBytes encodes a one-row parquet file with string columns named cols.
func parquetBytes(t *testing.T, cols ...string) []byte {
	t.Helper()

	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	sc := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, sc)
	defer b.Release()
	for i := range cols {
		b.Field(i).(*array.StringBuilder).Append("value")
	}
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := pqarrow.NewFileWriter(sc, &buf, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeParquet(t *testing.T, cols ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_object.parquet")
	require.NoError(t, os.WriteFile(path, parquetBytes(t, cols...), 0o644))
	return path
}

func TestReadColumnNamesLocal(t *testing.T) {
	path := writeParquet(t, "name", "id", "res")

	names, err := ReadColumnNames(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "id", "res"}, names)
	assert.Equal(t, "select name, id, res from", statement.BuildTemplate(statement.BuildAliases(names)))
}

func TestReadColumnNamesKeepsOrderAndDuplicates(t *testing.T) {
	path := writeParquet(t, "zeta", "userId", "alpha", "ID")

	names, err := ReadColumnNames(context.Background(), path, &storage.Config{})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "userId", "alpha", "ID"}, names)
}

func TestReadColumnNamesNestedReportsLeaves(t *testing.T) {
	sc := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "address", Type: arrow.StructOf(
			arrow.Field{Name: "City", Type: arrow.BinaryTypes.String, Nullable: true},
			arrow.Field{Name: "zipCode", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		), Nullable: true},
		{Name: "createdAt", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)

	var buf bytes.Buffer
	w, err := pqarrow.NewFileWriter(sc, &buf, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "nested.parquet")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	names, err := ReadColumnNames(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "City", "zipCode", "createdAt"}, names)
	assert.Equal(t,
		"select id, City as city, zipCode as zip_code, createdAt as created_at from",
		statement.BuildTemplate(statement.BuildAliases(names)))
}

func TestReadColumnNamesMissingFile(t *testing.T) {
	location := filepath.Join(t.TempDir(), "missing.parquet")

	_, err := ReadColumnNames(context.Background(), location, nil)
	require.Error(t, err)

	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, location, readErr.Location)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadColumnNamesMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty file", nil},
		{"csv file", []byte("name,id,res\nalice,1,ok\n")},
		{"truncated parquet", []byte("PAR1garbagePAR1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.parquet")
			require.NoError(t, os.WriteFile(path, tt.content, 0o644))

			_, err := ReadColumnNames(context.Background(), path, nil)
			var readErr *ReadError
			require.True(t, errors.As(err, &readErr), "got %v", err)
		})
	}
}

// memOpener serves in-memory files and records what it was asked to open.
type memOpener struct {
	files  map[string][]byte
	opened []string
	closed bool
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func (m *memOpener) Open(_ context.Context, location string) (storage.File, error) {
	m.opened = append(m.opened, location)
	data, ok := m.files[location]
	if !ok {
		return nil, os.ErrNotExist
	}
	return memFile{bytes.NewReader(data)}, nil
}

func (m *memOpener) Close() error {
	m.closed = true
	return nil
}

// routingReader returns a Reader whose local and remote openers are fakes.
func routingReader(local, remote *memOpener, gotCfg *storage.Config, remoteCalls *int) *Reader {
	return &Reader{
		Local: local,
		Remote: func(_ context.Context, _ string, cfg storage.Config) (storage.Opener, error) {
			*remoteCalls++
			*gotCfg = cfg
			return remote, nil
		},
	}
}

func TestColumnNamesRouting(t *testing.T) {
	data := parquetBytes(t, "name", "id", "res")

	tests := []struct {
		name       string
		location   string
		cfg        *storage.Config
		wantRemote bool
		wantCfg    storage.Config
	}{
		{
			name:     "local path",
			location: "data/test_object.parquet",
		},
		{
			name:     "local path ignores storage config",
			location: "/abs/test_object.parquet",
			cfg:      &storage.Config{Endpoint: "http://minio:9000", Key: "k", Secret: "s"},
		},
		{
			name:       "s3 with defaults",
			location:   "s3://bucket/test_object.parquet",
			wantRemote: true,
		},
		{
			name:       "s3 with credentials",
			location:   "s3://bucket/test_object.parquet",
			cfg:        &storage.Config{Endpoint: "http://minio:9000", Key: "k", Secret: "s"},
			wantRemote: true,
			wantCfg:    storage.Config{Endpoint: "http://minio:9000", Key: "k", Secret: "s"},
		},
		{
			name:       "gcs",
			location:   "gs://bucket/test_object.parquet",
			wantRemote: true,
		},
		{
			name:       "azure",
			location:   "az://container/test_object.parquet",
			wantRemote: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := &memOpener{files: map[string][]byte{tt.location: data}}
			remote := &memOpener{files: map[string][]byte{tt.location: data}}
			var gotCfg storage.Config
			calls := 0

			r := routingReader(local, remote, &gotCfg, &calls)
			names, err := r.ColumnNames(context.Background(), tt.location, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, []string{"name", "id", "res"}, names)

			if tt.wantRemote {
				assert.Equal(t, 1, calls)
				assert.Equal(t, tt.wantCfg, gotCfg)
				assert.Equal(t, []string{tt.location}, remote.opened)
				assert.Empty(t, local.opened)
				assert.True(t, remote.closed)
			} else {
				assert.Equal(t, 0, calls)
				assert.Equal(t, []string{tt.location}, local.opened)
				assert.Empty(t, remote.opened)
			}
		})
	}
}

func TestColumnNamesAccessorFailure(t *testing.T) {
	boom := errors.New("invalid endpoint")
	r := &Reader{
		Local: &memOpener{},
		Remote: func(context.Context, string, storage.Config) (storage.Opener, error) {
			return nil, boom
		},
	}

	_, err := r.ColumnNames(context.Background(), "s3://bucket/x.parquet", nil)
	require.Error(t, err)

	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to create storage accessor")
}

func TestColumnNamesRemoteOpenFailure(t *testing.T) {
	remote := &memOpener{files: map[string][]byte{}}
	r := &Reader{
		Local: &memOpener{},
		Remote: func(context.Context, string, storage.Config) (storage.Opener, error) {
			return remote, nil
		},
	}

	_, err := r.ColumnNames(context.Background(), "s3://bucket/missing.parquet", nil)
	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, "s3://bucket/missing.parquet", readErr.Location)
	assert.True(t, remote.closed)
}

// countingFile tracks how many bytes the parquet reader pulls.
type countingFile struct {
	r    *bytes.Reader
	read int64
}

func (c *countingFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := c.r.ReadAt(p, off)
	c.read += int64(n)
	return n, err
}

func (c *countingFile) Seek(offset int64, whence int) (int64, error) {
	return c.r.Seek(offset, whence)
}

func (c *countingFile) Close() error { return nil }

func TestColumnNamesReadsOnlyFooter(t *testing.T) {
	// A large payload column so row data dominates the file.
	fields := []arrow.Field{{Name: "payload", Type: arrow.BinaryTypes.String}}
	sc := arrow.NewSchema(fields, nil)
	b := array.NewRecordBuilder(memory.DefaultAllocator, sc)
	defer b.Release()
	big := bytes.Repeat([]byte("x"), 1<<16)
	for i := 0; i < 64; i++ {
		b.Field(0).(*array.StringBuilder).Append(string(big) + string(rune('a'+i%26)))
	}
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithDictionaryDefault(false))
	w, err := pqarrow.NewFileWriter(sc, &buf, props, pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	f := &countingFile{r: bytes.NewReader(buf.Bytes())}
	names, err := columnNames(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"payload"}, names)
	assert.Less(t, f.read, int64(buf.Len()/2))
}
