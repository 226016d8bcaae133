package storage

import (
	"context"
	"os"
)

// Local opens files from the local filesystem.
type Local struct{}

// Open opens the file at path.
func (Local) Open(_ context.Context, path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}
