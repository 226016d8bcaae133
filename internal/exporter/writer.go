// Package exporter writes the generated select fragment to its destination.
package exporter

import (
	"fmt"
	"io"
	"os"
)

// StdoutPath selects standard output as the destination.
const StdoutPath = "-"

// OpenOutputFile creates or truncates the output file.
// If filePath is "-", returns standard output wrapped so that Close leaves it open.
func OpenOutputFile(filePath string) (io.WriteCloser, error) {
	if filePath == StdoutPath {
		return nopCloser{os.Stdout}, nil
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

// nopCloser keeps a shared stream open when the writer is closed.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
