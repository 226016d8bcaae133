package exporter

import (
	"fmt"
	"io"
)

// WriteError reports that the output could not be created or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write output %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Result contains the result of a write.
type Result struct {
	Bytes int
}

// WriteFragment writes fragment to filePath as a single line with no trailing
// newline. Standard output ("-") gets a trailing newline so the shell prompt
// starts on its own line.
func WriteFragment(filePath, fragment string) (*Result, error) {
	output, err := OpenOutputFile(filePath)
	if err != nil {
		return nil, &WriteError{Path: filePath, Err: err}
	}

	result, err := writeTo(output, fragment, filePath == StdoutPath)
	if cerr := output.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output file: %w", cerr)
	}
	if err != nil {
		return nil, &WriteError{Path: filePath, Err: err}
	}
	return result, nil
}

func writeTo(w io.Writer, fragment string, newline bool) (*Result, error) {
	if newline {
		fragment += "\n"
	}
	n, err := io.WriteString(w, fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to write fragment: %w", err)
	}
	return &Result{Bytes: n}, nil
}
