package acmi

import (
	"fmt"
	"io"
)

// FileVersion is the format version written by Writer.
const FileVersion = "2.2"

// Writer serialises records. Each record is written to the sink in a single
// Write call; buffering is up to the caller.
type Writer struct {
	w io.Writer
}

// NewWriter writes the file header to w.
func NewWriter(w io.Writer) (*Writer, error) {
	header := fileTypeHeader + "\n" + "FileVersion=" + FileVersion + "\n"
	if _, err := w.Write([]byte(header)); err != nil {
		return nil, fmt.Errorf("%w: writing header: %w", ErrIO, err)
	}
	return &Writer{w: w}, nil
}

// Write appends one record line.
func (w *Writer) Write(r Record) error {
	line, err := FormatRecord(r)
	if err != nil {
		return err
	}
	if _, err := w.w.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
