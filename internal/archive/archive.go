// Package archive opens and creates ACMI recordings stored plain, gzipped or
// zipped (*.zip.acmi).
package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// EntryName is the name of the recording inside archives written by Create.
const EntryName = "track.txt.acmi"

var (
	zipMagic  = []byte("PK\x03\x04")
	gzipMagic = []byte{0x1f, 0x8b}
)

// ErrEmptyArchive is returned for zip files without any entry.
var ErrEmptyArchive = errors.New("archive contains no recording")

// Format is the container a recording is stored in.
type Format int

const (
	FormatPlain Format = iota
	FormatGzip
	FormatZip
)

func (f Format) String() string {
	switch f {
	case FormatGzip:
		return "gzip"
	case FormatZip:
		return "zip"
	default:
		return "plain"
	}
}

// Detect sniffs the container format from the leading bytes of a file.
func Detect(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return FormatZip
	case bytes.HasPrefix(head, gzipMagic):
		return FormatGzip
	default:
		return FormatPlain
	}
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open returns a reader over the uncompressed recording at path. For zip
// archives the first entry is read.
func Open(path string) (io.ReadCloser, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, FormatPlain, fmt.Errorf("error opening recording: %w", err)
	}

	br := bufio.NewReader(f)
	head, err := br.Peek(len(zipMagic))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		f.Close()
		return nil, FormatPlain, fmt.Errorf("error reading recording: %w", err)
	}

	format := Detect(head)
	switch format {
	case FormatGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, format, fmt.Errorf("error opening gzip stream: %w", err)
		}
		return &multiCloser{Reader: zr, closers: []io.Closer{f, zr}}, format, nil
	case FormatZip:
		rc, err := openZipEntry(f)
		if err != nil {
			f.Close()
			return nil, format, err
		}
		return &multiCloser{Reader: rc, closers: []io.Closer{f, rc}}, format, nil
	default:
		return &multiCloser{Reader: br, closers: []io.Closer{f}}, format, nil
	}
}

func openZipEntry(f *os.File) (io.ReadCloser, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("error reading zip archive: %w", err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("error reading zip archive: %w", err)
	}
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening zip entry %s: %w", entry.Name, err)
		}
		return rc, nil
	}
	return nil, ErrEmptyArchive
}

type zipWriteCloser struct {
	io.Writer
	zw   *zip.Writer
	file *os.File
}

func (z *zipWriteCloser) Close() error {
	zipErr := z.zw.Close()
	fileErr := z.file.Close()
	return errors.Join(zipErr, fileErr)
}

type gzipWriteCloser struct {
	*gzip.Writer
	file *os.File
}

func (g *gzipWriteCloser) Close() error {
	gzErr := g.Writer.Close()
	fileErr := g.file.Close()
	return errors.Join(gzErr, fileErr)
}

// Create creates path and returns a writer storing data in the given format.
// Closing the writer finishes the container and closes the file.
func Create(path string, format Format) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating recording: %w", err)
	}

	switch format {
	case FormatZip:
		zw := zip.NewWriter(f)
		w, err := zw.CreateHeader(&zip.FileHeader{Name: EntryName, Method: zip.Deflate})
		if err != nil {
			zw.Close()
			f.Close()
			return nil, fmt.Errorf("error creating zip entry: %w", err)
		}
		return &zipWriteCloser{Writer: w, zw: zw, file: f}, nil
	case FormatGzip:
		return &gzipWriteCloser{Writer: gzip.NewWriter(f), file: f}, nil
	default:
		return f, nil
	}
}
