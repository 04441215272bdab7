package acmi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	fileTypeHeader = "FileType=text/acmi/tacview"
	versionPrefix  = "FileVersion=2."
	byteOrderMark  = "\ufeff"
)

// lineReader yields logical lines. A physical line whose terminator is
// preceded by a backslash continues on the next physical line; the backslash
// is dropped and the terminator is kept as "\n".
type lineReader struct {
	r    *bufio.Reader
	line int // physical lines consumed so far
}

func newLineReader(r io.Reader) *lineReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &lineReader{r: br}
	}
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next logical line and the physical line number it started
// on. It returns io.EOF once the input is exhausted.
func (lr *lineReader) next() (string, int, error) {
	start := lr.line + 1
	var sb strings.Builder
	for {
		chunk, err := lr.r.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", start, fmt.Errorf("%w: %w", ErrIO, err)
			}
			if chunk == "" && sb.Len() == 0 {
				return "", start, io.EOF
			}
			lr.line++
			sb.WriteString(chunk)
			return sb.String(), start, nil
		}
		lr.line++

		body := strings.TrimSuffix(chunk[:len(chunk)-1], "\r")
		if strings.HasSuffix(body, `\`) {
			sb.WriteString(body[:len(body)-1])
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(body)
		return sb.String(), start, nil
	}
}

// readHeader consumes the two header lines and returns the version string
// (for example "2.2").
func (lr *lineReader) readHeader() (string, error) {
	first, _, err := lr.next()
	if errors.Is(err, io.EOF) {
		return "", ErrInvalidFileType
	}
	if err != nil {
		return "", err
	}
	if strings.TrimPrefix(first, byteOrderMark) != fileTypeHeader {
		return "", ErrInvalidFileType
	}

	second, _, err := lr.next()
	if errors.Is(err, io.EOF) {
		return "", ErrInvalidVersion
	}
	if err != nil {
		return "", err
	}
	minor, ok := strings.CutPrefix(second, versionPrefix)
	if !ok || !isDigits(minor) {
		return "", ErrInvalidVersion
	}
	return "2." + minor, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
