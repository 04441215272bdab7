package acmi

import (
	"errors"
	"io"
	"iter"
)

// Parser reads records from an ACMI stream. It stops at the first malformed
// line: that error is returned once and every later call returns io.EOF.
type Parser struct {
	lines   *lineReader
	version string
	done    bool
}

// NewParser checks the two header lines of r and returns a parser positioned
// on the first record.
func NewParser(r io.Reader) (*Parser, error) {
	lines := newLineReader(r)
	version, err := lines.readHeader()
	if err != nil {
		return nil, err
	}
	return &Parser{lines: lines, version: version}, nil
}

// Version returns the file version from the header, for example "2.2".
func (p *Parser) Version() string {
	return p.version
}

// Line returns the number of physical lines consumed so far.
func (p *Parser) Line() int {
	return p.lines.line
}

// Next returns the next record, or io.EOF once the stream is exhausted or a
// previous call failed. Parse failures are *ParseError values.
func (p *Parser) Next() (Record, error) {
	if p.done {
		return nil, io.EOF
	}
	for {
		line, n, err := p.lines.next()
		if err != nil {
			p.done = true
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, &ParseError{Line: n, Err: err}
		}
		rec, err := ParseRecord(line)
		if err != nil {
			p.done = true
			return nil, &ParseError{Line: n, Err: err}
		}
		if rec != nil {
			return rec, nil
		}
	}
}

// All returns the remaining records as a sequence. A failure is yielded as
// the last element.
func (p *Parser) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := p.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}
