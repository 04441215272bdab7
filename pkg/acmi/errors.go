package acmi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFileType is returned when the first line is not the ACMI file type header.
	ErrInvalidFileType = errors.New("acmi: invalid file type, expected text/acmi/tacview")
	// ErrInvalidVersion is returned when the second line is not a 2.x version header.
	ErrInvalidVersion = errors.New("acmi: invalid version, expected 2.x")
	// ErrIO wraps failures of the underlying reader or writer.
	ErrIO = errors.New("acmi: i/o error")
	// ErrEOL is returned when a line ends before a required field.
	ErrEOL = errors.New("acmi: unexpected end of line")
	// ErrMissingDelimiter is matched by every *DelimiterError.
	ErrMissingDelimiter = errors.New("acmi: missing delimiter")
	// ErrInvalidID is returned for object ids that are not hexadecimal uint64 values.
	ErrInvalidID = errors.New("acmi: invalid object id")
	// ErrInvalidNumeric is returned when a value does not parse as the expected number.
	ErrInvalidNumeric = errors.New("acmi: invalid numeric value")
	// ErrInvalidEvent is returned for events without a kind.
	ErrInvalidEvent = errors.New("acmi: invalid event")
	// ErrTrailingBackslash is returned when a value to be written ends in a
	// backslash, which the format cannot represent.
	ErrTrailingBackslash = errors.New("acmi: value ends with a backslash")
	// ErrInvalidCoordinateFormat is returned when T= does not carry 3, 5, 6 or 9 slots.
	ErrInvalidCoordinateFormat = errors.New("acmi: invalid coordinate format")
)

// DelimiterError reports a field that lacks its expected delimiter.
type DelimiterError struct {
	Delim byte
}

func (e *DelimiterError) Error() string {
	return fmt.Sprintf("acmi: missing delimiter %q", e.Delim)
}

// Is makes errors.Is(err, ErrMissingDelimiter) hold for any delimiter.
func (e *DelimiterError) Is(target error) bool {
	return target == ErrMissingDelimiter
}

// ParseError is returned by Parser for a malformed line. Line is the physical
// line number (1-based) the logical line started on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func numericError(value string, err error) error {
	return fmt.Errorf("%w %q: %w", ErrInvalidNumeric, value, err)
}

func idError(value string, err error) error {
	return fmt.Errorf("%w %q: %w", ErrInvalidID, value, err)
}
