package logging

import (
	"fmt"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGraylogWriter connects a GELF UDP writer to addr. Every Write becomes
// one GELF message.
func NewGraylogWriter(addr, facility string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to graylog at %s: %w", addr, err)
	}
	w.Facility = facility
	return w, nil
}
