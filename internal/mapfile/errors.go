package mapfile

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat marks data that is not a map in any supported layout
var ErrInvalidFormat = errors.New("invalid map format")

// UnsupportedVersionError reports a recognised map with a version this
// package cannot read
type UnsupportedVersionError struct {
	Format  Format
	Version uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported %s map version: %d", e.Format, e.Version)
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}
