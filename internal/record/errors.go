package record

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned when a buffer is too short for its record
// or carries a header the decoder does not understand.
var ErrMalformedRecord = errors.New("malformed record")

func malformed(kind string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedRecord, kind, fmt.Sprintf(format, args...))
}
