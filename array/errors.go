package array

import (
	"errors"
	"fmt"
)

// ErrMalformedArrayLiteral is matched by every error Decode returns for input
// that does not follow the array literal grammar.
var ErrMalformedArrayLiteral = errors.New("malformed array literal")

// ErrMixedDimensions is returned by Encode when an array holds both nested
// slices and scalar elements at the same level.
var ErrMixedDimensions = errors.New("cannot mix sub-arrays and scalar elements in one array")

// MalformedLiteralError describes where and why an array literal could not be parsed.
type MalformedLiteralError struct {
	Input  string
	Pos    int
	Reason string
}

func (e *MalformedLiteralError) Error() string {
	return fmt.Sprintf("malformed array literal %q at position %d: %s", e.Input, e.Pos, e.Reason)
}

func (e *MalformedLiteralError) Is(target error) bool {
	return target == ErrMalformedArrayLiteral
}
