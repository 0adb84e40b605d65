package ddl

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAlgorithmOption = errors.New("invalid index algorithm")
	ErrUnsupportedFeature     = errors.New("unsupported feature")
)

// InvalidAlgorithmOptionError reports an index algorithm other than
// concurrently.
type InvalidAlgorithmOptionError struct {
	Algorithm string
}

func (e *InvalidAlgorithmOptionError) Error() string {
	return fmt.Sprintf("algorithm must be one of the following: %s (got %q)", AlgorithmConcurrently, e.Algorithm)
}

func (e *InvalidAlgorithmOptionError) Is(target error) bool {
	return target == ErrInvalidAlgorithmOption
}

// UnsupportedFeatureError reports a feature the connected server is too old
// to provide.
type UnsupportedFeatureError struct {
	Feature       string
	ServerVersion string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("%s are not supported by PostgreSQL %s", e.Feature, e.ServerVersion)
}

func (e *UnsupportedFeatureError) Is(target error) bool {
	return target == ErrUnsupportedFeature
}
