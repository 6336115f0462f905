package captcha

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks a required parameter that was nil.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfiguration marks missing provider credentials on a request that
	// may not use the development keys.
	ErrConfiguration = errors.New("configuration error")
)

// ArgumentError names the missing parameter. It matches ErrInvalidArgument
// under errors.Is.
type ArgumentError struct {
	Name string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s must not be nil", ErrInvalidArgument, e.Name)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// MissingArgument returns an *ArgumentError for name.
func MissingArgument(name string) error {
	return &ArgumentError{Name: name}
}
