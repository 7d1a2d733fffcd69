// Package domain
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProcessNotFound    = errors.New("process not found")
	ErrSampling           = errors.New("sampling failed")
	ErrUsageNotFound      = errors.New("usage not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// SamplingError reports a failure of the snapshot provider itself.
type SamplingError struct {
	Op  string
	Err error
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SamplingError) Unwrap() error {
	return e.Err
}

func (e *SamplingError) Is(target error) bool {
	return target == ErrSampling
}
