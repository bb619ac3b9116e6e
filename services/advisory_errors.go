package services

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when advice is requested for a blank description.
// No credential lookup or network call happens in that case.
var ErrEmptyInput = errors.New("project description is empty")

var (
	ErrMissingCredential = errors.New("no completion api credential configured")
	ErrNoText            = errors.New("completion service returned no text")
)

// UpstreamError wraps a failed, timed out or empty call to the completion service.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("advisory upstream: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedResponseError means the service answered but the payload broke the
// advisory schema. Raw keeps the text exactly as received.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("advisory response malformed: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}
