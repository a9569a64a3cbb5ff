package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means an optional dependency has no configuration.
	ErrNotConfigured = errors.New("not configured")
	// ErrNotFound means a lookup matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrMalformedResponse means an external service answered with unusable data.
	ErrMalformedResponse = errors.New("malformed response")
)

// TransportError is a failure talking to the store or an external service.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DegradeReason classifies why an optional dependency did not contribute.
type DegradeReason string

const (
	ReasonNotConfigured     DegradeReason = "not_configured"
	ReasonTransportFailure  DegradeReason = "transport_failure"
	ReasonMalformedResponse DegradeReason = "malformed_response"
)

// Degradation records a typed failure of an optional dependency.
type Degradation struct {
	Reason DegradeReason
	Err    error
}

// Degrade classifies err. It returns nil for a nil error.
func Degrade(err error) *Degradation {
	if err == nil {
		return nil
	}
	d := &Degradation{Reason: ReasonTransportFailure, Err: err}
	switch {
	case errors.Is(err, ErrNotConfigured):
		d.Reason = ReasonNotConfigured
	case errors.Is(err, ErrMalformedResponse):
		d.Reason = ReasonMalformedResponse
	}
	return d
}

// Message returns the diagnostic text, or nil when there is no degradation.
func (d *Degradation) Message() *string {
	if d == nil {
		return nil
	}
	s := d.Err.Error()
	return &s
}
