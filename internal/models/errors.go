package models

import (
	"errors"
	"fmt"
)

// Analysis related errors
var (
	ErrMalformedResponse = errors.New("malformed analysis response")
	ErrEmptyInput        = errors.New("input text is empty")
)

// MsgMalformedResponse is what users see when the service reply cannot be
// turned into an AnalysisResponse. Parser details stay in the wrapped error.
const MsgMalformedResponse = "Failed to analyze text structure"

// MsgUnexpectedError is shown when a failure carries no message of its own.
const MsgUnexpectedError = "An unexpected error occurred"

type ErrorKind string

const (
	KindTransport     ErrorKind = "transport"
	KindService       ErrorKind = "service"
	KindResponseShape ErrorKind = "response_shape"
)

// AnalysisError is returned by the request client for every failed analysis.
// Message is safe to surface to the user verbatim.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a failed round trip. The cause's text becomes the message.
func NewTransportError(err error) *AnalysisError {
	return &AnalysisError{Kind: KindTransport, Message: err.Error(), Err: err}
}

// NewServiceError reports a non-success reply from the inference service.
func NewServiceError(status int, detail string) *AnalysisError {
	msg := fmt.Sprintf("gemini API error (status %d)", status)
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return &AnalysisError{Kind: KindService, Message: msg}
}

// NewShapeError reports a reply that is not a valid analysis document.
func NewShapeError(detail string) *AnalysisError {
	return &AnalysisError{
		Kind:    KindResponseShape,
		Message: MsgMalformedResponse,
		Err:     fmt.Errorf("%w: %s", ErrMalformedResponse, detail),
	}
}

// IsAnalysisError reports whether err is (or wraps) an *AnalysisError of the given kind.
func IsAnalysisError(err error, kind ErrorKind) bool {
	var ae *AnalysisError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Kind == kind
}
