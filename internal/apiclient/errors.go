package apiclient

import (
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	// Network covers transport failures and responses that could not be parsed.
	Network ErrorKind = iota + 1
	// Rejected is a failure reported by the backend in a well-formed envelope.
	Rejected
)

func (k ErrorKind) String() string {
	switch k {
	case Network:
		return "network"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// APIError is returned by every Client call that did not succeed.
type APIError struct {
	Kind     ErrorKind
	Endpoint string
	Status   int
	Message  string
	Err      error
}

var (
	ErrNetwork  = &APIError{Kind: Network}
	ErrRejected = &APIError{Kind: Rejected}
)

// Error returns the message as reported by the backend for rejected calls.
func (e *APIError) Error() string {
	if e.Kind == Rejected {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is matches on Kind, so errors.Is(err, ErrRejected) holds for any rejection.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Kind == e.Kind
}

func networkError(endpoint, msg string, err error) *APIError {
	return &APIError{Kind: Network, Endpoint: endpoint, Message: msg, Err: err}
}

func rejected(endpoint string, status int, msg string) *APIError {
	if msg == "" {
		msg = httpStatusMessage(status)
	}
	return &APIError{Kind: Rejected, Endpoint: endpoint, Status: status, Message: msg}
}

func httpStatusMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
