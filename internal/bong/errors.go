package bong

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is checks at the boundary. One per outcome class
// of a provider call; every non-2xx status maps to exactly one of these.
var (
	ErrTransport      = errors.New("bong: transport failure")
	ErrTimeout        = errors.New("bong: request timed out")
	ErrRedirect       = errors.New("bong: unsupported redirect")
	ErrAuthentication = errors.New("bong: not authenticated")
	ErrNotFound       = errors.New("bong: resource not found")
	ErrCannotRecord   = errors.New("bong: recording cannot be scheduled")
	ErrClient         = errors.New("bong: client error")
	ErrServer         = errors.New("bong: server error")
	ErrBadResponse    = errors.New("bong: malformed response")
	ErrNoCredentials  = errors.New("bong: no credentials and no session cookie")
	ErrEmptyCookie    = errors.New("bong: session cookie is empty")
)

// APIError wraps a sentinel with call context.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // nested lower-level error, e.g. net.Error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("bong: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

// classifyStatus maps an HTTP status code to the error taxonomy. 1xx and 2xx
// are success; everything else has a fixed mapping. There is exactly one
// classification per call.
func classifyStatus(status int) error {
	switch {
	case status >= 100 && status <= 299:
		return nil
	case status >= 300 && status <= 399:
		return ErrRedirect
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrCannotRecord
	case status >= 400 && status <= 499:
		return ErrClient
	case status >= 500 && status <= 599:
		return ErrServer
	default:
		return ErrBadResponse
	}
}

func apiErr(op string, sentinel error, status int, body string) *APIError {
	return &APIError{Sentinel: sentinel, Operation: op, Status: status, Body: body}
}
