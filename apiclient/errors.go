package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed request
type ErrorKind int

const (
	// KindNetwork means no response was received
	KindNetwork ErrorKind = iota + 1
	// KindStatus is a non-2xx response other than a recoverable 401
	KindStatus
	// KindUnauthorized is a terminal authorization failure; a new login is required
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is against any *HTTPError
var (
	ErrNetwork      = errors.New("network error")
	ErrStatus       = errors.New("unexpected status")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrResponseTooLarge is wrapped by a network error when a body exceeds the read limit
	ErrResponseTooLarge = errors.New("response body too large")
)

// HTTPError is returned by every failed request
type HTTPError struct {
	Kind       ErrorKind
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *HTTPError) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
	case KindUnauthorized:
		if e.Err != nil {
			return fmt.Sprintf("%s %s: unauthorized: %v", e.Method, e.Path, e.Err)
		}
		return fmt.Sprintf("%s %s: unauthorized", e.Method, e.Path)
	default:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrStatus:
		return e.Kind == KindStatus
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	}
	return false
}

// Message extracts a server supplied message from a JSON error body, falling back to the raw body
func (e *HTTPError) Message() string {
	var body struct {
		Message     string `json:"message"`
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if len(e.Body) > 0 && decode(e.Body, &body) == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.Description != "":
			return body.Description
		case body.Error != "":
			return body.Error
		}
	}
	return string(e.Body)
}

// IsStatus reports whether err is a status error with the given code
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Kind == KindStatus && httpErr.StatusCode == code
}

// IsNotFound is IsStatus(err, 404)
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
