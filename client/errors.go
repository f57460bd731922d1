// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies client errors.
type ErrorKind string

// Error kinds returned by the client.
const (
	// KindValidation is returned when a request fails local validation
	// before any network traffic.
	KindValidation ErrorKind = "validation"

	// KindConfiguration is returned when the client itself is not usable,
	// e.g. no base URL is set.
	KindConfiguration ErrorKind = "configuration"

	// KindNetwork is returned when the HTTP request could not be sent or
	// its response could not be read.
	KindNetwork ErrorKind = "network"

	// KindHTTP is returned when the server answered with an unexpected
	// status code.
	KindHTTP ErrorKind = "http"

	// KindJSON is returned when a payload could not be encoded or decoded.
	KindJSON ErrorKind = "json"

	// KindProtocol is returned when the server violated the task protocol,
	// e.g. accepted a task without returning a task id.
	KindProtocol ErrorKind = "protocol"

	// KindStream is returned when the event stream was lost or unreadable.
	KindStream ErrorKind = "stream"
)

// Error is the error type returned by the client.
type Error struct {
	// Kind classifies the error.
	Kind ErrorKind

	// Message describes what went wrong.
	Message string

	// StatusCode is the HTTP status code, set for KindHTTP errors.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindHTTP && e.Err != nil:
		return fmt.Sprintf("%s error: %s (status %d): %v", e.Kind, e.Message, e.StatusCode, e.Err)
	case e.Kind == KindHTTP:
		return fmt.Sprintf("%s error: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a KindValidation error.
func NewValidationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

// NewConfigurationError creates a KindConfiguration error.
func NewConfigurationError(message string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: message, Err: err}
}

// NewNetworkError creates a KindNetwork error.
func NewNetworkError(message string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

// NewHTTPError creates a KindHTTP error carrying the response status code.
func NewHTTPError(statusCode int, message string, err error) *Error {
	return &Error{Kind: KindHTTP, Message: message, StatusCode: statusCode, Err: err}
}

// NewJSONError creates a KindJSON error.
func NewJSONError(message string, err error) *Error {
	return &Error{Kind: KindJSON, Message: message, Err: err}
}

// NewProtocolError creates a KindProtocol error.
func NewProtocolError(message string, err error) *Error {
	return &Error{Kind: KindProtocol, Message: message, Err: err}
}

// NewStreamError creates a KindStream error.
func NewStreamError(message string, err error) *Error {
	return &Error{Kind: KindStream, Message: message, Err: err}
}

// IsKind checks whether err is a client Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Kind == kind
	}
	return false
}

// IsValidationError checks if an error is a local validation failure.
func IsValidationError(err error) bool {
	return IsKind(err, KindValidation)
}

// IsNetworkError checks if an error is a network failure.
func IsNetworkError(err error) bool {
	return IsKind(err, KindNetwork)
}

// IsHTTPError checks if an error is an unexpected HTTP status. When it is,
// the status code is returned alongside.
func IsHTTPError(err error) (int, bool) {
	var clientErr *Error
	if errors.As(err, &clientErr) && clientErr.Kind == KindHTTP {
		return clientErr.StatusCode, true
	}
	return 0, false
}

// IsStreamError checks if an error is a lost or unreadable event stream.
func IsStreamError(err error) bool {
	return IsKind(err, KindStream)
}
