// Package apperr defines the storefront's error taxonomy and the recorder that
// swallowed errors are handed to, so that nothing is dropped silently.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by how callers are expected to react to it.
type Kind string

const (
	// RemoteUnavailable is a read failure against the remote store; reads degrade to the local store.
	RemoteUnavailable Kind = "remote_unavailable"
	// RemoteWriteFailed is a create/update/delete failure against the remote store.
	RemoteWriteFailed Kind = "remote_write_failed"
	// ValidationFailure means required fields are missing or invalid.
	ValidationFailure Kind = "validation_failure"
	// MediaPlaybackBlocked means an autoplay attempt was rejected by the client.
	MediaPlaybackBlocked Kind = "media_playback_blocked"
	// StorageUnavailable means the local key-value store could not be read or written.
	StorageUnavailable Kind = "storage_unavailable"
)

// Error is a classified failure. Resource names the collection or item involved.
type Error struct {
	Kind     Kind
	Op       string
	Resource string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Resource, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Resource, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error.
func New(kind Kind, op, resource string, err error) *Error {
	return &Error{Kind: kind, Op: op, Resource: resource, Err: err}
}

// KindOf reports the Kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return fmt.Sprintf("%d invalid field(s)", len(f))
}

// Validation wraps field errors as a ValidationFailure. It returns nil when fields is empty.
func Validation(op, resource string, fields FieldErrors) error {
	if len(fields) == 0 {
		return nil
	}
	return New(ValidationFailure, op, resource, fields)
}

// Fields extracts the field errors from a ValidationFailure, if any.
func Fields(err error) FieldErrors {
	var f FieldErrors
	if errors.As(err, &f) {
		return f
	}
	return nil
}

// HTTPStatus maps a classified error to the status the HTTP layer answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ValidationFailure:
		return http.StatusBadRequest
	case RemoteWriteFailed:
		return http.StatusBadGateway
	case RemoteUnavailable, StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
