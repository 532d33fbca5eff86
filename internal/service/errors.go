// Package service implements the booking engine: resource management,
// the booking lifecycle with its seat accounting, corporate inquiries and
// categories.  Every operation that reads and writes shared state runs in
// a docstore transaction; admin operations pass through Guard first.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

var (
	// ErrUnauthenticated is returned when an operation needs an actor and
	// the context carries none.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the actor is not an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced document is absent.
	ErrNotFound = repository.ErrNotFound
	// ErrProfileNotFound is returned by the guard when the actor has no
	// profile.  It matches ErrNotFound.
	ErrProfileNotFound = fmt.Errorf("profile %w", repository.ErrNotFound)
	// ErrNotAvailable is returned when a resource is not open for booking.
	ErrNotAvailable = errors.New("resource is not available for booking")
	// ErrSoldOut is returned when a resource has no seat left.
	ErrSoldOut = errors.New("no seats left")
	// ErrConflict is returned when a uniqueness rule would be broken.
	ErrConflict = repository.ErrConflict
	// ErrUploadFailed wraps any failure of the upload collaborator.
	ErrUploadFailed = errors.New("upload failed")
	// ErrTransactionConflict is returned when a transaction kept losing
	// races until its retry budget ran out.
	ErrTransactionConflict = docstore.ErrTransactionConflict
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports malformed or missing input.  Fields holds the
// offending input names as the client sent them.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "invalid input"
	}
	if len(e.Fields) == 0 {
		return msg
	}
	return msg + ": " + strings.Join(e.Fields, ", ")
}

func invalid(msg string, fields ...string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
