// Package repository maps the domain types onto docstore collections.
// Every mutating method takes the caller's *docstore.Tx so that reads and
// writes done by a service operation commit, or retry, together.  The
// sentinel values below let higher layers distinguish failure scenarios
// without depending on the storage backend.
package repository

import (
	"errors"

	"github.com/iliyamo/atelier-booking/internal/docstore"
)

// ErrNotFound is returned when the referenced document does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would break a uniqueness rule, such
// as two categories sharing a slug.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when a profile with the same normalized email
// is already registered.
var ErrEmailExists = errors.New("email already exists")

func notFound(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func decodeAll[T any](snaps []docstore.Snapshot) ([]T, error) {
	out := make([]T, 0, len(snaps))
	for _, s := range snaps {
		var v T
		if err := s.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
