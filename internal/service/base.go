package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/atelier-booking/internal/docstore"
)

// Base holds what every service shares: the transaction runner, the admin
// guard, and overridable clock and id sources.
type Base struct {
	Store *docstore.Store
	Guard Guard
	Now   func() time.Time
	NewID func() string
}

func (b Base) now() time.Time {
	if b.Now != nil {
		return b.Now().UTC()
	}
	return time.Now().UTC()
}

func (b Base) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

func (b Base) mustBeWired(name string) {
	if b.Store == nil || b.Guard.Profiles == nil {
		panic(name + ": store and guard are required")
	}
}
