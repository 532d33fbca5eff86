package service

import (
	"context"
	"errors"

	"github.com/iliyamo/atelier-booking/internal/auth"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

// ProfileLookup resolves an actor id to its profile.
type ProfileLookup interface {
	Get(ctx context.Context, id string) (model.Profile, error)
}

// Guard resolves the actor carried by the context and fails closed.
type Guard struct {
	Profiles ProfileLookup
}

// EnsureAdmin returns the actor's profile if it is an admin.  It fails
// with ErrUnauthenticated when the context has no actor, ErrProfileNotFound
// when the actor has no profile and ErrForbidden for any other role.
func (g Guard) EnsureAdmin(ctx context.Context) (model.Profile, error) {
	id, ok := auth.ActorFromContext(ctx)
	if !ok {
		return model.Profile{}, ErrUnauthenticated
	}
	p, err := g.Profiles.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	if !p.IsAdmin() {
		return model.Profile{}, ErrForbidden
	}
	return p, nil
}
