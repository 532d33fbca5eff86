package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
)

// CollUsers holds user profiles keyed by actor id.
const CollUsers = "users"

type ProfileRepo struct{ Store *docstore.Store }

func NewProfileRepo(s *docstore.Store) *ProfileRepo { return &ProfileRepo{Store: s} }

// Get fetches a profile by actor id.
func (r *ProfileRepo) Get(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := r.Store.Get(ctx, CollUsers, id, &p)
	return p, notFound(err)
}

// GetByEmail fetches a profile by normalized email.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hits, err := r.Store.Find(ctx, CollUsers, &docstore.Filter{Field: "email", Value: email})
	if err != nil {
		return model.Profile{}, err
	}
	if len(hits) == 0 {
		return model.Profile{}, ErrNotFound
	}
	var p model.Profile
	err = hits[0].Decode(&p)
	return p, err
}

// Create inserts a profile, rejecting a duplicate email with
// ErrEmailExists.
func (r *ProfileRepo) Create(ctx context.Context, p model.Profile) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	return r.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		hits, err := tx.Find(ctx, CollUsers, &docstore.Filter{Field: "email", Value: p.Email})
		if err != nil {
			return err
		}
		if len(hits) > 0 {
			return ErrEmailExists
		}
		return tx.Create(CollUsers, p.ID, p)
	})
}
