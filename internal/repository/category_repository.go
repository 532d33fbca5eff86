package repository

import (
	"context"
	"sort"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
)

// CollCategories holds workshop categories.
const CollCategories = "categories"

type CategoryRepo struct{ Store *docstore.Store }

func NewCategoryRepo(s *docstore.Store) *CategoryRepo { return &CategoryRepo{Store: s} }

func (r *CategoryRepo) GetTx(ctx context.Context, tx *docstore.Tx, id string) (model.Category, error) {
	var c model.Category
	err := tx.Get(ctx, CollCategories, id, &c)
	return c, notFound(err)
}

// EnsureSlugFreeTx fails with ErrConflict when a category other than
// selfID already uses slug.  The query joins the transaction's read set,
// so a concurrent insert of the same slug makes the commit retry.
func (r *CategoryRepo) EnsureSlugFreeTx(ctx context.Context, tx *docstore.Tx, slug, selfID string) error {
	hits, err := tx.Find(ctx, CollCategories, &docstore.Filter{Field: "slug", Value: slug})
	if err != nil {
		return err
	}
	for _, h := range hits {
		if h.ID != selfID {
			return ErrConflict
		}
	}
	return nil
}

func (r *CategoryRepo) CreateTx(tx *docstore.Tx, c model.Category) error {
	return tx.Create(CollCategories, c.ID, c)
}

func (r *CategoryRepo) PutTx(tx *docstore.Tx, c model.Category) error {
	return tx.Put(CollCategories, c.ID, c)
}

func (r *CategoryRepo) DeleteTx(tx *docstore.Tx, id string) {
	tx.Delete(CollCategories, id)
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	snaps, err := r.Store.Find(ctx, CollCategories, nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeAll[model.Category](snaps)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
