package repository

import (
	"context"
	"sort"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
)

// Collection names of the two resource kinds.
const (
	CollWorkshops = "workshops"
	CollPauseArt  = "pauseArt"
)

func resourceCollection(k model.Kind) string {
	if k == model.KindPauseArt {
		return CollPauseArt
	}
	return CollWorkshops
}

// ResourceRepo stores workshops and Pause d'Art sessions.
type ResourceRepo struct{ Store *docstore.Store }

func NewResourceRepo(s *docstore.Store) *ResourceRepo { return &ResourceRepo{Store: s} }

// Get reads a committed resource outside of a transaction.
func (r *ResourceRepo) Get(ctx context.Context, kind model.Kind, id string) (model.Resource, error) {
	var res model.Resource
	err := r.Store.Get(ctx, resourceCollection(kind), id, &res)
	return res, notFound(err)
}

// GetTx reads a resource and adds it to the transaction's read set.
func (r *ResourceRepo) GetTx(ctx context.Context, tx *docstore.Tx, kind model.Kind, id string) (model.Resource, error) {
	var res model.Resource
	err := tx.Get(ctx, resourceCollection(kind), id, &res)
	return res, notFound(err)
}

// CreateTx buffers the insertion of a new resource.
func (r *ResourceRepo) CreateTx(tx *docstore.Tx, res model.Resource) error {
	return tx.Create(resourceCollection(res.Kind), res.ID, res)
}

// PutTx buffers a full replacement of an existing resource.
func (r *ResourceRepo) PutTx(tx *docstore.Tx, res model.Resource) error {
	return tx.Put(resourceCollection(res.Kind), res.ID, res)
}

// DeleteTx buffers a hard delete.
func (r *ResourceRepo) DeleteTx(tx *docstore.Tx, kind model.Kind, id string) {
	tx.Delete(resourceCollection(kind), id)
}

// List returns resources of one kind ordered by date then start time.  An
// empty status lists every resource.
func (r *ResourceRepo) List(ctx context.Context, kind model.Kind, status string) ([]model.Resource, error) {
	snaps, err := r.Store.Find(ctx, resourceCollection(kind), statusFilter(status))
	if err != nil {
		return nil, err
	}
	return sortResources(snaps)
}

// ListByStatusTx is List inside a transaction.  A resource that starts or
// stops matching before commit forces a retry.
func (r *ResourceRepo) ListByStatusTx(ctx context.Context, tx *docstore.Tx, kind model.Kind, status string) ([]model.Resource, error) {
	snaps, err := tx.Find(ctx, resourceCollection(kind), statusFilter(status))
	if err != nil {
		return nil, err
	}
	return sortResources(snaps)
}

func statusFilter(status string) *docstore.Filter {
	if status == "" {
		return nil
	}
	return &docstore.Filter{Field: "status", Value: status}
}

func sortResources(snaps []docstore.Snapshot) ([]model.Resource, error) {
	out, err := decodeAll[model.Resource](snaps)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}
