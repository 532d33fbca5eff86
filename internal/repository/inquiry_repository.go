package repository

import (
	"context"
	"sort"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
)

// CollCorporate holds corporate quote requests.
const CollCorporate = "corporateBookings"

type InquiryRepo struct{ Store *docstore.Store }

func NewInquiryRepo(s *docstore.Store) *InquiryRepo { return &InquiryRepo{Store: s} }

func (r *InquiryRepo) GetTx(ctx context.Context, tx *docstore.Tx, id string) (model.CorporateInquiry, error) {
	var q model.CorporateInquiry
	err := tx.Get(ctx, CollCorporate, id, &q)
	return q, notFound(err)
}

func (r *InquiryRepo) CreateTx(tx *docstore.Tx, q model.CorporateInquiry) error {
	return tx.Create(CollCorporate, q.ID, q)
}

func (r *InquiryRepo) PutTx(tx *docstore.Tx, q model.CorporateInquiry) error {
	return tx.Put(CollCorporate, q.ID, q)
}

// List returns every inquiry, newest first.
func (r *InquiryRepo) List(ctx context.Context) ([]model.CorporateInquiry, error) {
	snaps, err := r.Store.Find(ctx, CollCorporate, nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeAll[model.CorporateInquiry](snaps)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
