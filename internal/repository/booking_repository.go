package repository

import (
	"context"
	"sort"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
)

// Collection names of the booking kinds.
const (
	CollBookings         = "bookings"
	CollPauseArtBookings = "pauseArtBookings"
)

func bookingCollection(k model.Kind) string {
	if k == model.KindPauseArt {
		return CollPauseArtBookings
	}
	return CollBookings
}

// BookingRepo stores workshop and Pause d'Art bookings.
type BookingRepo struct{ Store *docstore.Store }

func NewBookingRepo(s *docstore.Store) *BookingRepo { return &BookingRepo{Store: s} }

// Get reads a committed booking outside of a transaction.
func (r *BookingRepo) Get(ctx context.Context, kind model.Kind, id string) (model.Booking, error) {
	var b model.Booking
	err := r.Store.Get(ctx, bookingCollection(kind), id, &b)
	return b, notFound(err)
}

// GetTx reads a booking and adds it to the transaction's read set.
func (r *BookingRepo) GetTx(ctx context.Context, tx *docstore.Tx, kind model.Kind, id string) (model.Booking, error) {
	var b model.Booking
	err := tx.Get(ctx, bookingCollection(kind), id, &b)
	return b, notFound(err)
}

// CreateTx buffers the insertion of a new booking.
func (r *BookingRepo) CreateTx(tx *docstore.Tx, b model.Booking) error {
	return tx.Create(bookingCollection(b.Kind), b.ID, b)
}

// PutTx buffers a full replacement of a booking.
func (r *BookingRepo) PutTx(tx *docstore.Tx, b model.Booking) error {
	return tx.Put(bookingCollection(b.Kind), b.ID, b)
}

// List returns every booking of one kind, newest first.
func (r *BookingRepo) List(ctx context.Context, kind model.Kind) ([]model.Booking, error) {
	return r.find(ctx, kind, nil)
}

// ListTx is List inside a transaction.  A booking added, removed or
// changed before commit forces a retry.
func (r *BookingRepo) ListTx(ctx context.Context, tx *docstore.Tx, kind model.Kind) ([]model.Booking, error) {
	snaps, err := tx.Find(ctx, bookingCollection(kind), nil)
	if err != nil {
		return nil, err
	}
	return sortBookings(snaps)
}

// ListByResource returns the bookings made against one resource, newest
// first.
func (r *BookingRepo) ListByResource(ctx context.Context, kind model.Kind, resourceID string) ([]model.Booking, error) {
	return r.find(ctx, kind, &docstore.Filter{Field: "resourceId", Value: resourceID})
}

func (r *BookingRepo) find(ctx context.Context, kind model.Kind, f *docstore.Filter) ([]model.Booking, error) {
	snaps, err := r.Store.Find(ctx, bookingCollection(kind), f)
	if err != nil {
		return nil, err
	}
	return sortBookings(snaps)
}

func sortBookings(snaps []docstore.Snapshot) ([]model.Booking, error) {
	out, err := decodeAll[model.Booking](snaps)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
