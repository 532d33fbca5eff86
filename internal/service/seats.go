package service

import (
	"github.com/iliyamo/atelier-booking/internal/model"
)

// moveSeats applies a seat delta computed by the kind's SeatPolicy to a
// resource read in the current transaction.  Taking a seat fails with
// ErrSoldOut when none is left; releasing never goes below zero.  The
// derived fully-booked status follows the counter both ways.
func moveSeats(res *model.Resource, delta int) error {
	switch {
	case delta > 0:
		if res.BookedSeats >= res.Capacity {
			return ErrSoldOut
		}
		res.BookedSeats++
	case delta < 0:
		if res.BookedSeats > 0 {
			res.BookedSeats--
		}
	default:
		return nil
	}
	settle(res)
	return nil
}

// ensureBookable is the availability rule for participant-initiated
// bookings.  A resource that filled up reports SoldOut rather than
// NotAvailable.
func ensureBookable(res model.Resource) error {
	switch res.Status {
	case model.ResourcePublished:
	case model.ResourceFullyBooked:
		return ErrSoldOut
	default:
		return ErrNotAvailable
	}
	if res.Available() <= 0 {
		return ErrSoldOut
	}
	return nil
}
