package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/queue"
	"github.com/iliyamo/atelier-booking/internal/repository"
	"github.com/iliyamo/atelier-booking/internal/upload"
)

// BookingInput is the participant part of a booking request.  The two
// free-text answers are only kept for Pause d'Art bookings.
type BookingInput struct {
	ContactInput
	WhyJoin         string `json:"whyJoin"`
	LastTimeForSelf string `json:"lastTimeForSelf"`
}

// Proof is a payment proof: either a file to upload or the URL of one
// uploaded earlier.
type Proof struct {
	URL  string
	File *upload.File
}

// BookingService runs the booking lifecycle.  Which transition takes a
// seat is decided per resource kind by Policies: with SeatOnConfirm the
// seat is taken when an admin confirms, with SeatOnSubmit when the
// participant submits the payment proof.  Every transition that changes
// the occupying set updates bookedSeats in the same transaction that
// writes the booking.
type BookingService struct {
	Base
	Resources   *repository.ResourceRepo
	Bookings    *repository.BookingRepo
	Policies    model.SeatPolicies
	Notifier    Notifier
	Uploader    Uploader
	ProofFolder string
}

func NewBookingService(b Base, resources *repository.ResourceRepo, bookings *repository.BookingRepo, policies model.SeatPolicies) *BookingService {
	b.mustBeWired("booking service")
	if resources == nil || bookings == nil {
		panic("booking service: nil repository")
	}
	if policies == nil {
		policies = model.DefaultSeatPolicies()
	}
	return &BookingService{Base: b, Resources: resources, Bookings: bookings, Policies: policies, ProofFolder: "payment-proofs"}
}

// Create books a seat in one step, with the payment proof supplied up
// front.  The booking is written as pending.  If the kind's policy makes
// pending bookings occupy a seat, the seat is taken in the same
// transaction and the resource flips to fully-booked when it fills up.
func (s *BookingService) Create(ctx context.Context, kind model.Kind, resourceID string, in BookingInput, proof Proof) (model.Booking, error) {
	if err := s.validateInput(&in); err != nil {
		return model.Booking{}, err
	}
	if err := checkProof(proof); err != nil {
		return model.Booking{}, err
	}
	proofURL, err := s.storeProof(ctx, proof)
	if err != nil {
		return model.Booking{}, err
	}

	policy := s.Policies.For(kind)
	var booking model.Booking
	err = s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		res, err := s.Resources.GetTx(ctx, tx, kind, resourceID)
		if err != nil {
			return err
		}
		if err := ensureBookable(res); err != nil {
			return err
		}
		now := s.now()
		booking = s.newBooking(kind, res, in, model.StatusPending, now)
		booking.PaymentProofURL = proofURL
		if err := s.Bookings.CreateTx(tx, booking); err != nil {
			return err
		}
		if delta := policy.SeatDelta("", model.StatusPending); delta != 0 {
			if err := moveSeats(&res, delta); err != nil {
				return err
			}
			res.UpdatedAt = now
			return s.Resources.PutTx(tx, res)
		}
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	notify(ctx, s.Notifier, queue.BookingSubmitted, booking, booking.CreatedAt)
	return booking, nil
}

// Start writes a draft booking with no payment proof.  Drafts never hold a
// seat, so the only check against the resource is that it is open.
func (s *BookingService) Start(ctx context.Context, kind model.Kind, resourceID string, in BookingInput) (model.Booking, error) {
	if err := s.validateInput(&in); err != nil {
		return model.Booking{}, err
	}
	res, err := s.Resources.Get(ctx, kind, resourceID)
	if err != nil {
		return model.Booking{}, err
	}
	if !active(res.Status) {
		return model.Booking{}, ErrNotAvailable
	}
	booking := s.newBooking(kind, res, in, model.StatusDraft, s.now())
	err = s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		return s.Bookings.CreateTx(tx, booking)
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// AttachPayment records the payment proof of a draft and moves it to
// pending.  Under SeatOnSubmit this is the edge that takes the seat.
func (s *BookingService) AttachPayment(ctx context.Context, kind model.Kind, bookingID string, proof Proof) (model.Booking, error) {
	if err := checkProof(proof); err != nil {
		return model.Booking{}, err
	}
	proofURL, err := s.storeProof(ctx, proof)
	if err != nil {
		return model.Booking{}, err
	}

	policy := s.Policies.For(kind)
	var booking model.Booking
	err = s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		b, err := s.Bookings.GetTx(ctx, tx, kind, bookingID)
		if err != nil {
			return err
		}
		if !model.CanTransition(b.Status, model.StatusPending) {
			return invalid(fmt.Sprintf("booking is %s, not draft", b.Status), "status")
		}
		now := s.now()
		if delta := policy.SeatDelta(b.Status, model.StatusPending); delta != 0 {
			res, err := s.Resources.GetTx(ctx, tx, kind, b.ResourceID)
			if err != nil {
				return err
			}
			if err := ensureBookable(res); err != nil {
				return err
			}
			if err := moveSeats(&res, delta); err != nil {
				return err
			}
			res.UpdatedAt = now
			if err := s.Resources.PutTx(tx, res); err != nil {
				return err
			}
		}
		b.Status = model.StatusPending
		b.PaymentProofURL = proofURL
		b.UpdatedAt = now
		booking = b
		return s.Bookings.PutTx(tx, b)
	})
	if err != nil {
		return model.Booking{}, err
	}
	notify(ctx, s.Notifier, queue.BookingSubmitted, booking, booking.UpdatedAt)
	return booking, nil
}

// SetStatus is the admin review of a booking.  Setting the current status
// again is a no-op that writes nothing.  A transition that enters the
// occupying set takes a seat (ErrSoldOut if none is left), one that leaves
// it gives the seat back.  A booking whose resource was deleted can still
// be released, but not confirmed into a seat.
func (s *BookingService) SetStatus(ctx context.Context, kind model.Kind, bookingID string, status model.Status) (model.Booking, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return model.Booking{}, err
	}
	if !model.AdminSettable(status) {
		return model.Booking{}, invalid("status must be pending, confirmed or canceled", "status")
	}

	policy := s.Policies.For(kind)
	var (
		booking model.Booking
		changed bool
	)
	err := s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		b, err := s.Bookings.GetTx(ctx, tx, kind, bookingID)
		if err != nil {
			return err
		}
		booking, changed = b, false
		if b.Status == status {
			return nil
		}
		if !model.CanTransition(b.Status, status) {
			return invalid(fmt.Sprintf("cannot move a %s booking to %s", b.Status, status), "status")
		}
		now := s.now()
		if delta := policy.SeatDelta(b.Status, status); delta != 0 {
			res, err := s.Resources.GetTx(ctx, tx, kind, b.ResourceID)
			switch {
			case errors.Is(err, repository.ErrNotFound) && delta < 0:
				// Nothing left to release.
			case err != nil:
				return err
			default:
				if err := moveSeats(&res, delta); err != nil {
					return err
				}
				res.UpdatedAt = now
				if err := s.Resources.PutTx(tx, res); err != nil {
					return err
				}
			}
		}
		b.Status = status
		b.UpdatedAt = now
		booking, changed = b, true
		return s.Bookings.PutTx(tx, b)
	})
	if err != nil {
		return model.Booking{}, err
	}
	if changed && status == model.StatusConfirmed {
		notify(ctx, s.Notifier, queue.BookingConfirmed, booking, booking.UpdatedAt)
	}
	return booking, nil
}

// List returns all bookings of a kind for the admin tables.
func (s *BookingService) List(ctx context.Context, kind model.Kind) ([]model.Booking, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return nil, err
	}
	return s.Bookings.List(ctx, kind)
}

// Draft returns a booking only while it is still a draft.  It backs the
// resume flow, which must never hand out a booking that moved on.
func (s *BookingService) Draft(ctx context.Context, kind model.Kind, bookingID string) (model.Booking, error) {
	b, err := s.Bookings.Get(ctx, kind, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.Status != model.StatusDraft {
		return model.Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *BookingService) validateInput(in *BookingInput) error {
	in.normalize()
	return check(in)
}

func checkProof(p Proof) error {
	if p.File != nil {
		return nil
	}
	if p.URL == "" {
		return invalid("missing required fields", "paymentProof")
	}
	if validate.Var(p.URL, "url") != nil {
		return invalid("invalid fields", "paymentProof")
	}
	return nil
}

// storeProof uploads a proof file before any transaction opens.
func (s *BookingService) storeProof(ctx context.Context, p Proof) (string, error) {
	if p.File == nil {
		return p.URL, nil
	}
	if s.Uploader == nil {
		return "", fmt.Errorf("%w: no upload backend configured", ErrUploadFailed)
	}
	url, err := s.Uploader.Upload(ctx, *p.File, s.ProofFolder)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return url, nil
}

func (s *BookingService) newBooking(kind model.Kind, res model.Resource, in BookingInput, status model.Status, now time.Time) model.Booking {
	b := model.Booking{
		ID:         s.newID(),
		Kind:       kind,
		ResourceID: res.ID,
		Contact:    model.Contact{Name: in.Name, Email: in.Email, Phone: in.Phone},
		Status:     status,
		Resource:   res.Snapshot(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if kind == model.KindPauseArt {
		b.WhyJoin = strings.TrimSpace(in.WhyJoin)
		b.LastTimeForSelf = strings.TrimSpace(in.LastTimeForSelf)
	}
	return b
}
