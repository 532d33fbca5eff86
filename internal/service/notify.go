package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/queue"
	"github.com/iliyamo/atelier-booking/internal/upload"
)

// Notifier delivers booking events to participants.  Delivery is best
// effort.
type Notifier interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Uploader stores a payment proof and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, f upload.File, folder string) (string, error)
}

const notifyTimeout = 5 * time.Second

// notify publishes an event for a committed booking.  Failures are logged
// and dropped; the booking is already committed.
func notify(ctx context.Context, n Notifier, typ string, b model.Booking, at time.Time) {
	if n == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	ev := queue.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		Kind:       string(b.Kind),
		ResourceID: b.ResourceID,
		Name:       b.Name,
		Email:      b.Email,
		Phone:      b.Phone,
		Title:      b.Resource.Title,
		Date:       b.Resource.Date,
		StartTime:  b.Resource.StartTime,
		Price:      b.Resource.Price,
		Status:     string(b.Status),
		OccurredAt: at.Format(time.RFC3339),
	}
	if err := n.Publish(ctx, ev); err != nil {
		log.Printf("booking-notify: %s for %s dropped: %v", typ, b.ID, err)
	}
}
