// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types.
const (
	BookingSubmitted = "booking.submitted"
	BookingConfirmed = "booking.confirmed"
)

// BookingEvent is published after a booking commit that the participant
// should hear about.  It contains everything the consumers need to write a
// journal line or an email without querying the document store.
type BookingEvent struct {
	Type       string  `json:"type"`
	BookingID  string  `json:"booking_id"`
	Kind       string  `json:"kind"`
	ResourceID string  `json:"resource_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone"`
	Title      string  `json:"title"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
	OccurredAt string  `json:"occurred_at"`
}
