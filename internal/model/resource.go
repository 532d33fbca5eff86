package model

import "time"

// Kind distinguishes the two bookable resource variants.  Each kind lives
// in its own collection and has its own booking collection.
type Kind string

const (
	KindWorkshop Kind = "workshop"
	KindPauseArt Kind = "pauseArt"
)

// Valid reports whether k is a known resource kind.
func (k Kind) Valid() bool { return k == KindWorkshop || k == KindPauseArt }

// Resource visibility and availability states.  Draft and published are
// set by admins; fully-booked is derived from the seat counter and is only
// ever written by the booking engine.
const (
	ResourceDraft       = "draft"
	ResourcePublished   = "published"
	ResourceFullyBooked = "fully-booked"
	ResourceCancelled   = "cancelled"
)

// Resource is a capacity-limited offering: a workshop or a Pause d'Art
// session.
//
// Fields:
//
//	ID          – opaque document id.
//	Kind        – workshop or pauseArt.
//	Title       – display title copied into booking snapshots.
//	Date        – calendar date, YYYY-MM-DD.
//	StartTime   – local start time, HH:MM.
//	EndTime     – local end time, HH:MM (required for workshops).
//	Capacity    – number of seats, always positive.
//	BookedSeats – seats held by occupying bookings.  Mutated only by the
//	              booking engine inside the transaction that changes the
//	              booking status.
//	Price       – price per seat in dirhams.
//	Status      – draft, published, fully-booked or cancelled.
//	Todos       – agenda items (sessions only).
type Resource struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime,omitempty"`
	Category    string    `json:"category,omitempty"`
	Capacity    int       `json:"capacity"`
	BookedSeats int       `json:"bookedSeats"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	Image       string    `json:"image,omitempty"`
	Todos       []string  `json:"todos,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Available returns the number of seats not yet held.
func (r Resource) Available() int { return r.Capacity - r.BookedSeats }

// Snapshot captures the display fields copied into a booking.
func (r Resource) Snapshot() Snapshot {
	return Snapshot{Title: r.Title, Date: r.Date, StartTime: r.StartTime, Price: r.Price}
}
