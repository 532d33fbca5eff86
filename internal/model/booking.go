package model

import "time"

// Status is the lifecycle state of a booking or a corporate inquiry.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
)

// transitions is the whole booking state machine.  A status missing from
// the map has no outgoing edges.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusPending},
	StatusPending:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusPending, StatusCanceled},
}

// CanTransition reports whether a booking may move from one status to
// another.  Staying in place is not a transition.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AdminSettable reports whether s may be requested by an admin status
// change.  Draft is only ever written by the staged booking flow.
func AdminSettable(s Status) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCanceled
}

// Contact is the participant's contact information.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone"`
}

// Snapshot is a point-in-time copy of the booked resource's display
// fields.  It is never refreshed after the booking is written.
type Snapshot struct {
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	Price     float64 `json:"price"`
}

// Booking is a participant's reservation against a resource.
//
// Fields:
//
//	ID              – opaque document id.
//	Kind            – kind of the booked resource.
//	ResourceID      – id of the booked resource.
//	Status          – draft, pending, confirmed or canceled.
//	PaymentProofURL – uploaded proof of payment; empty only while draft.
//	Resource        – display snapshot taken when the booking was created.
//	WhyJoin         – free-text answer (Pause d'Art only).
//	LastTimeForSelf – free-text answer (Pause d'Art only).
type Booking struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	ResourceID string `json:"resourceId"`
	Contact
	Status          Status    `json:"status"`
	PaymentProofURL string    `json:"paymentProofUrl,omitempty"`
	Resource        Snapshot  `json:"resource"`
	WhyJoin         string    `json:"whyJoin,omitempty"`
	LastTimeForSelf string    `json:"lastTimeForSelf,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
