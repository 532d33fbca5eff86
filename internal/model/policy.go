package model

import "fmt"

// SeatPolicy decides which booking statuses hold a seat, and therefore
// which single edge of the state machine reserves one.
//
//	SeatOnConfirm – only confirmed bookings occupy a seat; the seat is
//	                taken when an admin approves the payment proof.
//	SeatOnSubmit  – pending and confirmed bookings occupy a seat; the seat
//	                is taken when the booking is submitted with its proof.
//
// Either way exactly one edge (into pending or into confirmed) increments
// the counter, and every edge leaving the occupying set decrements it.
type SeatPolicy string

const (
	SeatOnConfirm SeatPolicy = "confirm"
	SeatOnSubmit  SeatPolicy = "submit"
)

// ParseSeatPolicy converts a configuration value into a SeatPolicy.
func ParseSeatPolicy(s string) (SeatPolicy, error) {
	switch p := SeatPolicy(s); p {
	case SeatOnConfirm, SeatOnSubmit:
		return p, nil
	}
	return "", fmt.Errorf("unknown seat policy %q", s)
}

// Occupies reports whether a booking in status s holds a seat.  The empty
// status stands for "no booking yet".
func (p SeatPolicy) Occupies(s Status) bool {
	switch s {
	case StatusConfirmed:
		return true
	case StatusPending:
		return p == SeatOnSubmit
	}
	return false
}

// SeatDelta returns the change to the seat counter caused by moving a
// booking from one status to another: +1, -1 or 0.
func (p SeatPolicy) SeatDelta(from, to Status) int {
	return b2i(p.Occupies(to)) - b2i(p.Occupies(from))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SeatPolicies maps each resource kind to its policy.
type SeatPolicies map[Kind]SeatPolicy

// DefaultSeatPolicies reserves workshop seats when an admin confirms the
// payment and Pause d'Art seats when the booking is submitted.
func DefaultSeatPolicies() SeatPolicies {
	return SeatPolicies{KindWorkshop: SeatOnConfirm, KindPauseArt: SeatOnSubmit}
}

// For returns the policy of kind k, falling back to SeatOnConfirm.
func (ps SeatPolicies) For(k Kind) SeatPolicy {
	if p, ok := ps[k]; ok {
		return p
	}
	return SeatOnConfirm
}
