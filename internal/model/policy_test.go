package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	allowed := [][2]Status{
		{StatusDraft, StatusPending},
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCanceled},
		{StatusConfirmed, StatusPending},
		{StatusConfirmed, StatusCanceled},
	}
	for _, e := range allowed {
		assert.True(t, CanTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}

	denied := [][2]Status{
		{StatusDraft, StatusConfirmed},
		{StatusDraft, StatusCanceled},
		{StatusPending, StatusDraft},
		{StatusConfirmed, StatusDraft},
		{StatusCanceled, StatusPending},
		{StatusCanceled, StatusConfirmed},
		{StatusPending, StatusPending},
	}
	for _, e := range denied {
		assert.False(t, CanTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}
}

func TestSeatDeltaHasOneReservingEdge(t *testing.T) {
	statuses := []Status{StatusDraft, StatusPending, StatusConfirmed, StatusCanceled}
	for _, p := range []SeatPolicy{SeatOnConfirm, SeatOnSubmit} {
		reserving := 0
		for _, from := range statuses {
			for _, to := range statuses {
				if CanTransition(from, to) && p.SeatDelta(from, to) > 0 {
					reserving++
				}
			}
		}
		assert.Equal(t, 1, reserving, "policy %s", p)
	}
}

func TestSeatDelta(t *testing.T) {
	assert.Equal(t, 0, SeatOnConfirm.SeatDelta(StatusDraft, StatusPending))
	assert.Equal(t, 1, SeatOnConfirm.SeatDelta(StatusPending, StatusConfirmed))
	assert.Equal(t, -1, SeatOnConfirm.SeatDelta(StatusConfirmed, StatusCanceled))
	assert.Equal(t, -1, SeatOnConfirm.SeatDelta(StatusConfirmed, StatusPending))

	assert.Equal(t, 1, SeatOnSubmit.SeatDelta("", StatusPending))
	assert.Equal(t, 1, SeatOnSubmit.SeatDelta(StatusDraft, StatusPending))
	assert.Equal(t, 0, SeatOnSubmit.SeatDelta(StatusPending, StatusConfirmed))
	assert.Equal(t, 0, SeatOnSubmit.SeatDelta(StatusConfirmed, StatusPending))
	assert.Equal(t, -1, SeatOnSubmit.SeatDelta(StatusPending, StatusCanceled))
}

func TestParseSeatPolicy(t *testing.T) {
	p, err := ParseSeatPolicy("submit")
	assert.NoError(t, err)
	assert.Equal(t, SeatOnSubmit, p)

	_, err = ParseSeatPolicy("creation")
	assert.Error(t, err)
}

func TestInquiryNormalize(t *testing.T) {
	q := CorporateInquiry{WorkshopType: "autre", CustomWorkshopType: "Poterie", Location: "other", CustomLocation: "Rabat"}
	q.Normalize()
	assert.Equal(t, "Poterie", q.WorkshopType)
	assert.Equal(t, "Rabat", q.Location)

	q = CorporateInquiry{WorkshopType: "peinture", CustomWorkshopType: "ignored", Location: "atelier"}
	q.Normalize()
	assert.Equal(t, "peinture", q.WorkshopType)
	assert.Equal(t, "atelier", q.Location)
}
