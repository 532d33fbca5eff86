package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchRunsAllHandlers(t *testing.T) {
	ev := BookingEvent{Type: BookingConfirmed, BookingID: "b1", Title: "Aquarelle"}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var seen []string
	boom := errors.New("boom")
	err = Dispatch(context.Background(), body,
		HandlerFunc(func(_ context.Context, e BookingEvent) error {
			seen = append(seen, "first:"+e.BookingID)
			return boom
		}),
		HandlerFunc(func(_ context.Context, e BookingEvent) error {
			seen = append(seen, "second:"+e.Title)
			return nil
		}),
	)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:b1", "second:Aquarelle"}, seen)
}

func TestDispatchRejectsGarbage(t *testing.T) {
	err := Dispatch(context.Background(), []byte("{"))
	assert.Error(t, err)
}

func TestJournalAppends(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir)
	ev := BookingEvent{Type: BookingSubmitted, BookingID: "b1", Kind: "pauseArt", Name: "Salma", Price: 350}
	require.NoError(t, j.HandleBookingEvent(context.Background(), ev))
	ev.BookingID = "b2"
	require.NoError(t, j.HandleBookingEvent(context.Background(), ev))

	raw, err := os.ReadFile(filepath.Join(dir, "booking.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "booking_id=b1")
	assert.Contains(t, string(raw), "booking_id=b2")
	assert.Contains(t, string(raw), "price=350.00 DH")
}
