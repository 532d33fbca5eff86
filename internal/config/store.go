package config

import (
	"log"
	"time"

	"github.com/iliyamo/atelier-booking/internal/model"
)

// StoreConfig tunes the optimistic transaction runner and the jobs built
// on top of the document store.
type StoreConfig struct {
	MaxAttempts   int           // TXN_MAX_ATTEMPTS: runs of a conflicting transaction before giving up
	Backoff       time.Duration // TXN_BACKOFF: base delay between attempts
	AuditInterval time.Duration // SEAT_AUDIT_INTERVAL: 0 disables the seat counter audit
	ResumeTTL     time.Duration // RESUME_TTL: lifetime of draft resume entries
}

// LoadStoreConfig reads store tuning with defaults.
func LoadStoreConfig() StoreConfig {
	c := StoreConfig{
		MaxAttempts:   envInt("TXN_MAX_ATTEMPTS", 5),
		Backoff:       envDur("TXN_BACKOFF", 5*time.Millisecond),
		AuditInterval: envDur("SEAT_AUDIT_INTERVAL", 15*time.Minute),
		ResumeTTL:     envDur("RESUME_TTL", 24*time.Hour),
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Backoff < 0 {
		c.Backoff = 0
	}
	return c
}

// LoadSeatPolicies reads WORKSHOP_SEAT_POLICY and PAUSE_ART_SEAT_POLICY.
// Each is "confirm" (seat taken when an admin confirms) or "submit" (seat
// taken when the booking is submitted with its payment proof).  An invalid
// value is fatal, since silently falling back would change who gets a seat.
func LoadSeatPolicies() model.SeatPolicies {
	ps := model.DefaultSeatPolicies()
	for kind, key := range map[model.Kind]string{
		model.KindWorkshop: "WORKSHOP_SEAT_POLICY",
		model.KindPauseArt: "PAUSE_ART_SEAT_POLICY",
	} {
		v := envStr(key, "")
		if v == "" {
			continue
		}
		p, err := model.ParseSeatPolicy(v)
		if err != nil {
			log.Fatalf("invalid %s: %v", key, err)
		}
		ps[kind] = p
	}
	return ps
}
