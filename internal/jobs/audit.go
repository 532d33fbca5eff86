// Package jobs runs background maintenance on a gocron scheduler.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

// Divergence is a resource whose stored seat counter disagrees with the
// bookings that occupy it.
type Divergence struct {
	Kind       model.Kind
	ResourceID string
	Stored     int
	Counted    int
}

// SeatAudit recounts occupying bookings per resource.  It only reads and
// reports; the counter is never corrected behind the booking engine.
type SeatAudit struct {
	Resources *repository.ResourceRepo
	Bookings  *repository.BookingRepo
	Policies  model.SeatPolicies
}

// Run audits every resource of both kinds and logs each divergence.
func (a *SeatAudit) Run(ctx context.Context) ([]Divergence, error) {
	var out []Divergence
	for _, kind := range []model.Kind{model.KindWorkshop, model.KindPauseArt} {
		d, err := a.audit(ctx, kind)
		if err != nil {
			return out, err
		}
		out = append(out, d...)
	}
	for _, d := range out {
		log.Printf("seat-audit: %s %s has bookedSeats=%d but %d occupying bookings", d.Kind, d.ResourceID, d.Stored, d.Counted)
	}
	return out, nil
}

// audit reads resources and bookings from one snapshot, so a booking
// committed between the two reads cannot show up as a divergence.
func (a *SeatAudit) audit(ctx context.Context, kind model.Kind) ([]Divergence, error) {
	var resources []model.Resource
	var bookings []model.Booking
	err := a.Resources.Store.ReadTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		var err error
		if resources, err = a.Resources.ListByStatusTx(ctx, tx, kind, ""); err != nil {
			return err
		}
		bookings, err = a.Bookings.ListTx(ctx, tx, kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	policy := a.Policies.For(kind)
	counted := make(map[string]int, len(resources))
	for _, b := range bookings {
		if policy.Occupies(b.Status) {
			counted[b.ResourceID]++
		}
	}
	var out []Divergence
	for _, r := range resources {
		if n := counted[r.ID]; n != r.BookedSeats {
			out = append(out, Divergence{Kind: kind, ResourceID: r.ID, Stored: r.BookedSeats, Counted: n})
		}
	}
	return out, nil
}

// Start schedules the audit every interval and starts the scheduler.  The
// caller owns Shutdown.
func Start(a *SeatAudit, every time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	j, err := sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), every)
			defer cancel()
			if _, err := a.Run(ctx); err != nil {
				log.Printf("seat-audit: run failed: %v", err)
			}
		}),
		gocron.WithName("seat-audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	log.Printf("seat-audit: job %s every %s", j.ID(), every)
	sched.Start()
	return sched, nil
}
