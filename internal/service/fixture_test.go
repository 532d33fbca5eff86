package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/atelier-booking/internal/auth"
	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/queue"
	"github.com/iliyamo/atelier-booking/internal/repository"
	"github.com/iliyamo/atelier-booking/internal/upload"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (f *fakeNotifier) Publish(_ context.Context, ev queue.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakeNotifier) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeUploader struct {
	calls int32
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, file upload.File, folder string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + folder + "/" + file.Name, nil
}

type fixture struct {
	store      *docstore.Store
	resRepo    *repository.ResourceRepo
	bookRepo   *repository.BookingRepo
	resources  *ResourceService
	bookings   *BookingService
	inquiries  *InquiryService
	categories *CategoryService
	profiles   *repository.ProfileRepo
	notifier   *fakeNotifier
	uploader   *fakeUploader

	admin context.Context
	user  context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := docstore.New(docstore.NewMemory(), docstore.WithMaxAttempts(500), docstore.WithBackoff(0))
	profiles := repository.NewProfileRepo(store)
	ctx := context.Background()
	require.NoError(t, profiles.Create(ctx, model.Profile{ID: "admin-1", Email: "admin@atelier.ma", Role: model.RoleAdmin}))
	require.NoError(t, profiles.Create(ctx, model.Profile{ID: "user-1", Email: "visitor@atelier.ma"}))

	var tick int64
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var seq int64
	base := Base{
		Store: store,
		Guard: Guard{Profiles: profiles},
		Now: func() time.Time {
			return start.Add(time.Duration(atomic.AddInt64(&tick, 1)) * time.Second)
		},
		NewID: func() string { return fmt.Sprintf("id-%04d", atomic.AddInt64(&seq, 1)) },
	}

	f := &fixture{
		store:    store,
		resRepo:  repository.NewResourceRepo(store),
		bookRepo: repository.NewBookingRepo(store),
		profiles: profiles,
		notifier: &fakeNotifier{},
		uploader: &fakeUploader{},
		admin:    auth.WithActor(ctx, "admin-1"),
		user:     auth.WithActor(ctx, "user-1"),
	}
	f.resources = NewResourceService(base, f.resRepo)
	f.bookings = NewBookingService(base, f.resRepo, f.bookRepo, model.DefaultSeatPolicies())
	f.bookings.Notifier = f.notifier
	f.bookings.Uploader = f.uploader
	f.inquiries = NewInquiryService(base, repository.NewInquiryRepo(store))
	f.categories = NewCategoryService(base, repository.NewCategoryRepo(store))
	return f
}

// seedResource writes a resource directly, bypassing the service rules.
func (f *fixture) seedResource(t *testing.T, kind model.Kind, id string, capacity, booked int, status string) model.Resource {
	t.Helper()
	res := model.Resource{
		ID: id, Kind: kind, Title: "Aquarelle " + id, Date: "2025-04-12", StartTime: "10:00", EndTime: "12:00",
		Capacity: capacity, BookedSeats: booked, Price: 350, Status: status,
	}
	require.NoError(t, f.store.RunTransaction(context.Background(), func(ctx context.Context, tx *docstore.Tx) error {
		return f.resRepo.CreateTx(tx, res)
	}))
	return res
}

func (f *fixture) resource(t *testing.T, kind model.Kind, id string) model.Resource {
	t.Helper()
	res, err := f.resRepo.Get(context.Background(), kind, id)
	require.NoError(t, err)
	return res
}

func (f *fixture) booking(t *testing.T, kind model.Kind, id string) model.Booking {
	t.Helper()
	b, err := f.bookRepo.Get(context.Background(), kind, id)
	require.NoError(t, err)
	return b
}

func (f *fixture) allBookings(t *testing.T, kind model.Kind) []model.Booking {
	t.Helper()
	list, err := f.bookRepo.List(context.Background(), kind)
	require.NoError(t, err)
	return list
}

// occupying counts the bookings that hold a seat on a resource.
func (f *fixture) occupying(t *testing.T, kind model.Kind, resourceID string) int {
	t.Helper()
	list, err := f.bookRepo.ListByResource(context.Background(), kind, resourceID)
	require.NoError(t, err)
	policy := f.bookings.Policies.For(kind)
	n := 0
	for _, b := range list {
		if policy.Occupies(b.Status) {
			n++
		}
	}
	return n
}

// version returns the stored version of a document, to prove that a
// no-op wrote nothing.
func (f *fixture) version(t *testing.T, collection, id string) int64 {
	t.Helper()
	snaps, err := f.store.Find(context.Background(), collection, nil)
	require.NoError(t, err)
	for _, s := range snaps {
		if s.ID == id {
			return s.Version
		}
	}
	t.Fatalf("%s/%s not found", collection, id)
	return 0
}

func contact(name string) BookingInput {
	return BookingInput{ContactInput: ContactInput{Name: name, Email: name + "@example.com", Phone: "+212600000000"}}
}

var proofURL = Proof{URL: "https://cdn.example.com/proof.jpg"}

// pendingWorkshopBooking runs the staged flow up to pending.
func (f *fixture) pendingWorkshopBooking(t *testing.T, resourceID, name string) model.Booking {
	t.Helper()
	b, err := f.bookings.Start(context.Background(), model.KindWorkshop, resourceID, contact(name))
	require.NoError(t, err)
	b, err = f.bookings.AttachPayment(context.Background(), model.KindWorkshop, b.ID, proofURL)
	require.NoError(t, err)
	return b
}
