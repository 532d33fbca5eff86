package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

// ResourceInput creates a workshop or a Pause d'Art session.  Capacity and
// Price are pointers so that a missing value is told apart from zero.
type ResourceInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string   `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string   `json:"endTime" validate:"omitempty,datetime=15:04"`
	Category    string   `json:"category"`
	Capacity    *int     `json:"capacity" validate:"required,gt=0"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Status      string   `json:"status" validate:"omitempty,oneof=draft published cancelled"`
	Image       string   `json:"image"`
	Todos       []string `json:"todos"`
}

// Fields an admin may change on an existing resource.  The seat counter
// is deliberately absent: only the booking engine writes it.
var (
	workshopFields = []string{"title", "description", "date", "startTime", "endTime", "category", "capacity", "price", "status", "image"}
	sessionFields  = []string{"title", "description", "date", "startTime", "endTime", "category", "capacity", "price", "status", "image", "todos"}
)

// ResourceService manages workshops and Pause d'Art sessions.
type ResourceService struct {
	Base
	Resources *repository.ResourceRepo
}

func NewResourceService(b Base, resources *repository.ResourceRepo) *ResourceService {
	b.mustBeWired("resource service")
	if resources == nil {
		panic("resource service: nil resource repo")
	}
	return &ResourceService{Base: b, Resources: resources}
}

// Create validates in and writes a new resource with no booked seats.
// Publishing a session through Create unpublishes any other session.
func (s *ResourceService) Create(ctx context.Context, kind model.Kind, in ResourceInput) (model.Resource, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return model.Resource{}, err
	}
	if !kind.Valid() {
		return model.Resource{}, invalid("unknown resource kind", "kind")
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return model.Resource{}, err
	}
	if kind == model.KindWorkshop && in.EndTime == "" {
		return model.Resource{}, invalid("missing required fields", "endTime")
	}

	now := s.now()
	res := model.Resource{
		ID:          s.newID(),
		Kind:        kind,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Category:    in.Category,
		Capacity:    *in.Capacity,
		Price:       *in.Price,
		Status:      in.Status,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if kind == model.KindPauseArt {
		res.Todos = in.Todos
	}
	if res.Status == "" {
		res.Status = model.ResourceDraft
	}

	err := s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		if err := s.keepFeaturedUnique(ctx, tx, res, now); err != nil {
			return err
		}
		return s.Resources.CreateTx(tx, res)
	})
	if err != nil {
		return model.Resource{}, err
	}
	return res, nil
}

// Update applies the whitelisted keys of patch and returns the stored
// state.  Unknown keys are ignored; a patch with no known key is rejected.
func (s *ResourceService) Update(ctx context.Context, kind model.Kind, id string, patch map[string]any) (model.Resource, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return model.Resource{}, err
	}
	p, err := coercePatch(kind, patch)
	if err != nil {
		return model.Resource{}, err
	}

	err = s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		res, err := s.Resources.GetTx(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		p.apply(&res)
		if res.Capacity < res.BookedSeats {
			return invalid("capacity is below the number of booked seats", "capacity")
		}
		settle(&res)
		now := s.now()
		res.UpdatedAt = now
		if err := s.keepFeaturedUnique(ctx, tx, res, now); err != nil {
			return err
		}
		return s.Resources.PutTx(tx, res)
	})
	if err != nil {
		return model.Resource{}, err
	}
	return s.Resources.Get(ctx, kind, id)
}

// Delete hard-deletes a resource.  Its bookings are left in place and keep
// their snapshot.
func (s *ResourceService) Delete(ctx context.Context, kind model.Kind, id string) error {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return err
	}
	return s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		if _, err := s.Resources.GetTx(ctx, tx, kind, id); err != nil {
			return err
		}
		s.Resources.DeleteTx(tx, kind, id)
		return nil
	})
}

// ListPublished is the storefront listing and needs no actor.
func (s *ResourceService) ListPublished(ctx context.Context, kind model.Kind) ([]model.Resource, error) {
	return s.Resources.List(ctx, kind, model.ResourcePublished)
}

// ListAll returns every resource of a kind, optionally filtered by status.
// It is an admin view.
func (s *ResourceService) ListAll(ctx context.Context, kind model.Kind, status string) ([]model.Resource, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return nil, err
	}
	return s.Resources.List(ctx, kind, status)
}

// Featured returns the single active Pause d'Art session, or nil.  A
// session that filled up is still the featured one and is returned with
// its fully-booked status.
func (s *ResourceService) Featured(ctx context.Context) (*model.Resource, error) {
	for _, status := range []string{model.ResourcePublished, model.ResourceFullyBooked} {
		list, err := s.Resources.List(ctx, model.KindPauseArt, status)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			// Uniqueness is enforced on write; if older data still holds
			// several, the most recently updated one wins.
			sort.SliceStable(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
			return &list[0], nil
		}
	}
	return nil, nil
}

// keepFeaturedUnique moves every other active session back to draft when
// res is an active session.
func (s *ResourceService) keepFeaturedUnique(ctx context.Context, tx *docstore.Tx, res model.Resource, now time.Time) error {
	if res.Kind != model.KindPauseArt || !active(res.Status) {
		return nil
	}
	for _, status := range []string{model.ResourcePublished, model.ResourceFullyBooked} {
		others, err := s.Resources.ListByStatusTx(ctx, tx, model.KindPauseArt, status)
		if err != nil {
			return err
		}
		for _, o := range others {
			if o.ID == res.ID {
				continue
			}
			o.Status = model.ResourceDraft
			o.UpdatedAt = now
			if err := s.Resources.PutTx(tx, o); err != nil {
				return err
			}
		}
	}
	return nil
}

func active(status string) bool {
	return status == model.ResourcePublished || status == model.ResourceFullyBooked
}

// settle keeps the derived fully-booked status in line with the seat
// counter.  Draft and cancelled resources are left alone.
func settle(res *model.Resource) {
	if !active(res.Status) {
		return
	}
	if res.BookedSeats >= res.Capacity {
		res.Status = model.ResourceFullyBooked
	} else {
		res.Status = model.ResourcePublished
	}
}

// resourcePatch is a coerced, whitelisted partial update.
type resourcePatch struct {
	strs     map[string]string
	capacity *int
	price    *float64
	todos    []string
	hasTodos bool
}

func (p resourcePatch) apply(res *model.Resource) {
	for k, v := range p.strs {
		switch k {
		case "title":
			res.Title = v
		case "description":
			res.Description = v
		case "date":
			res.Date = v
		case "startTime":
			res.StartTime = v
		case "endTime":
			res.EndTime = v
		case "category":
			res.Category = v
		case "status":
			res.Status = v
		case "image":
			res.Image = v
		}
	}
	if p.capacity != nil {
		res.Capacity = *p.capacity
	}
	if p.price != nil {
		res.Price = *p.price
	}
	if p.hasTodos {
		res.Todos = p.todos
	}
}

func coercePatch(kind model.Kind, raw map[string]any) (resourcePatch, error) {
	allowed := workshopFields
	if kind == model.KindPauseArt {
		allowed = sessionFields
	}
	p := resourcePatch{strs: map[string]string{}}
	var bad []string
	seen := 0
	for _, k := range allowed {
		v, ok := raw[k]
		if !ok {
			continue
		}
		seen++
		switch k {
		case "capacity":
			n, ok := toInt(v)
			if !ok || n <= 0 {
				bad = append(bad, k)
				continue
			}
			p.capacity = &n
		case "price":
			f, ok := toFloat(v)
			if !ok || f < 0 {
				bad = append(bad, k)
				continue
			}
			p.price = &f
		case "todos":
			todos, ok := toStrings(v)
			if !ok {
				bad = append(bad, k)
				continue
			}
			p.todos, p.hasTodos = todos, true
		default:
			str, ok := v.(string)
			if !ok || !validString(k, str) {
				bad = append(bad, k)
				continue
			}
			p.strs[k] = strings.TrimSpace(str)
		}
	}
	if seen == 0 {
		return p, invalid("no updatable fields in request")
	}
	if len(bad) > 0 {
		return p, invalid("invalid fields", bad...)
	}
	return p, nil
}

func validString(field, v string) bool {
	switch field {
	case "title":
		return strings.TrimSpace(v) != ""
	case "date":
		return validate.Var(v, "datetime=2006-01-02") == nil
	case "startTime", "endTime":
		return v == "" || validate.Var(v, "datetime=15:04") == nil
	case "status":
		// fully-booked is derived from the seat counter and never set
		// directly.
		return v == model.ResourceDraft || v == model.ResourcePublished || v == model.ResourceCancelled
	}
	return true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
