package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

// InquiryInput is the corporate quote request form.
type InquiryInput struct {
	CompanyName        string `json:"companyName" validate:"required"`
	ContactName        string `json:"contactName" validate:"required"`
	Email              string `json:"email" validate:"required,contactemail"`
	Phone              string `json:"phone" validate:"required"`
	WorkshopType       string `json:"workshopType" validate:"required"`
	CustomWorkshopType string `json:"customWorkshopType"`
	Participants       int    `json:"participants" validate:"required,gte=1"`
	Location           string `json:"location" validate:"required"`
	CustomLocation     string `json:"customLocation"`
	PreferredDate      string `json:"preferredDate" validate:"omitempty,datetime=2006-01-02"`
	Message            string `json:"message"`
}

func (in *InquiryInput) normalize() {
	for _, f := range []*string{
		&in.CompanyName, &in.ContactName, &in.Phone, &in.WorkshopType,
		&in.CustomWorkshopType, &in.Location, &in.CustomLocation, &in.Message,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

// InquiryService handles corporate quote requests.  They never touch a
// seat counter.
type InquiryService struct {
	Base
	Inquiries *repository.InquiryRepo
}

func NewInquiryService(b Base, inquiries *repository.InquiryRepo) *InquiryService {
	b.mustBeWired("inquiry service")
	if inquiries == nil {
		panic("inquiry service: nil inquiry repo")
	}
	return &InquiryService{Base: b, Inquiries: inquiries}
}

// Submit validates and stores a new inquiry as pending.
func (s *InquiryService) Submit(ctx context.Context, in InquiryInput) (model.CorporateInquiry, error) {
	in.normalize()
	if err := check(&in); err != nil {
		return model.CorporateInquiry{}, err
	}
	var missing []string
	if model.IsCustomChoice(in.WorkshopType) && in.CustomWorkshopType == "" {
		missing = append(missing, "customWorkshopType")
	}
	if model.IsCustomChoice(in.Location) && in.CustomLocation == "" {
		missing = append(missing, "customLocation")
	}
	if len(missing) > 0 {
		return model.CorporateInquiry{}, invalid("missing required fields", missing...)
	}

	now := s.now()
	q := model.CorporateInquiry{
		ID:                 s.newID(),
		CompanyName:        in.CompanyName,
		ContactName:        in.ContactName,
		Email:              in.Email,
		Phone:              in.Phone,
		WorkshopType:       in.WorkshopType,
		CustomWorkshopType: in.CustomWorkshopType,
		Participants:       in.Participants,
		Location:           in.Location,
		CustomLocation:     in.CustomLocation,
		PreferredDate:      in.PreferredDate,
		Message:            in.Message,
		Status:             model.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	q.Normalize()
	err := s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		return s.Inquiries.CreateTx(tx, q)
	})
	if err != nil {
		return model.CorporateInquiry{}, err
	}
	return q, nil
}

// SetStatus moves an inquiry through the same transition table as
// bookings.  Setting the current status again writes nothing.
func (s *InquiryService) SetStatus(ctx context.Context, id string, status model.Status) (model.CorporateInquiry, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return model.CorporateInquiry{}, err
	}
	if !model.AdminSettable(status) {
		return model.CorporateInquiry{}, invalid("status must be pending, confirmed or canceled", "status")
	}
	var out model.CorporateInquiry
	err := s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		q, err := s.Inquiries.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}
		out = q
		if q.Status == status {
			return nil
		}
		if !model.CanTransition(q.Status, status) {
			return invalid(fmt.Sprintf("cannot move a %s inquiry to %s", q.Status, status), "status")
		}
		q.Status = status
		q.UpdatedAt = s.now()
		out = q
		return s.Inquiries.PutTx(tx, q)
	})
	if err != nil {
		return model.CorporateInquiry{}, err
	}
	return out, nil
}

// List returns all inquiries for the admin table.
func (s *InquiryService) List(ctx context.Context) ([]model.CorporateInquiry, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return nil, err
	}
	return s.Inquiries.List(ctx)
}
