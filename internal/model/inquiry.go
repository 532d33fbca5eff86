package model

import (
	"strings"
	"time"
)

// Selections that ask for a free-text value instead.
var customChoices = map[string]bool{"autre": true, "other": true, "custom": true}

// IsCustomChoice reports whether a select value means "something else".
func IsCustomChoice(v string) bool { return customChoices[strings.ToLower(strings.TrimSpace(v))] }

// CorporateInquiry is a quote request from a company.  It is not tied to a
// resource and never touches a seat counter.
type CorporateInquiry struct {
	ID                 string    `json:"id"`
	CompanyName        string    `json:"companyName"`
	ContactName        string    `json:"contactName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	WorkshopType       string    `json:"workshopType"`
	CustomWorkshopType string    `json:"customWorkshopType,omitempty"`
	Participants       int       `json:"participants"`
	Location           string    `json:"location"`
	CustomLocation     string    `json:"customLocation,omitempty"`
	PreferredDate      string    `json:"preferredDate,omitempty"`
	Message            string    `json:"message,omitempty"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Normalize collapses the "other" selections into their free-text value so
// WorkshopType and Location always hold what should be displayed.
func (q *CorporateInquiry) Normalize() {
	if IsCustomChoice(q.WorkshopType) && q.CustomWorkshopType != "" {
		q.WorkshopType = q.CustomWorkshopType
	}
	if IsCustomChoice(q.Location) && q.CustomLocation != "" {
		q.Location = q.CustomLocation
	}
}
