package inquiries

import (
	"time"

	"github.com/google/uuid"

	"github.com/vivenda/marketplace-backend/internal/accounts"
	"github.com/vivenda/marketplace-backend/internal/properties"
)

// InquiryStatus is the follow-up state of a buyer lead. Assigned only by the
// inquiry machine.
type InquiryStatus string

const (
	InquiryNew        InquiryStatus = "new"
	InquiryContacted  InquiryStatus = "contacted"
	InquiryInProgress InquiryStatus = "in_progress"
	InquiryQualified  InquiryStatus = "qualified"
	InquiryClosed     InquiryStatus = "closed"
	InquirySpam       InquiryStatus = "spam"
)

type ContactMethod string

const (
	ContactEmail    ContactMethod = "email"
	ContactPhone    ContactMethod = "phone"
	ContactWhatsApp ContactMethod = "whatsapp"
)

// Inquiry is a contact request from a potential buyer about a listing.
type Inquiry struct {
	ID         uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PropertyID uuid.UUID            `gorm:"type:uuid;not null;index:idx_inquiries_property_status,priority:1" json:"property_id"`
	Property   *properties.Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`

	FullName string `gorm:"not null" json:"full_name"`
	Email    string `gorm:"not null;index" json:"email"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`

	Message                string        `gorm:"not null" json:"message"`
	PreferredContactMethod ContactMethod `gorm:"type:varchar(20);default:'email'" json:"preferred_contact_method"`

	BudgetMin *float64 `json:"budget_min,omitempty"`
	BudgetMax *float64 `json:"budget_max,omitempty"`

	Status        InquiryStatus `gorm:"type:varchar(20);not null;default:'new';index:idx_inquiries_property_status,priority:2" json:"status"`
	InternalNotes string        `json:"internal_notes"`

	// Set when the sender was logged in.
	UserID *uuid.UUID     `gorm:"type:uuid" json:"user_id,omitempty"`
	User   *accounts.User `gorm:"foreignKey:UserID" json:"-"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
	Referrer  string `json:"-"`

	Notes []InquiryNote `gorm:"foreignKey:InquiryID" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InquiryNote is an agent's follow-up note on an inquiry.
type InquiryNote struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InquiryID uuid.UUID      `gorm:"type:uuid;not null;index" json:"inquiry_id"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null" json:"author_id"`
	Author    *accounts.User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string         `gorm:"not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates an agent's inbox by status.
type Stats struct {
	Total      int64 `json:"total"`
	New        int64 `json:"new"`
	Contacted  int64 `json:"contacted"`
	InProgress int64 `json:"in_progress"`
	Qualified  int64 `json:"qualified"`
	Closed     int64 `json:"closed"`
	Spam       int64 `json:"spam"`
}
