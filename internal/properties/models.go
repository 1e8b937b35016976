package properties

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vivenda/marketplace-backend/internal/accounts"
)

// PropertyStatus is the listing approval workflow state. It is only ever
// assigned by the property machine in machine.go.
type PropertyStatus string

const (
	StatusDraft         PropertyStatus = "draft"
	StatusPendingReview PropertyStatus = "pending_review"
	StatusActive        PropertyStatus = "active"
	StatusRejected      PropertyStatus = "rejected"
	StatusInactive      PropertyStatus = "inactive"
	StatusSold          PropertyStatus = "sold"
	StatusRented        PropertyStatus = "rented"
)

// PropertyType is vacation/luxury focused, matching the market the platform
// serves.
type PropertyType string

const (
	TypeBeachApartment PropertyType = "beach_apartment"
	TypeApartment      PropertyType = "apartment"
	TypeHouse          PropertyType = "house"
	TypeVilla          PropertyType = "villa"
	TypePenthouse      PropertyType = "penthouse"
	TypeFinca          PropertyType = "finca"
	TypeTownhouse      PropertyType = "townhouse"
	TypeBeachHouse     PropertyType = "beach_house"
	TypeLand           PropertyType = "land"
	TypeCommercial     PropertyType = "commercial"
)

type ListingType string

const (
	ListingSale ListingType = "sale"
	ListingRent ListingType = "rent"
)

// Property is a real estate listing owned by one agent and reviewed by
// staff before going public.
type Property struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`

	PropertyType PropertyType   `gorm:"type:varchar(20);not null;default:'house';index" json:"property_type"`
	ListingType  ListingType    `gorm:"type:varchar(10);not null;default:'sale'" json:"listing_type"`
	Status       PropertyStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_properties_status_listing" json:"status"`

	PriceUSD        float64 `gorm:"not null;index" json:"price_usd"`
	PriceNegotiable bool    `json:"price_negotiable"`

	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     float64  `json:"bathrooms"`
	AreaSqm       *float64 `json:"area_sqm,omitempty"`
	LotSizeSqm    *float64 `json:"lot_size_sqm,omitempty"`
	YearBuilt     *int     `json:"year_built,omitempty"`
	ParkingSpaces int      `json:"parking_spaces"`

	Address   string   `json:"address"`
	City      string   `gorm:"index:idx_properties_city_state" json:"city"`
	State     string   `gorm:"index:idx_properties_city_state" json:"state"`
	ZipCode   string   `json:"zip_code"`
	Country   string   `gorm:"default:'Venezuela'" json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Features datatypes.JSON `json:"features"`

	AgentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"agent_id"`
	Agent   *accounts.User `gorm:"foreignKey:AgentID" json:"agent,omitempty"`

	IsFeatured              bool `gorm:"index" json:"is_featured"`
	IsNewConstruction       bool `json:"is_new_construction"`
	IsBeachfront            bool `json:"is_beachfront"`
	IsInvestmentOpportunity bool `json:"is_investment_opportunity"`

	ViewCount int `json:"view_count"`

	// Approval workflow bookkeeping, written by transition side effects.
	SubmittedAt     *time.Time     `json:"submitted_at,omitempty"`
	ReviewedByID    *uuid.UUID     `gorm:"type:uuid" json:"reviewed_by_id,omitempty"`
	ReviewedBy      *accounts.User `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	RejectionReason string         `json:"rejection_reason"`
	AdminNotes      string         `json:"-"`

	Images []PropertyImage `gorm:"foreignKey:PropertyID" json:"images"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PropertyImage stores an uploaded object key or an external URL; the core
// never processes image bytes.
type PropertyImage struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	ImageURL   string    `gorm:"not null" json:"image_url"`
	Caption    string    `json:"caption"`
	IsMain     bool      `json:"is_main"`
	Order      int       `gorm:"column:sort_order;default:0" json:"order"`
	CreatedAt  time.Time `json:"created_at"`
}

// SavedProperty is a user's favorite. One row per (user, property).
type SavedProperty struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_saved_user_property" json:"user_id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_saved_user_property" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LocationDisplay formats the listing location for cards and detail pages.
func (p *Property) LocationDisplay() string {
	return p.City + ", " + p.State
}

// reviewReady is the submit_for_review guard: title, description and price
// set, plus at least one image. Callers must load the property with its
// images for the guard to see them.
func (p *Property) reviewReady() bool {
	return p.Title != "" && p.Description != "" && p.PriceUSD > 0 && len(p.Images) > 0
}
