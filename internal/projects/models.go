package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vivenda/marketplace-backend/internal/accounts"
)

// ProjectStatus progresses monotonically draft → presale →
// under_construction → delivered; cancel is reachable from every
// non-terminal state. Assigned only by the project machine.
type ProjectStatus string

const (
	ProjectDraft             ProjectStatus = "draft"
	ProjectPresale           ProjectStatus = "presale"
	ProjectUnderConstruction ProjectStatus = "under_construction"
	ProjectDelivered         ProjectStatus = "delivered"
	ProjectCancelled         ProjectStatus = "cancelled"
)

// AssetStatus is the sale state of one sellable unit. Assigned only by the
// asset machine.
type AssetStatus string

const (
	AssetAvailable AssetStatus = "available"
	AssetReserved  AssetStatus = "reserved"
	AssetSold      AssetStatus = "sold"
	AssetDelivered AssetStatus = "delivered"
)

type AssetType string

const (
	AssetApartment  AssetType = "apartment"
	AssetParking    AssetType = "parking"
	AssetStorage    AssetType = "storage"
	AssetCommercial AssetType = "commercial"
	AssetLandLot    AssetType = "land_lot"
)

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneDelayed    MilestoneStatus = "delayed"
)

// Project is a real estate development (building or complex) selling units
// off plan.
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`

	DeveloperName    string `json:"developer_name"`
	DeveloperLogoURL string `json:"developer_logo_url"`

	City      string   `gorm:"index:idx_projects_status_city,priority:2" json:"city"`
	State     string   `json:"state"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Unit counters, recomputed from asset statuses inside the same
	// transaction as any asset transition.
	TotalUnits     int `json:"total_units"`
	SoldUnits      int `json:"sold_units"`
	AvailableUnits int `json:"available_units"`

	PriceRangeMin *float64 `json:"price_range_min,omitempty"`
	PriceRangeMax *float64 `json:"price_range_max,omitempty"`

	DeliveryDate          *time.Time `json:"delivery_date,omitempty"`
	ConstructionStartDate *time.Time `json:"construction_start_date,omitempty"`

	Amenities datatypes.JSON `json:"amenities"`

	MasterPlanURL string `json:"master_plan_url"`
	BrochureURL   string `json:"brochure_url"`
	VideoURL      string `json:"video_url"`
	CoverImageURL string `json:"cover_image_url"`

	Status ProjectStatus `gorm:"type:varchar(25);not null;default:'draft';index:idx_projects_status_city,priority:1" json:"status"`

	ManagerID *uuid.UUID     `gorm:"type:uuid" json:"manager_id,omitempty"`
	Manager   *accounts.User `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`

	IsFeatured bool `gorm:"index" json:"is_featured"`

	Assets     []SellableAsset    `gorm:"foreignKey:ProjectID" json:"assets,omitempty"`
	Milestones []ProjectMilestone `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
	Images     []ProjectImage     `gorm:"foreignKey:ProjectID" json:"images,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SellableAsset is one sellable unit (apartment, parking spot, storage
// room...) inside a project. Identifier is unique per project.
type SellableAsset struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_asset_identifier,priority:1;index:idx_assets_project_status,priority:1" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	Identifier string    `gorm:"not null;uniqueIndex:uniq_asset_identifier,priority:2" json:"identifier"`
	AssetType  AssetType `gorm:"type:varchar(20);not null;default:'apartment';index" json:"asset_type"`

	Floor     *int     `json:"floor,omitempty"`
	AreaSqm   *float64 `json:"area_sqm,omitempty"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms float64  `json:"bathrooms"`
	PriceUSD  float64  `gorm:"not null" json:"price_usd"`

	Status AssetStatus `gorm:"type:varchar(20);not null;default:'available';index:idx_assets_project_status,priority:2" json:"status"`

	FloorPlanURL string         `json:"floor_plan_url"`
	Features     datatypes.JSON `json:"features"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProjectImage is one gallery entry on the public project page. Like
// property images it stores a URL only; the core never processes bytes.
type ProjectImage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	Caption   string    `json:"caption"`
	Order     int       `gorm:"column:sort_order;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectMilestone tracks construction progress.
type ProjectMilestone struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`

	TargetDate    *time.Time `json:"target_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Percentage    int        `json:"percentage"`

	Status MilestoneStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Order  int             `gorm:"column:sort_order;default:0" json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectUpdate is a news/progress post shown on the public project page.
type ProjectUpdate struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url"`

	AuthorID *uuid.UUID     `gorm:"type:uuid" json:"author_id,omitempty"`
	Author   *accounts.User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	IsPublic    bool       `gorm:"not null;default:true" json:"is_public"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationDisplay formats the project location.
func (p *Project) LocationDisplay() string {
	return p.City + ", " + p.State
}

// ProgressPercentage derives overall progress from completed milestones.
func (p *Project) ProgressPercentage() int {
	if len(p.Milestones) == 0 {
		return 0
	}
	completed := 0
	for _, m := range p.Milestones {
		if m.Status == MilestoneCompleted {
			completed++
		}
	}
	return completed * 100 / len(p.Milestones)
}
