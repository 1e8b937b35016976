package accounts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role determines what a user may do across the marketplace.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleAgent        Role = "agent"
	RoleProjectAdmin Role = "project_admin"
	RoleBuyer        Role = "buyer"
)

// AgentType distinguishes independent realtors from brokerages.
type AgentType string

const (
	AgentIndividual AgentType = "individual"
	AgentCompany    AgentType = "company"
)

// User is an authenticated account: buyer by default, optionally an agent,
// project admin or staff admin. Identity verification happens upstream; the
// record here is provisioned from verified token claims.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatar_url"`
	Slug      string    `gorm:"uniqueIndex" json:"slug"`

	Role    Role `gorm:"type:varchar(20);not null;default:'buyer'" json:"role"`
	IsStaff bool `gorm:"not null;default:false" json:"is_staff"`

	// Agent profile
	AgentType       AgentType `gorm:"type:varchar(20);default:'individual'" json:"agent_type"`
	CompanyName     string    `json:"company_name"`
	LicenseNumber   string    `json:"license_number"`
	Bio             string    `json:"bio"`
	Website         string    `json:"website"`
	IsVerifiedAgent bool      `gorm:"not null;default:false" json:"is_verified_agent"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName returns the display name for directory listings.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsPublishingAgent reports whether the user may create and edit listings.
func (u *User) IsPublishingAgent() bool {
	return u.Role == RoleAgent && u.IsVerifiedAgent
}
