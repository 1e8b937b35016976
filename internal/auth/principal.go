package auth

import (
	"github.com/google/uuid"

	"github.com/vivenda/marketplace-backend/internal/accounts"
)

// Permission names checked by guarded transitions.
const (
	PermApproveProperty = "can_approve_property"
)

// rolePermissions maps marketplace roles onto explicit capabilities. Staff
// hold every permission regardless of role.
var rolePermissions = map[accounts.Role]map[string]bool{
	accounts.RoleAdmin: {
		PermApproveProperty: true,
	},
}

// Principal is the authenticated identity every capability check runs
// against. It implements lifecycle.Actor.
type Principal struct {
	UserID          uuid.UUID
	Email           string
	Role            accounts.Role
	IsStaff         bool
	IsVerifiedAgent bool
}

// FromUser builds the request principal from a provisioned user record.
func FromUser(u *accounts.User) *Principal {
	return &Principal{
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.Role,
		IsStaff:         u.IsStaff,
		IsVerifiedAgent: u.IsVerifiedAgent,
	}
}

// HasPermission reports whether the principal holds the named permission.
func (p *Principal) HasPermission(permission string) bool {
	if p == nil {
		return false
	}
	if p.IsStaff {
		return true
	}
	return rolePermissions[p.Role][permission]
}

// Owns reports whether the principal is the ownerID user or staff. Ownership
// is an explicit capability check, not a query-side filter.
func (p *Principal) Owns(ownerID uuid.UUID) bool {
	return p != nil && (p.IsStaff || p.UserID == ownerID)
}

// Manages reports whether the principal manages the entity with the given
// (possibly unassigned) manager.
func (p *Principal) Manages(managerID *uuid.UUID) bool {
	if p == nil {
		return false
	}
	if p.IsStaff {
		return true
	}
	return managerID != nil && *managerID == p.UserID
}

// IsProjectAdmin reports whether the principal may administer development
// projects at all.
func (p *Principal) IsProjectAdmin() bool {
	return p != nil && (p.IsStaff || p.Role == accounts.RoleProjectAdmin)
}

// CanPublishListings reports whether the principal is a verified agent.
func (p *Principal) CanPublishListings() bool {
	if p == nil {
		return false
	}
	if p.IsStaff {
		return true
	}
	return p.Role == accounts.RoleAgent && p.IsVerifiedAgent
}
