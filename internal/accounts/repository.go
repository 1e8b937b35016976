package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// AgentFilter narrows the public agent directory.
type AgentFilter struct {
	AgentType AgentType
	Search    string
	Page      int
	PageSize  int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetBySlug(ctx context.Context, slug string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	ListAgents(ctx context.Context, filter AgentFilter) ([]User, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "user", ID: id.String()}
	}
	return &user, err
}

func (r *gormRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "user", ID: email}
	}
	return &user, err
}

func (r *gormRepository) GetBySlug(ctx context.Context, slug string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "user", ID: slug}
	}
	return &user, err
}

func (r *gormRepository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormRepository) Update(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormRepository) ListAgents(ctx context.Context, filter AgentFilter) ([]User, int64, error) {
	q := r.db.WithContext(ctx).Model(&User{}).
		Where("role = ? AND is_verified_agent = ?", RoleAgent, true)

	if filter.AgentType != "" {
		q = q.Where("agent_type = ?", filter.AgentType)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("first_name ILIKE ? OR last_name ILIKE ? OR company_name ILIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var agents []User
	err := q.Order("company_name, last_name, first_name").
		Offset((page - 1) * size).Limit(size).
		Find(&agents).Error
	return agents, total, err
}
