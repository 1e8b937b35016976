package inquiries

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

type Filter struct {
	Status     InquiryStatus
	PropertyID uuid.UUID
	Search     string
	Page       int
	PageSize   int
}

type Repository interface {
	InTx(ctx context.Context, fn func(Repository) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*Inquiry, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Inquiry, error)
	Create(ctx context.Context, inquiry *Inquiry) error
	Update(ctx context.Context, inquiry *Inquiry) error
	// ListForAgent scopes the inbox to inquiries about the agent's own
	// listings; staff pass uuid.Nil and see everything.
	ListForAgent(ctx context.Context, agentID uuid.UUID, filter Filter) ([]Inquiry, int64, error)
	StatsForAgent(ctx context.Context, agentID uuid.UUID) (*Stats, error)

	AddNote(ctx context.Context, note *InquiryNote) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	return r.get(ctx, r.db, id)
}

func (r *gormRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return r.get(ctx, locked, id)
}

func (r *gormRepository) get(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Inquiry, error) {
	var inquiry Inquiry
	err := db.WithContext(ctx).
		Preload("Property").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Notes.Author").
		First(&inquiry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "inquiry", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *gormRepository) Create(ctx context.Context, inquiry *Inquiry) error {
	return r.db.WithContext(ctx).Omit("Property", "User", "Notes").Create(inquiry).Error
}

func (r *gormRepository) Update(ctx context.Context, inquiry *Inquiry) error {
	return r.db.WithContext(ctx).Omit("Property", "User", "Notes").Save(inquiry).Error
}

func (r *gormRepository) agentScope(ctx context.Context, agentID uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&Inquiry{})
	if agentID != uuid.Nil {
		q = q.Joins("JOIN properties ON properties.id = inquiries.property_id").
			Where("properties.agent_id = ?", agentID)
	}
	return q
}

func (r *gormRepository) ListForAgent(ctx context.Context, agentID uuid.UUID, filter Filter) ([]Inquiry, int64, error) {
	q := r.agentScope(ctx, agentID)

	if filter.Status != "" {
		q = q.Where("inquiries.status = ?", filter.Status)
	}
	if filter.PropertyID != uuid.Nil {
		q = q.Where("inquiries.property_id = ?", filter.PropertyID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("inquiries.full_name ILIKE ? OR inquiries.email ILIKE ?", like, like)
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

	var items []Inquiry
	err := q.Preload("Property").
		Order("inquiries.created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&items).Error
	return items, total, err
}

func (r *gormRepository) StatsForAgent(ctx context.Context, agentID uuid.UUID) (*Stats, error) {
	type row struct {
		Status InquiryStatus
		N      int64
	}
	var rows []row
	err := r.agentScope(ctx, agentID).
		Select("inquiries.status AS status, COUNT(*) AS n").
		Group("inquiries.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := &Stats{}
	for _, rw := range rows {
		stats.Total += rw.N
		switch rw.Status {
		case InquiryNew:
			stats.New = rw.N
		case InquiryContacted:
			stats.Contacted = rw.N
		case InquiryInProgress:
			stats.InProgress = rw.N
		case InquiryQualified:
			stats.Qualified = rw.N
		case InquiryClosed:
			stats.Closed = rw.N
		case InquirySpam:
			stats.Spam = rw.N
		}
	}
	return stats, nil
}

func (r *gormRepository) AddNote(ctx context.Context, note *InquiryNote) error {
	return r.db.WithContext(ctx).Omit("Author").Create(note).Error
}
