package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// Filter narrows project queries.
type Filter struct {
	Statuses      []ProjectStatus
	ExcludeStatus ProjectStatus
	ManagerID     uuid.UUID
	City          string
	Featured      *bool
	Search        string
	OrderBy       string
	Page          int
	PageSize      int
}

// AssetFilter narrows asset queries within a project.
type AssetFilter struct {
	Status    AssetStatus
	AssetType AssetType
	MinPrice  float64
	MaxPrice  float64
	Bedrooms  int
}

type Repository interface {
	// InTx runs fn against a transactional repository; asset transitions
	// and the unit recount they trigger share one transaction.
	InTx(ctx context.Context, fn func(Repository) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, project *Project) error
	List(ctx context.Context, filter Filter) ([]Project, int64, error)

	GetAsset(ctx context.Context, id uuid.UUID) (*SellableAsset, error)
	GetAssetForUpdate(ctx context.Context, id uuid.UUID) (*SellableAsset, error)
	CreateAsset(ctx context.Context, asset *SellableAsset) error
	UpdateAsset(ctx context.Context, asset *SellableAsset) error
	DeleteAsset(ctx context.Context, id uuid.UUID) error
	ListAssets(ctx context.Context, projectID uuid.UUID, filter AssetFilter) ([]SellableAsset, error)
	// RecountUnits refreshes the project's unit counters from its assets'
	// current statuses.
	RecountUnits(ctx context.Context, projectID uuid.UUID) error

	CreateMilestone(ctx context.Context, milestone *ProjectMilestone) error
	UpdateMilestone(ctx context.Context, milestone *ProjectMilestone) error
	DeleteMilestone(ctx context.Context, id uuid.UUID) error
	GetMilestone(ctx context.Context, id uuid.UUID) (*ProjectMilestone, error)
	ListMilestones(ctx context.Context, projectID uuid.UUID) ([]ProjectMilestone, error)

	CreateUpdatePost(ctx context.Context, post *ProjectUpdate) error
	ListUpdatePosts(ctx context.Context, projectID uuid.UUID, publicOnly bool) ([]ProjectUpdate, error)

	AddImage(ctx context.Context, image *ProjectImage) error
	DeleteImage(ctx context.Context, projectID, imageID uuid.UUID) error
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

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	return r.getProject(ctx, r.db, "id = ?", id.String())
}

func (r *gormRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Project, error) {
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return r.getProject(ctx, locked, "id = ?", id.String())
}

func (r *gormRepository) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	return r.getProject(ctx, r.db, "slug = ?", slug)
}

func (r *gormRepository) getProject(ctx context.Context, db *gorm.DB, query, arg string) (*Project, error) {
	var project Project
	err := db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, target_date")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, created_at")
		}).
		Preload("Manager").
		First(&project, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: arg}
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *gormRepository) Create(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *gormRepository) Update(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Omit("Assets", "Milestones", "Images", "Manager").Save(project).Error
}

func (r *gormRepository) List(ctx context.Context, filter Filter) ([]Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&Project{})

	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.ExcludeStatus != "" {
		q = q.Where("status <> ?", filter.ExcludeStatus)
	}
	if filter.ManagerID != uuid.Nil {
		q = q.Where("manager_id = ?", filter.ManagerID)
	}
	if filter.City != "" {
		q = q.Where("city ILIKE ?", filter.City)
	}
	if filter.Featured != nil {
		q = q.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ? OR developer_name ILIKE ? OR city ILIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch filter.OrderBy {
	case "price":
		order = "price_range_min"
	case "delivery_date":
		order = "delivery_date"
	case "total_units":
		order = "total_units DESC"
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var items []Project
	err := q.Preload("Milestones").
		Order(order).
		Offset((page - 1) * size).Limit(size).
		Find(&items).Error
	return items, total, err
}

func (r *gormRepository) GetAsset(ctx context.Context, id uuid.UUID) (*SellableAsset, error) {
	return r.getAsset(ctx, r.db, id)
}

func (r *gormRepository) GetAssetForUpdate(ctx context.Context, id uuid.UUID) (*SellableAsset, error) {
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return r.getAsset(ctx, locked, id)
}

func (r *gormRepository) getAsset(ctx context.Context, db *gorm.DB, id uuid.UUID) (*SellableAsset, error) {
	var asset SellableAsset
	err := db.WithContext(ctx).First(&asset, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "asset", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *gormRepository) CreateAsset(ctx context.Context, asset *SellableAsset) error {
	err := r.db.WithContext(ctx).Create(asset).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &lifecycle.ConstraintViolationError{Kind: "duplicate asset identifier in project"}
	}
	return err
}

func (r *gormRepository) UpdateAsset(ctx context.Context, asset *SellableAsset) error {
	return r.db.WithContext(ctx).Omit("Project").Save(asset).Error
}

func (r *gormRepository) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&SellableAsset{}, "id = ?", id).Error
}

func (r *gormRepository) ListAssets(ctx context.Context, projectID uuid.UUID, filter AssetFilter) ([]SellableAsset, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AssetType != "" {
		q = q.Where("asset_type = ?", filter.AssetType)
	}
	if filter.MinPrice > 0 {
		q = q.Where("price_usd >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		q = q.Where("price_usd <= ?", filter.MaxPrice)
	}
	if filter.Bedrooms > 0 {
		q = q.Where("bedrooms >= ?", filter.Bedrooms)
	}

	var assets []SellableAsset
	err := q.Order("asset_type, identifier").Find(&assets).Error
	return assets, err
}

func (r *gormRepository) RecountUnits(ctx context.Context, projectID uuid.UUID) error {
	type counts struct {
		Total     int
		Sold      int
		Available int
	}
	var c counts
	err := r.db.WithContext(ctx).Model(&SellableAsset{}).
		Select(
			"COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE status IN ('sold', 'delivered')) AS sold, "+
				"COUNT(*) FILTER (WHERE status = 'available') AS available").
		Where("project_id = ?", projectID).
		Scan(&c).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&Project{}).
		Where("id = ?", projectID).
		Updates(map[string]any{
			"total_units":     c.Total,
			"sold_units":      c.Sold,
			"available_units": c.Available,
		}).Error
}

func (r *gormRepository) CreateMilestone(ctx context.Context, milestone *ProjectMilestone) error {
	return r.db.WithContext(ctx).Create(milestone).Error
}

func (r *gormRepository) UpdateMilestone(ctx context.Context, milestone *ProjectMilestone) error {
	return r.db.WithContext(ctx).Save(milestone).Error
}

func (r *gormRepository) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&ProjectMilestone{}, "id = ?", id).Error
}

func (r *gormRepository) GetMilestone(ctx context.Context, id uuid.UUID) (*ProjectMilestone, error) {
	var milestone ProjectMilestone
	err := r.db.WithContext(ctx).First(&milestone, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "milestone", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (r *gormRepository) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]ProjectMilestone, error) {
	var milestones []ProjectMilestone
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sort_order, target_date").
		Find(&milestones).Error
	return milestones, err
}

func (r *gormRepository) CreateUpdatePost(ctx context.Context, post *ProjectUpdate) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *gormRepository) ListUpdatePosts(ctx context.Context, projectID uuid.UUID, publicOnly bool) ([]ProjectUpdate, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if publicOnly {
		q = q.Where("is_public")
	}
	var posts []ProjectUpdate
	err := q.Preload("Author").
		Order("published_at DESC NULLS LAST, created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *gormRepository) AddImage(ctx context.Context, image *ProjectImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *gormRepository) DeleteImage(ctx context.Context, projectID, imageID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&ProjectImage{}, "id = ? AND project_id = ?", imageID, projectID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &lifecycle.NotFoundError{Entity: "project image", ID: imageID.String()}
	}
	return nil
}
