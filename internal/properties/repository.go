package properties

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// Filter narrows listing queries. Zero values mean "any".
type Filter struct {
	Status       PropertyStatus
	AgentID      uuid.UUID
	City         string
	State        string
	PropertyType PropertyType
	ListingType  ListingType
	MinPrice     float64
	MaxPrice     float64
	MinBedrooms  int
	Featured     *bool
	Search       string
	OrderBy      string
	Page         int
	PageSize     int
}

// CityCount backs the public cities facet.
type CityCount struct {
	City  string `json:"city"`
	State string `json:"state"`
	Count int64  `json:"count"`
}

type Repository interface {
	// InTx runs fn against a transactional repository. Lifecycle fires and
	// their persistence must share one transaction.
	InTx(ctx context.Context, fn func(Repository) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	// GetByIDForUpdate locks the listing row for the transaction so
	// concurrent conflicting transitions serialize.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Property, error)
	GetBySlug(ctx context.Context, slug string) (*Property, error)
	Create(ctx context.Context, property *Property) error
	Update(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter) ([]Property, int64, error)
	CountCities(ctx context.Context) ([]CityCount, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error

	AddImage(ctx context.Context, image *PropertyImage) error
	DeleteImage(ctx context.Context, propertyID, imageID uuid.UUID) error

	GetSaved(ctx context.Context, userID, propertyID uuid.UUID) (*SavedProperty, error)
	CreateSaved(ctx context.Context, saved *SavedProperty) error
	DeleteSaved(ctx context.Context, userID, propertyID uuid.UUID) error
	ListSaved(ctx context.Context, userID uuid.UUID) ([]SavedProperty, error)
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

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	return r.getOne(ctx, r.db, "id = ?", id.String())
}

func (r *gormRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Property, error) {
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return r.getOne(ctx, locked, "id = ?", id.String())
}

func (r *gormRepository) GetBySlug(ctx context.Context, slug string) (*Property, error) {
	return r.getOne(ctx, r.db, "slug = ?", slug)
}

func (r *gormRepository) getOne(ctx context.Context, db *gorm.DB, query string, arg string) (*Property, error) {
	var property Property
	err := db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, is_main DESC, created_at")
		}).
		Preload("Agent").
		First(&property, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "property", ID: arg}
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *gormRepository) Create(ctx context.Context, property *Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

func (r *gormRepository) Update(ctx context.Context, property *Property) error {
	return r.db.WithContext(ctx).Omit("Images", "Agent", "ReviewedBy").Save(property).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Property{}, "id = ?", id).Error
}

func (r *gormRepository) List(ctx context.Context, filter Filter) ([]Property, int64, error) {
	q := r.db.WithContext(ctx).Model(&Property{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AgentID != uuid.Nil {
		q = q.Where("agent_id = ?", filter.AgentID)
	}
	if filter.City != "" {
		q = q.Where("city ILIKE ?", filter.City)
	}
	if filter.State != "" {
		q = q.Where("state ILIKE ?", filter.State)
	}
	if filter.PropertyType != "" {
		q = q.Where("property_type = ?", filter.PropertyType)
	}
	if filter.ListingType != "" {
		q = q.Where("listing_type = ?", filter.ListingType)
	}
	if filter.MinPrice > 0 {
		q = q.Where("price_usd >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		q = q.Where("price_usd <= ?", filter.MaxPrice)
	}
	if filter.MinBedrooms > 0 {
		q = q.Where("bedrooms >= ?", filter.MinBedrooms)
	}
	if filter.Featured != nil {
		q = q.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ? OR address ILIKE ? OR city ILIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch filter.OrderBy {
	case "price":
		order = "price_usd"
	case "-price":
		order = "price_usd DESC"
	case "bedrooms":
		order = "bedrooms DESC"
	case "area":
		order = "area_sqm DESC"
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var items []Property
	err := q.Preload("Images").Preload("Agent").
		Order(order).
		Offset((page - 1) * size).Limit(size).
		Find(&items).Error
	return items, total, err
}

func (r *gormRepository) CountCities(ctx context.Context) ([]CityCount, error) {
	var counts []CityCount
	err := r.db.WithContext(ctx).Model(&Property{}).
		Select("city, state, COUNT(*) AS count").
		Where("status = ?", StatusActive).
		Group("city, state").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

func (r *gormRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Property{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *gormRepository) AddImage(ctx context.Context, image *PropertyImage) error {
	// Only one main image per property.
	if image.IsMain {
		err := r.db.WithContext(ctx).Model(&PropertyImage{}).
			Where("property_id = ? AND is_main", image.PropertyID).
			UpdateColumn("is_main", false).Error
		if err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *gormRepository) DeleteImage(ctx context.Context, propertyID, imageID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&PropertyImage{}, "id = ? AND property_id = ?", imageID, propertyID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &lifecycle.NotFoundError{Entity: "property image", ID: imageID.String()}
	}
	return nil
}

func (r *gormRepository) GetSaved(ctx context.Context, userID, propertyID uuid.UUID) (*SavedProperty, error) {
	var saved SavedProperty
	err := r.db.WithContext(ctx).
		First(&saved, "user_id = ? AND property_id = ?", userID, propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "saved property", ID: propertyID.String()}
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *gormRepository) CreateSaved(ctx context.Context, saved *SavedProperty) error {
	return r.db.WithContext(ctx).Create(saved).Error
}

func (r *gormRepository) DeleteSaved(ctx context.Context, userID, propertyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&SavedProperty{}, "user_id = ? AND property_id = ?", userID, propertyID).Error
}

func (r *gormRepository) ListSaved(ctx context.Context, userID uuid.UUID) ([]SavedProperty, error) {
	var saved []SavedProperty
	err := r.db.WithContext(ctx).
		Preload("Property").Preload("Property.Images").Preload("Property.Agent").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	return saved, err
}
