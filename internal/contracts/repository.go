package contracts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vivenda/marketplace-backend/internal/projects"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// Filter narrows contract queries.
type Filter struct {
	Status   ContractStatus
	BuyerID  uuid.UUID
	Page     int
	PageSize int
}

// Repository persists contracts and their schedules. It also reaches into
// the asset and project tables because reserve-on-create and the
// cancel-then-release coupling must share one transaction with the contract
// write.
type Repository interface {
	InTx(ctx context.Context, fn func(Repository) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*BuyerContract, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*BuyerContract, error)
	// Create inserts a contract in its entry status; a live contract
	// already holding the asset surfaces as ConstraintViolationError.
	Create(ctx context.Context, contract *BuyerContract) error
	Update(ctx context.Context, contract *BuyerContract) error
	ListByProject(ctx context.Context, projectID uuid.UUID, filter Filter) ([]BuyerContract, int64, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter Filter) ([]BuyerContract, int64, error)

	GetAssetForUpdate(ctx context.Context, id uuid.UUID) (*projects.SellableAsset, error)
	UpdateAsset(ctx context.Context, asset *projects.SellableAsset) error
	RecountUnits(ctx context.Context, projectID uuid.UUID) error
	GetProject(ctx context.Context, id uuid.UUID) (*projects.Project, error)

	CreatePayment(ctx context.Context, item *PaymentScheduleItem) error
	UpdatePayment(ctx context.Context, item *PaymentScheduleItem) error
	DeletePayment(ctx context.Context, id uuid.UUID) error
	GetPayment(ctx context.Context, id uuid.UUID) (*PaymentScheduleItem, error)
	ListPayments(ctx context.Context, contractID uuid.UUID) ([]PaymentScheduleItem, error)
	// MarkOverdue flips pending installments whose due date has passed and
	// returns how many rows changed.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type gormRepository struct {
	db       *gorm.DB
	projects projects.Repository
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db, projects: projects.NewRepository(db)}
}

func (r *gormRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx, projects: projects.NewRepository(tx)})
	})
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*BuyerContract, error) {
	return r.getContract(ctx, r.db, id)
}

func (r *gormRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*BuyerContract, error) {
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return r.getContract(ctx, locked, id)
}

func (r *gormRepository) getContract(ctx context.Context, db *gorm.DB, id uuid.UUID) (*BuyerContract, error) {
	var contract BuyerContract
	err := db.WithContext(ctx).
		Preload("Asset").
		Preload("Asset.Project").
		Preload("Buyer").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date")
		}).
		First(&contract, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "contract", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *gormRepository) Create(ctx context.Context, contract *BuyerContract) error {
	err := r.db.WithContext(ctx).Omit("Asset", "Buyer", "Payments").Create(contract).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &lifecycle.ConstraintViolationError{Kind: "asset already has a live contract"}
	}
	return err
}

func (r *gormRepository) Update(ctx context.Context, contract *BuyerContract) error {
	return r.db.WithContext(ctx).Omit("Asset", "Buyer", "Payments").Save(contract).Error
}

func (r *gormRepository) ListByProject(ctx context.Context, projectID uuid.UUID, filter Filter) ([]BuyerContract, int64, error) {
	q := r.db.WithContext(ctx).Model(&BuyerContract{}).
		Joins("JOIN sellable_assets ON sellable_assets.id = buyer_contracts.asset_id").
		Where("sellable_assets.project_id = ?", projectID)
	return r.list(ctx, q, filter)
}

func (r *gormRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter Filter) ([]BuyerContract, int64, error) {
	q := r.db.WithContext(ctx).Model(&BuyerContract{}).Where("buyer_id = ?", buyerID)
	return r.list(ctx, q, filter)
}

func (r *gormRepository) list(ctx context.Context, q *gorm.DB, filter Filter) ([]BuyerContract, int64, error) {
	if filter.Status != "" {
		q = q.Where("buyer_contracts.status = ?", filter.Status)
	}
	if filter.BuyerID != uuid.Nil {
		q = q.Where("buyer_contracts.buyer_id = ?", filter.BuyerID)
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

	var items []BuyerContract
	err := q.Preload("Asset").
		Preload("Asset.Project").
		Preload("Buyer").
		Order("buyer_contracts.created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&items).Error
	return items, total, err
}

func (r *gormRepository) GetAssetForUpdate(ctx context.Context, id uuid.UUID) (*projects.SellableAsset, error) {
	return r.projects.GetAssetForUpdate(ctx, id)
}

func (r *gormRepository) UpdateAsset(ctx context.Context, asset *projects.SellableAsset) error {
	return r.projects.UpdateAsset(ctx, asset)
}

func (r *gormRepository) RecountUnits(ctx context.Context, projectID uuid.UUID) error {
	return r.projects.RecountUnits(ctx, projectID)
}

func (r *gormRepository) GetProject(ctx context.Context, id uuid.UUID) (*projects.Project, error) {
	return r.projects.GetByID(ctx, id)
}

func (r *gormRepository) CreatePayment(ctx context.Context, item *PaymentScheduleItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) UpdatePayment(ctx context.Context, item *PaymentScheduleItem) error {
	return r.db.WithContext(ctx).Omit("Contract").Save(item).Error
}

func (r *gormRepository) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&PaymentScheduleItem{}, "id = ?", id).Error
}

func (r *gormRepository) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentScheduleItem, error) {
	var item PaymentScheduleItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &lifecycle.NotFoundError{Entity: "payment", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository) ListPayments(ctx context.Context, contractID uuid.UUID) ([]PaymentScheduleItem, error) {
	var items []PaymentScheduleItem
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("due_date").
		Find(&items).Error
	return items, err
}

func (r *gormRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&PaymentScheduleItem{}).
		Where("status = ? AND due_date < ?", PaymentPending, asOf).
		Update("status", PaymentOverdue)
	return res.RowsAffected, res.Error
}
