package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/internal/events"
	"github.com/vivenda/marketplace-backend/internal/projects"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

type CreateContractRequest struct {
	AssetID           uuid.UUID  `json:"asset_id" binding:"required"`
	BuyerID           uuid.UUID  `json:"buyer_id" binding:"required"`
	ContractDate      *time.Time `json:"contract_date"`
	TotalPrice        float64    `json:"total_price" binding:"required"`
	InitialPayment    float64    `json:"initial_payment"`
	PaymentPlanMonths int        `json:"payment_plan_months"`
	Notes             string     `json:"notes"`
}

type UpdateContractRequest struct {
	ContractDate      *time.Time `json:"contract_date"`
	TotalPrice        *float64   `json:"total_price"`
	InitialPayment    *float64   `json:"initial_payment"`
	PaymentPlanMonths *int       `json:"payment_plan_months"`
	Notes             *string    `json:"notes"`
}

type PaymentRequest struct {
	DueDate          time.Time      `json:"due_date" binding:"required"`
	AmountUSD        float64        `json:"amount_usd" binding:"required"`
	Concept          PaymentConcept `json:"concept"`
	PaymentReference string         `json:"payment_reference"`
	Notes            string         `json:"notes"`
}

// Service coordinates the contract lifecycle with its linked asset. Creating
// a contract reserves the asset; cancelling one releases it when the asset
// machine still allows that. Both couplings run inside one transaction with
// the rows locked.
type Service struct {
	repo   Repository
	bus    *events.Bus
	logger *zap.Logger
}

func NewService(repo Repository, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

// Create opens a contract in reserved status and reserves the asset in the
// same transaction. The partial unique index on live contracts is the real
// arbiter when two buyers race for the same unit: exactly one insert wins,
// the loser gets a ConstraintViolationError.
func (s *Service) Create(ctx context.Context, principal *auth.Principal, projectID uuid.UUID, req CreateContractRequest) (*BuyerContract, error) {
	var contract *BuyerContract
	err := s.repo.InTx(ctx, func(tx Repository) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if !principal.Manages(project.ManagerID) {
			return &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
		}
		asset, err := tx.GetAssetForUpdate(ctx, req.AssetID)
		if err != nil {
			return err
		}
		if asset.ProjectID != projectID {
			return &lifecycle.NotFoundError{Entity: "asset", ID: req.AssetID.String()}
		}
		// A refused reserve and a duplicate insert are the same business
		// fact: the unit is already taken. Both surface as a conflict.
		if err := asset.Reserve(principal); err != nil {
			if lifecycle.IsInvalidTransition(err) {
				return &lifecycle.ConstraintViolationError{Kind: "asset not available"}
			}
			return err
		}
		contract = &BuyerContract{
			AssetID:           req.AssetID,
			BuyerID:           req.BuyerID,
			ContractDate:      req.ContractDate,
			TotalPrice:        req.TotalPrice,
			InitialPayment:    req.InitialPayment,
			PaymentPlanMonths: req.PaymentPlanMonths,
			Status:            ContractReserved,
			Notes:             req.Notes,
		}
		if err := tx.Create(ctx, contract); err != nil {
			return err
		}
		if err := tx.UpdateAsset(ctx, asset); err != nil {
			return err
		}
		return tx.RecountUnits(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// Get loads one contract for a manager of its project.
func (s *Service) Get(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID) (*BuyerContract, error) {
	contract, err := s.repo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, s.repo, principal, projectID, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *Service) Update(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID, req UpdateContractRequest) (*BuyerContract, error) {
	var updated *BuyerContract
	err := s.repo.InTx(ctx, func(tx Repository) error {
		contract, err := tx.GetByIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, tx, principal, projectID, contract); err != nil {
			return err
		}
		if req.ContractDate != nil {
			contract.ContractDate = req.ContractDate
		}
		if req.TotalPrice != nil {
			contract.TotalPrice = *req.TotalPrice
		}
		if req.InitialPayment != nil {
			contract.InitialPayment = *req.InitialPayment
		}
		if req.PaymentPlanMonths != nil {
			contract.PaymentPlanMonths = *req.PaymentPlanMonths
		}
		if req.Notes != nil {
			contract.Notes = *req.Notes
		}
		if err := tx.Update(ctx, contract); err != nil {
			return err
		}
		updated = contract
		return nil
	})
	return updated, err
}

func (s *Service) ListByProject(ctx context.Context, principal *auth.Principal, projectID uuid.UUID, filter Filter) ([]BuyerContract, int64, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, 0, &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	return s.repo.ListByProject(ctx, projectID, filter)
}

// transition fires one contract transition inside a locked transaction.
func (s *Service) transition(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID, fire func(Repository, *BuyerContract) error) (*BuyerContract, error) {
	var contract *BuyerContract
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		contract, err = tx.GetByIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, tx, principal, projectID, contract); err != nil {
			return err
		}
		if err := fire(tx, contract); err != nil {
			return err
		}
		return tx.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *Service) Sign(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID) (*BuyerContract, error) {
	return s.transition(ctx, principal, projectID, contractID, func(_ Repository, c *BuyerContract) error {
		if c.ContractDate == nil {
			now := time.Now().UTC()
			c.ContractDate = &now
		}
		return c.Sign(principal)
	})
}

func (s *Service) Activate(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID) (*BuyerContract, error) {
	return s.transition(ctx, principal, projectID, contractID, func(_ Repository, c *BuyerContract) error {
		return c.Activate(principal)
	})
}

func (s *Service) Complete(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID) (*BuyerContract, error) {
	return s.transition(ctx, principal, projectID, contractID, func(_ Repository, c *BuyerContract) error {
		return c.Complete(principal)
	})
}

// Cancel voids the contract, then tries to hand the asset back to the
// market. The order is deliberate: if the cancel itself fails nothing else
// runs, while a release the asset machine refuses (the unit was sold or
// delivered through another path) is logged and the cancellation still
// commits. Infrastructure errors abort the whole transaction.
func (s *Service) Cancel(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID) (*BuyerContract, error) {
	contract, err := s.transition(ctx, principal, projectID, contractID, func(tx Repository, c *BuyerContract) error {
		if err := c.Cancel(principal); err != nil {
			return err
		}
		asset, err := tx.GetAssetForUpdate(ctx, c.AssetID)
		if err != nil {
			return err
		}
		if !asset.CanProceed(projects.TransitionRelease, principal) {
			s.logger.Info("asset not releasable after contract cancel",
				zap.String("contract", c.ID.String()),
				zap.String("asset", asset.ID.String()),
				zap.String("asset_status", string(asset.Status)))
			return nil
		}
		if err := asset.Release(principal); err != nil {
			return err
		}
		if err := tx.UpdateAsset(ctx, asset); err != nil {
			return err
		}
		return tx.RecountUnits(ctx, asset.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Name: events.ContractCancelled, EntityID: contract.ID})
	return contract, nil
}

// ListMine returns the requesting buyer's own contracts.
func (s *Service) ListMine(ctx context.Context, principal *auth.Principal, filter Filter) ([]BuyerContract, int64, error) {
	return s.repo.ListByBuyer(ctx, principal.UserID, filter)
}

// GetMine loads one contract the requesting buyer owns.
func (s *Service) GetMine(ctx context.Context, principal *auth.Principal, contractID uuid.UUID) (*BuyerContract, error) {
	contract, err := s.repo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.BuyerID != principal.UserID && !principal.IsStaff {
		return nil, &lifecycle.NotFoundError{Entity: "contract", ID: contractID.String()}
	}
	return contract, nil
}

func (s *Service) AddPayment(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID, req PaymentRequest) (*PaymentScheduleItem, error) {
	contract, err := s.Get(ctx, principal, projectID, contractID)
	if err != nil {
		return nil, err
	}
	item := &PaymentScheduleItem{
		ContractID:       contract.ID,
		DueDate:          req.DueDate,
		AmountUSD:        req.AmountUSD,
		Concept:          req.Concept,
		Status:           PaymentPending,
		PaymentReference: req.PaymentReference,
		Notes:            req.Notes,
	}
	if item.Concept == "" {
		item.Concept = ConceptMonthly
	}
	if err := s.repo.CreatePayment(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GenerateSchedule builds a standard plan: the initial payment due today and
// the remainder split into equal monthly installments. Existing items are
// left alone; the operation refuses to run twice.
func (s *Service) GenerateSchedule(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID) ([]PaymentScheduleItem, error) {
	contract, err := s.Get(ctx, principal, projectID, contractID)
	if err != nil {
		return nil, err
	}
	if len(contract.Payments) > 0 {
		return nil, &lifecycle.ConstraintViolationError{Kind: "contract already has a payment schedule"}
	}
	if contract.PaymentPlanMonths <= 0 {
		return nil, &lifecycle.ConstraintViolationError{Kind: "contract has no payment plan"}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var items []PaymentScheduleItem
	if contract.InitialPayment > 0 {
		items = append(items, PaymentScheduleItem{
			ContractID: contract.ID,
			DueDate:    today,
			AmountUSD:  contract.InitialPayment,
			Concept:    ConceptInitial,
			Status:     PaymentPending,
		})
	}
	monthly := (contract.TotalPrice - contract.InitialPayment) / float64(contract.PaymentPlanMonths)
	for i := 1; i <= contract.PaymentPlanMonths; i++ {
		items = append(items, PaymentScheduleItem{
			ContractID: contract.ID,
			DueDate:    today.AddDate(0, i, 0),
			AmountUSD:  monthly,
			Concept:    ConceptMonthly,
			Status:     PaymentPending,
		})
	}
	for i := range items {
		if err := s.repo.CreatePayment(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// MarkPaymentPaid settles one installment.
func (s *Service) MarkPaymentPaid(ctx context.Context, principal *auth.Principal, projectID, contractID, paymentID uuid.UUID, reference string) (*PaymentScheduleItem, error) {
	return s.updatePaymentStatus(ctx, principal, projectID, contractID, paymentID, func(item *PaymentScheduleItem) {
		now := time.Now().UTC()
		item.Status = PaymentPaid
		item.PaidDate = &now
		if reference != "" {
			item.PaymentReference = reference
		}
	})
}

// WaivePayment forgives one installment.
func (s *Service) WaivePayment(ctx context.Context, principal *auth.Principal, projectID, contractID, paymentID uuid.UUID) (*PaymentScheduleItem, error) {
	return s.updatePaymentStatus(ctx, principal, projectID, contractID, paymentID, func(item *PaymentScheduleItem) {
		item.Status = PaymentWaived
	})
}

func (s *Service) updatePaymentStatus(ctx context.Context, principal *auth.Principal, projectID, contractID, paymentID uuid.UUID, apply func(*PaymentScheduleItem)) (*PaymentScheduleItem, error) {
	if _, err := s.Get(ctx, principal, projectID, contractID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if item.ContractID != contractID {
		return nil, &lifecycle.NotFoundError{Entity: "payment", ID: paymentID.String()}
	}
	apply(item)
	if err := s.repo.UpdatePayment(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) RemovePayment(ctx context.Context, principal *auth.Principal, projectID, contractID, paymentID uuid.UUID) error {
	if _, err := s.Get(ctx, principal, projectID, contractID); err != nil {
		return err
	}
	item, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if item.ContractID != contractID {
		return &lifecycle.NotFoundError{Entity: "payment", ID: paymentID.String()}
	}
	return s.repo.DeletePayment(ctx, paymentID)
}

// SweepOverdue is the cron entry point: flip pending installments past
// their due date to overdue.
func (s *Service) SweepOverdue(ctx context.Context) {
	n, err := s.repo.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("overdue payment sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("marked overdue payments", zap.Int64("count", n))
	}
}

// authorize scopes a contract to managers of its project (staff see all).
// The project route parameter must match the asset's real project.
func (s *Service) authorize(ctx context.Context, tx Repository, principal *auth.Principal, projectID uuid.UUID, contract *BuyerContract) error {
	var assetProjectID uuid.UUID
	if contract.Asset != nil {
		assetProjectID = contract.Asset.ProjectID
	} else {
		asset, err := tx.GetAssetForUpdate(ctx, contract.AssetID)
		if err != nil {
			return err
		}
		assetProjectID = asset.ProjectID
	}
	if assetProjectID != projectID {
		return &lifecycle.NotFoundError{Entity: "contract", ID: contract.ID.String()}
	}
	project, err := tx.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !principal.Manages(project.ManagerID) {
		return &lifecycle.NotFoundError{Entity: "contract", ID: contract.ID.String()}
	}
	return nil
}
