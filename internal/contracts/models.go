package contracts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivenda/marketplace-backend/internal/accounts"
	"github.com/vivenda/marketplace-backend/internal/projects"
)

// ContractStatus is assigned at creation (reserved) and afterwards only by
// the contract machine.
type ContractStatus string

const (
	ContractReserved  ContractStatus = "reserved"
	ContractSigned    ContractStatus = "signed"
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
)

type PaymentConcept string

const (
	ConceptInitial   PaymentConcept = "initial"
	ConceptMonthly   PaymentConcept = "monthly"
	ConceptMilestone PaymentConcept = "milestone"
	ConceptFinal     PaymentConcept = "final"
	ConceptOther     PaymentConcept = "other"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentWaived  PaymentStatus = "waived"
)

// BuyerContract links a buyer to a sellable asset with payment terms. The
// partial unique index keeps at most one contract in a live status
// (reserved, signed, active) per asset; a second insert fails at the
// storage layer no matter how the race interleaves.
type BuyerContract struct {
	ID      uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssetID uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:uniq_active_contract_per_asset,where:status IN ('reserved','signed','active')" json:"asset_id"`
	Asset   *projects.SellableAsset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`

	BuyerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"buyer_id"`
	Buyer   *accounts.User `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`

	ContractDate      *time.Time `json:"contract_date,omitempty"`
	TotalPrice        float64    `gorm:"not null" json:"total_price"`
	InitialPayment    float64    `json:"initial_payment"`
	PaymentPlanMonths int        `json:"payment_plan_months"`

	Status ContractStatus `gorm:"type:varchar(20);not null;default:'reserved';index" json:"status"`
	Notes  string         `json:"notes"`

	Payments []PaymentScheduleItem `gorm:"foreignKey:ContractID" json:"payments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PaymentScheduleItem is one installment within a buyer contract.
type PaymentScheduleItem struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContractID uuid.UUID      `gorm:"type:uuid;not null;index" json:"contract_id"`
	Contract   *BuyerContract `gorm:"foreignKey:ContractID" json:"-"`

	DueDate   time.Time      `gorm:"not null;index" json:"due_date"`
	AmountUSD float64        `gorm:"not null" json:"amount_usd"`
	Concept   PaymentConcept `gorm:"type:varchar(20);not null;default:'monthly'" json:"concept"`

	Status           PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaidDate         *time.Time    `json:"paid_date,omitempty"`
	PaymentReference string        `json:"payment_reference"`
	Notes            string        `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLive reports whether the contract still contends for exclusive claim on
// its asset.
func (c *BuyerContract) IsLive() bool {
	switch c.Status {
	case ContractReserved, ContractSigned, ContractActive:
		return true
	}
	return false
}

// OutstandingBalance sums installments not yet paid or waived.
func (c *BuyerContract) OutstandingBalance() float64 {
	var due float64
	for _, p := range c.Payments {
		if p.Status == PaymentPending || p.Status == PaymentOverdue {
			due += p.AmountUSD
		}
	}
	return due
}
