package inquiries

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/internal/properties"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

type CreateInquiryRequest struct {
	PropertyID             uuid.UUID     `json:"property_id" binding:"required"`
	FullName               string        `json:"full_name" binding:"required"`
	Email                  string        `json:"email" binding:"required,email"`
	Phone                  string        `json:"phone"`
	Country                string        `json:"country"`
	Message                string        `json:"message" binding:"required"`
	PreferredContactMethod ContactMethod `json:"preferred_contact_method"`
	BudgetMin              *float64      `json:"budget_min"`
	BudgetMax              *float64      `json:"budget_max"`
}

// Service routes buyer leads to the agents owning the listings they ask
// about.
type Service struct {
	repo       Repository
	properties properties.Repository
	logger     *zap.Logger
}

func NewService(repo Repository, props properties.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, properties: props, logger: logger}
}

// Submit records a lead from the public listing page. Only active listings
// take inquiries; the sender may be anonymous.
func (s *Service) Submit(ctx context.Context, principal *auth.Principal, req CreateInquiryRequest, clientIP, userAgent, referrer string) (*Inquiry, error) {
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != properties.StatusActive {
		return nil, &lifecycle.NotFoundError{Entity: "property", ID: req.PropertyID.String()}
	}

	inquiry := &Inquiry{
		PropertyID:             req.PropertyID,
		FullName:               req.FullName,
		Email:                  req.Email,
		Phone:                  req.Phone,
		Country:                req.Country,
		Message:                req.Message,
		PreferredContactMethod: req.PreferredContactMethod,
		BudgetMin:              req.BudgetMin,
		BudgetMax:              req.BudgetMax,
		Status:                 InquiryNew,
		IPAddress:              clientIP,
		UserAgent:              userAgent,
		Referrer:               referrer,
	}
	if inquiry.PreferredContactMethod == "" {
		inquiry.PreferredContactMethod = ContactEmail
	}
	if principal != nil {
		inquiry.UserID = &principal.UserID
	}
	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}
	s.logger.Info("inquiry received",
		zap.String("property", property.Slug),
		zap.String("inquiry", inquiry.ID.String()))
	return inquiry, nil
}

// Inbox lists inquiries about the agent's own listings; staff see all.
func (s *Service) Inbox(ctx context.Context, principal *auth.Principal, filter Filter) ([]Inquiry, int64, error) {
	return s.repo.ListForAgent(ctx, s.scope(principal), filter)
}

func (s *Service) InboxStats(ctx context.Context, principal *auth.Principal) (*Stats, error) {
	return s.repo.StatsForAgent(ctx, s.scope(principal))
}

func (s *Service) Get(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Inquiry, error) {
	inquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(principal, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// Advance fires one inquiry transition inside a locked transaction.
func (s *Service) Advance(ctx context.Context, principal *auth.Principal, id uuid.UUID, transition string) (*Inquiry, error) {
	var inquiry *Inquiry
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		inquiry, err = tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(principal, inquiry); err != nil {
			return err
		}
		if err := inquiry.Advance(transition, principal); err != nil {
			return err
		}
		return tx.Update(ctx, inquiry)
	})
	if err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (s *Service) AddNote(ctx context.Context, principal *auth.Principal, id uuid.UUID, content string) (*InquiryNote, error) {
	inquiry, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	note := &InquiryNote{
		InquiryID: inquiry.ID,
		AuthorID:  principal.UserID,
		Content:   content,
	}
	if err := s.repo.AddNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) scope(principal *auth.Principal) uuid.UUID {
	if principal.IsStaff {
		return uuid.Nil
	}
	return principal.UserID
}

func (s *Service) authorize(principal *auth.Principal, inquiry *Inquiry) error {
	if principal.IsStaff {
		return nil
	}
	if inquiry.Property != nil && principal.Owns(inquiry.Property.AgentID) {
		return nil
	}
	return &lifecycle.NotFoundError{Entity: "inquiry", ID: inquiry.ID.String()}
}
