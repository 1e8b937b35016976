package accounts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
	"github.com/vivenda/marketplace-backend/pkg/slug"
)

// Claims are the identity attributes the token verifier hands us. Everything
// beyond the email is optional and only used when provisioning a new record.
type Claims struct {
	Email     string
	FirstName string
	LastName  string
}

type UpdateProfileRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Phone         *string `json:"phone"`
	AvatarURL     *string `json:"avatar_url"`
	Bio           *string `json:"bio"`
	Website       *string `json:"website"`
	CompanyName   *string `json:"company_name"`
	LicenseNumber *string `json:"license_number"`
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Provision returns the user for the authenticated identity, creating a
// buyer record on first sight.
func (s *Service) Provision(ctx context.Context, claims Claims) (*User, error) {
	if claims.Email == "" {
		return nil, fmt.Errorf("provision: empty email claim")
	}

	user, err := s.repo.GetByEmail(ctx, claims.Email)
	if err == nil {
		return user, nil
	}
	if !lifecycle.IsNotFound(err) {
		return nil, err
	}

	user = &User{
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Role:      RoleBuyer,
		Slug:      slug.Unique(claims.Email),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	s.logger.Info("provisioned user", zap.String("email", user.Email), zap.String("id", user.ID.String()))
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetAgentBySlug(ctx context.Context, agentSlug string) (*User, error) {
	user, err := s.repo.GetBySlug(ctx, agentSlug)
	if err != nil {
		return nil, err
	}
	if !user.IsPublishingAgent() {
		return nil, &lifecycle.NotFoundError{Entity: "agent", ID: agentSlug}
	}
	return user, nil
}

func (s *Service) ListAgents(ctx context.Context, filter AgentFilter) ([]User, int64, error) {
	return s.repo.ListAgents(ctx, filter)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&user.FirstName, req.FirstName)
	apply(&user.LastName, req.LastName)
	apply(&user.Phone, req.Phone)
	apply(&user.AvatarURL, req.AvatarURL)
	apply(&user.Bio, req.Bio)
	apply(&user.Website, req.Website)
	apply(&user.CompanyName, req.CompanyName)
	apply(&user.LicenseNumber, req.LicenseNumber)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
