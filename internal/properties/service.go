package properties

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/internal/cache"
	"github.com/vivenda/marketplace-backend/internal/events"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
	"github.com/vivenda/marketplace-backend/pkg/slug"
)

const featuredCacheTTL = 5 * time.Minute

type CreatePropertyRequest struct {
	Title                   string         `json:"title" binding:"required"`
	Description             string         `json:"description"`
	PropertyType            PropertyType   `json:"property_type"`
	ListingType             ListingType    `json:"listing_type"`
	PriceUSD                float64        `json:"price_usd"`
	PriceNegotiable         bool           `json:"price_negotiable"`
	Bedrooms                int            `json:"bedrooms"`
	Bathrooms               float64        `json:"bathrooms"`
	AreaSqm                 *float64       `json:"area_sqm"`
	LotSizeSqm              *float64       `json:"lot_size_sqm"`
	YearBuilt               *int           `json:"year_built"`
	ParkingSpaces           int            `json:"parking_spaces"`
	Address                 string         `json:"address"`
	City                    string         `json:"city"`
	State                   string         `json:"state"`
	ZipCode                 string         `json:"zip_code"`
	Country                 string         `json:"country"`
	Latitude                *float64       `json:"latitude"`
	Longitude               *float64       `json:"longitude"`
	Features                datatypes.JSON `json:"features"`
	IsNewConstruction       bool           `json:"is_new_construction"`
	IsBeachfront            bool           `json:"is_beachfront"`
	IsInvestmentOpportunity bool           `json:"is_investment_opportunity"`
}

type UpdatePropertyRequest struct {
	Title                   *string         `json:"title"`
	Description             *string         `json:"description"`
	PropertyType            *PropertyType   `json:"property_type"`
	ListingType             *ListingType    `json:"listing_type"`
	PriceUSD                *float64        `json:"price_usd"`
	PriceNegotiable         *bool           `json:"price_negotiable"`
	Bedrooms                *int            `json:"bedrooms"`
	Bathrooms               *float64        `json:"bathrooms"`
	AreaSqm                 *float64        `json:"area_sqm"`
	LotSizeSqm              *float64        `json:"lot_size_sqm"`
	YearBuilt               *int            `json:"year_built"`
	ParkingSpaces           *int            `json:"parking_spaces"`
	Address                 *string         `json:"address"`
	City                    *string         `json:"city"`
	State                   *string         `json:"state"`
	ZipCode                 *string         `json:"zip_code"`
	Country                 *string         `json:"country"`
	Latitude                *float64        `json:"latitude"`
	Longitude               *float64        `json:"longitude"`
	Features                *datatypes.JSON `json:"features"`
	IsNewConstruction       *bool           `json:"is_new_construction"`
	IsBeachfront            *bool           `json:"is_beachfront"`
	IsInvestmentOpportunity *bool           `json:"is_investment_opportunity"`
}

type AddImageRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
	Caption  string `json:"caption"`
	IsMain   bool   `json:"is_main"`
	Order    int    `json:"order"`
}

// Service owns the listing approval lifecycle. Every transition fires and
// persists inside one transaction with the listing row locked.
type Service struct {
	repo   Repository
	bus    *events.Bus
	cache  *cache.Cache
	logger *zap.Logger
}

func NewService(repo Repository, bus *events.Bus, c *cache.Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, bus: bus, cache: c, logger: logger}
}

func (s *Service) Create(ctx context.Context, principal *auth.Principal, req CreatePropertyRequest) (*Property, error) {
	property := &Property{
		Title:                   req.Title,
		Slug:                    slug.Unique(req.Title),
		Description:             req.Description,
		PropertyType:            req.PropertyType,
		ListingType:             req.ListingType,
		Status:                  StatusDraft,
		PriceUSD:                req.PriceUSD,
		PriceNegotiable:         req.PriceNegotiable,
		Bedrooms:                req.Bedrooms,
		Bathrooms:               req.Bathrooms,
		AreaSqm:                 req.AreaSqm,
		LotSizeSqm:              req.LotSizeSqm,
		YearBuilt:               req.YearBuilt,
		ParkingSpaces:           req.ParkingSpaces,
		Address:                 req.Address,
		City:                    req.City,
		State:                   req.State,
		ZipCode:                 req.ZipCode,
		Country:                 req.Country,
		Latitude:                req.Latitude,
		Longitude:               req.Longitude,
		Features:                req.Features,
		IsNewConstruction:       req.IsNewConstruction,
		IsBeachfront:            req.IsBeachfront,
		IsInvestmentOpportunity: req.IsInvestmentOpportunity,
		AgentID:                 principal.UserID,
	}
	if property.PropertyType == "" {
		property.PropertyType = TypeHouse
	}
	if property.ListingType == "" {
		property.ListingType = ListingSale
	}
	if err := s.repo.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return property, nil
}

// GetOwned loads a listing visible to its agent (or staff). Anyone else
// gets a not-found, never a hint the listing exists.
func (s *Service) GetOwned(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.Owns(property.AgentID) {
		return nil, &lifecycle.NotFoundError{Entity: "property", ID: id.String()}
	}
	return property, nil
}

func (s *Service) Update(ctx context.Context, principal *auth.Principal, id uuid.UUID, req UpdatePropertyRequest) (*Property, error) {
	var updated *Property
	err := s.repo.InTx(ctx, func(tx Repository) error {
		property, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !principal.Owns(property.AgentID) {
			return &lifecycle.NotFoundError{Entity: "property", ID: id.String()}
		}
		applyUpdate(property, req)
		if err := tx.Update(ctx, property); err != nil {
			return err
		}
		updated = property
		return nil
	})
	return updated, err
}

// Delete hard-deletes a listing. Only drafts may be physically removed;
// everything past draft is retired through terminal statuses instead.
func (s *Service) Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	return s.repo.InTx(ctx, func(tx Repository) error {
		property, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !principal.Owns(property.AgentID) {
			return &lifecycle.NotFoundError{Entity: "property", ID: id.String()}
		}
		if property.Status != StatusDraft {
			return &lifecycle.InvalidTransitionError{Transition: "delete", Current: string(property.Status)}
		}
		return tx.Delete(ctx, id)
	})
}

// transition runs fire inside a transaction that also persists the listing,
// with the row locked for the duration.
func (s *Service) transition(ctx context.Context, principal *auth.Principal, id uuid.UUID, ownerOnly bool, fire func(*Property) error) (*Property, error) {
	var property *Property
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		property, err = tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ownerOnly && !principal.Owns(property.AgentID) {
			return &lifecycle.NotFoundError{Entity: "property", ID: id.String()}
		}
		if err := fire(property); err != nil {
			return err
		}
		return tx.Update(ctx, property)
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

func (s *Service) SubmitForReview(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error) {
	return s.transition(ctx, principal, id, true, func(p *Property) error {
		return p.SubmitForReview(principal)
	})
}

func (s *Service) Approve(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error) {
	property, err := s.transition(ctx, principal, id, false, func(p *Property) error {
		return p.Approve(principal, principal.UserID)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.PropertyActivated, property.ID)
	return property, nil
}

func (s *Service) Reject(ctx context.Context, principal *auth.Principal, id uuid.UUID, reason string) (*Property, error) {
	return s.transition(ctx, principal, id, false, func(p *Property) error {
		return p.Reject(principal, principal.UserID, reason)
	})
}

func (s *Service) Deactivate(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error) {
	property, err := s.transition(ctx, principal, id, true, func(p *Property) error {
		return p.Deactivate(principal)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.PropertyDeactivated, property.ID)
	return property, nil
}

func (s *Service) Reactivate(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error) {
	return s.transition(ctx, principal, id, true, func(p *Property) error {
		return p.Reactivate(principal)
	})
}

func (s *Service) MarkAsSold(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error) {
	property, err := s.transition(ctx, principal, id, true, func(p *Property) error {
		return p.MarkAsSold(principal)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.PropertyDeactivated, property.ID)
	return property, nil
}

func (s *Service) MarkAsRented(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error) {
	property, err := s.transition(ctx, principal, id, true, func(p *Property) error {
		return p.MarkAsRented(principal)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.PropertyDeactivated, property.ID)
	return property, nil
}

func (s *Service) Relist(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error) {
	property, err := s.transition(ctx, principal, id, false, func(p *Property) error {
		return p.Relist(principal)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.PropertyActivated, property.ID)
	return property, nil
}

// ListPublic returns active listings only, whatever the filter says.
func (s *Service) ListPublic(ctx context.Context, filter Filter) ([]Property, int64, error) {
	filter.Status = StatusActive
	return s.repo.List(ctx, filter)
}

// GetPublicBySlug serves the public detail page and counts the view.
func (s *Service) GetPublicBySlug(ctx context.Context, slugValue string) (*Property, error) {
	property, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	if property.Status != StatusActive {
		return nil, &lifecycle.NotFoundError{Entity: "property", ID: slugValue}
	}
	if err := s.repo.IncrementViewCount(ctx, property.ID); err != nil {
		s.logger.Warn("failed to bump view count", zap.String("property", property.ID.String()), zap.Error(err))
	}
	return property, nil
}

// Featured serves the cached featured strip; the cache is invalidated by
// the visibility-event subscriber wired in main.
func (s *Service) Featured(ctx context.Context) ([]Property, error) {
	var cached []Property
	hit, err := s.cache.GetJSON(ctx, cache.KeyFeaturedProperties, &cached)
	if err != nil {
		s.logger.Warn("featured cache read failed", zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	featured := true
	items, _, err := s.repo.List(ctx, Filter{
		Status:   StatusActive,
		Featured: &featured,
		PageSize: 10,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cache.KeyFeaturedProperties, items, featuredCacheTTL); err != nil {
		s.logger.Warn("featured cache write failed", zap.Error(err))
	}
	return items, nil
}

func (s *Service) Cities(ctx context.Context) ([]CityCount, error) {
	return s.repo.CountCities(ctx)
}

func (s *Service) ListMine(ctx context.Context, principal *auth.Principal, filter Filter) ([]Property, int64, error) {
	filter.AgentID = principal.UserID
	return s.repo.List(ctx, filter)
}

// ReviewQueue lists submissions waiting on staff.
func (s *Service) ReviewQueue(ctx context.Context, filter Filter) ([]Property, int64, error) {
	filter.Status = StatusPendingReview
	return s.repo.List(ctx, filter)
}

func (s *Service) AttachImage(ctx context.Context, principal *auth.Principal, propertyID uuid.UUID, req AddImageRequest) (*PropertyImage, error) {
	property, err := s.repo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !principal.Owns(property.AgentID) {
		return nil, &lifecycle.NotFoundError{Entity: "property", ID: propertyID.String()}
	}
	image := &PropertyImage{
		PropertyID: propertyID,
		ImageURL:   req.ImageURL,
		Caption:    req.Caption,
		IsMain:     req.IsMain,
		Order:      req.Order,
	}
	if err := s.repo.AddImage(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

func (s *Service) RemoveImage(ctx context.Context, principal *auth.Principal, propertyID, imageID uuid.UUID) error {
	property, err := s.repo.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if !principal.Owns(property.AgentID) {
		return &lifecycle.NotFoundError{Entity: "property", ID: propertyID.String()}
	}
	return s.repo.DeleteImage(ctx, propertyID, imageID)
}

// ToggleSave flips the favorite flag and reports the new state.
func (s *Service) ToggleSave(ctx context.Context, principal *auth.Principal, propertyID uuid.UUID) (bool, error) {
	if _, err := s.repo.GetByID(ctx, propertyID); err != nil {
		return false, err
	}
	_, err := s.repo.GetSaved(ctx, principal.UserID, propertyID)
	switch {
	case err == nil:
		return false, s.repo.DeleteSaved(ctx, principal.UserID, propertyID)
	case lifecycle.IsNotFound(err):
		return true, s.repo.CreateSaved(ctx, &SavedProperty{
			UserID:     principal.UserID,
			PropertyID: propertyID,
		})
	default:
		return false, err
	}
}

func (s *Service) ListSaved(ctx context.Context, principal *auth.Principal) ([]SavedProperty, error) {
	return s.repo.ListSaved(ctx, principal.UserID)
}

func (s *Service) publish(name string, id uuid.UUID) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Name: name, EntityID: id})
	}
}

func applyUpdate(p *Property, req UpdatePropertyRequest) {
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.PropertyType != nil {
		p.PropertyType = *req.PropertyType
	}
	if req.ListingType != nil {
		p.ListingType = *req.ListingType
	}
	if req.PriceUSD != nil {
		p.PriceUSD = *req.PriceUSD
	}
	if req.PriceNegotiable != nil {
		p.PriceNegotiable = *req.PriceNegotiable
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.AreaSqm != nil {
		p.AreaSqm = req.AreaSqm
	}
	if req.LotSizeSqm != nil {
		p.LotSizeSqm = req.LotSizeSqm
	}
	if req.YearBuilt != nil {
		p.YearBuilt = req.YearBuilt
	}
	if req.ParkingSpaces != nil {
		p.ParkingSpaces = *req.ParkingSpaces
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.ZipCode != nil {
		p.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	if req.Features != nil {
		p.Features = *req.Features
	}
	if req.IsNewConstruction != nil {
		p.IsNewConstruction = *req.IsNewConstruction
	}
	if req.IsBeachfront != nil {
		p.IsBeachfront = *req.IsBeachfront
	}
	if req.IsInvestmentOpportunity != nil {
		p.IsInvestmentOpportunity = *req.IsInvestmentOpportunity
	}
}
