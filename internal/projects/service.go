package projects

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/internal/cache"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
	"github.com/vivenda/marketplace-backend/pkg/slug"
)

const featuredProjectsTTL = 5 * time.Minute

type CreateProjectRequest struct {
	Title                 string         `json:"title" binding:"required"`
	Description           string         `json:"description"`
	DeveloperName         string         `json:"developer_name"`
	DeveloperLogoURL      string         `json:"developer_logo_url"`
	City                  string         `json:"city"`
	State                 string         `json:"state"`
	Address               string         `json:"address"`
	Latitude              *float64       `json:"latitude"`
	Longitude             *float64       `json:"longitude"`
	PriceRangeMin         *float64       `json:"price_range_min"`
	PriceRangeMax         *float64       `json:"price_range_max"`
	DeliveryDate          *time.Time     `json:"delivery_date"`
	ConstructionStartDate *time.Time     `json:"construction_start_date"`
	Amenities             datatypes.JSON `json:"amenities"`
	MasterPlanURL         string         `json:"master_plan_url"`
	BrochureURL           string         `json:"brochure_url"`
	VideoURL              string         `json:"video_url"`
	CoverImageURL         string         `json:"cover_image_url"`
	ManagerID             *uuid.UUID     `json:"manager_id"`
}

type UpdateProjectRequest struct {
	Title                 *string         `json:"title"`
	Description           *string         `json:"description"`
	DeveloperName         *string         `json:"developer_name"`
	DeveloperLogoURL      *string         `json:"developer_logo_url"`
	City                  *string         `json:"city"`
	State                 *string         `json:"state"`
	Address               *string         `json:"address"`
	Latitude              *float64        `json:"latitude"`
	Longitude             *float64        `json:"longitude"`
	PriceRangeMin         *float64        `json:"price_range_min"`
	PriceRangeMax         *float64        `json:"price_range_max"`
	DeliveryDate          *time.Time      `json:"delivery_date"`
	ConstructionStartDate *time.Time      `json:"construction_start_date"`
	Amenities             *datatypes.JSON `json:"amenities"`
	MasterPlanURL         *string         `json:"master_plan_url"`
	BrochureURL           *string         `json:"brochure_url"`
	VideoURL              *string         `json:"video_url"`
	CoverImageURL         *string         `json:"cover_image_url"`
	ManagerID             *uuid.UUID      `json:"manager_id"`
	IsFeatured            *bool           `json:"is_featured"`
}

type CreateAssetRequest struct {
	Identifier   string         `json:"identifier" binding:"required"`
	AssetType    AssetType      `json:"asset_type"`
	Floor        *int           `json:"floor"`
	AreaSqm      *float64       `json:"area_sqm"`
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    float64        `json:"bathrooms"`
	PriceUSD     float64        `json:"price_usd" binding:"required"`
	FloorPlanURL string         `json:"floor_plan_url"`
	Features     datatypes.JSON `json:"features"`
}

type UpdateAssetRequest struct {
	Identifier   *string         `json:"identifier"`
	AssetType    *AssetType      `json:"asset_type"`
	Floor        *int            `json:"floor"`
	AreaSqm      *float64        `json:"area_sqm"`
	Bedrooms     *int            `json:"bedrooms"`
	Bathrooms    *float64        `json:"bathrooms"`
	PriceUSD     *float64        `json:"price_usd"`
	FloorPlanURL *string         `json:"floor_plan_url"`
	Features     *datatypes.JSON `json:"features"`
}

type MilestoneRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	TargetDate    *time.Time      `json:"target_date"`
	CompletedDate *time.Time      `json:"completed_date"`
	Percentage    int             `json:"percentage"`
	Status        MilestoneStatus `json:"status"`
	Order         int             `json:"order"`
}

type UpdatePostRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	IsPublic *bool  `json:"is_public"`
}

type GalleryImageRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
	Caption  string `json:"caption"`
	Order    int    `json:"order"`
}

// Service owns the development lifecycle and its per-unit inventory. Asset
// transitions and the unit recount they trigger run in one transaction with
// the asset row locked.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *zap.Logger
}

func NewService(repo Repository, c *cache.Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

func (s *Service) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	project := &Project{
		Title:                 req.Title,
		Slug:                  slug.Unique(req.Title),
		Description:           req.Description,
		DeveloperName:         req.DeveloperName,
		DeveloperLogoURL:      req.DeveloperLogoURL,
		City:                  req.City,
		State:                 req.State,
		Address:               req.Address,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		PriceRangeMin:         req.PriceRangeMin,
		PriceRangeMax:         req.PriceRangeMax,
		DeliveryDate:          req.DeliveryDate,
		ConstructionStartDate: req.ConstructionStartDate,
		Amenities:             req.Amenities,
		MasterPlanURL:         req.MasterPlanURL,
		BrochureURL:           req.BrochureURL,
		VideoURL:              req.VideoURL,
		CoverImageURL:         req.CoverImageURL,
		Status:                ProjectDraft,
		ManagerID:             req.ManagerID,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// GetManaged loads a project visible to its manager or staff. Anyone else
// gets a not-found.
func (s *Service) GetManaged(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: id.String()}
	}
	return project, nil
}

func (s *Service) Update(ctx context.Context, principal *auth.Principal, id uuid.UUID, req UpdateProjectRequest) (*Project, error) {
	var updated *Project
	err := s.repo.InTx(ctx, func(tx Repository) error {
		project, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !principal.Manages(project.ManagerID) {
			return &lifecycle.NotFoundError{Entity: "project", ID: id.String()}
		}
		applyProjectUpdate(project, req, principal)
		if err := tx.Update(ctx, project); err != nil {
			return err
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateFeatured(ctx)
	return updated, nil
}

// transition runs fire inside a transaction that also persists the project,
// with the row locked for the duration.
func (s *Service) transition(ctx context.Context, principal *auth.Principal, id uuid.UUID, fire func(*Project) error) (*Project, error) {
	var project *Project
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		project, err = tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !principal.Manages(project.ManagerID) {
			return &lifecycle.NotFoundError{Entity: "project", ID: id.String()}
		}
		if err := fire(project); err != nil {
			return err
		}
		return tx.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) StartPresale(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Project, error) {
	return s.transition(ctx, principal, id, func(p *Project) error {
		return p.StartPresale(principal)
	})
}

func (s *Service) StartConstruction(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Project, error) {
	return s.transition(ctx, principal, id, func(p *Project) error {
		if err := p.StartConstruction(principal); err != nil {
			return err
		}
		if p.ConstructionStartDate == nil {
			now := time.Now().UTC()
			p.ConstructionStartDate = &now
		}
		return nil
	})
}

func (s *Service) MarkDelivered(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Project, error) {
	return s.transition(ctx, principal, id, func(p *Project) error {
		return p.MarkDelivered(principal)
	})
}

func (s *Service) Cancel(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Project, error) {
	project, err := s.transition(ctx, principal, id, func(p *Project) error {
		return p.Cancel(principal)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateFeatured(ctx)
	return project, nil
}

// ListPublic hides drafts and cancelled projects, whatever the filter says.
func (s *Service) ListPublic(ctx context.Context, filter Filter) ([]Project, int64, error) {
	filter.Statuses = []ProjectStatus{ProjectPresale, ProjectUnderConstruction, ProjectDelivered}
	filter.ManagerID = uuid.Nil
	return s.repo.List(ctx, filter)
}

// GetPublicBySlug serves the public project page with its available units.
func (s *Service) GetPublicBySlug(ctx context.Context, slugValue string) (*Project, []SellableAsset, error) {
	project, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, nil, err
	}
	if project.Status == ProjectDraft || project.Status == ProjectCancelled {
		return nil, nil, &lifecycle.NotFoundError{Entity: "project", ID: slugValue}
	}
	assets, err := s.repo.ListAssets(ctx, project.ID, AssetFilter{Status: AssetAvailable})
	if err != nil {
		return nil, nil, err
	}
	return project, assets, nil
}

// Featured serves the cached featured developments strip.
func (s *Service) Featured(ctx context.Context) ([]Project, error) {
	var cached []Project
	hit, err := s.cache.GetJSON(ctx, cache.KeyFeaturedProjects, &cached)
	if err != nil {
		s.logger.Warn("featured projects cache read failed", zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	featured := true
	items, _, err := s.repo.List(ctx, Filter{
		Statuses: []ProjectStatus{ProjectPresale, ProjectUnderConstruction},
		Featured: &featured,
		PageSize: 6,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cache.KeyFeaturedProjects, items, featuredProjectsTTL); err != nil {
		s.logger.Warn("featured projects cache write failed", zap.Error(err))
	}
	return items, nil
}

// ListManaged returns the projects a manager administers; staff see all.
func (s *Service) ListManaged(ctx context.Context, principal *auth.Principal, filter Filter) ([]Project, int64, error) {
	if !principal.IsStaff {
		filter.ManagerID = principal.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) CreateAsset(ctx context.Context, principal *auth.Principal, projectID uuid.UUID, req CreateAssetRequest) (*SellableAsset, error) {
	var asset *SellableAsset
	err := s.repo.InTx(ctx, func(tx Repository) error {
		project, err := tx.GetByIDForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if !principal.Manages(project.ManagerID) {
			return &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
		}
		asset = &SellableAsset{
			ProjectID:    projectID,
			Identifier:   req.Identifier,
			AssetType:    req.AssetType,
			Floor:        req.Floor,
			AreaSqm:      req.AreaSqm,
			Bedrooms:     req.Bedrooms,
			Bathrooms:    req.Bathrooms,
			PriceUSD:     req.PriceUSD,
			FloorPlanURL: req.FloorPlanURL,
			Features:     req.Features,
			Status:       AssetAvailable,
		}
		if asset.AssetType == "" {
			asset.AssetType = AssetApartment
		}
		if err := tx.CreateAsset(ctx, asset); err != nil {
			return err
		}
		return tx.RecountUnits(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *Service) UpdateAsset(ctx context.Context, principal *auth.Principal, projectID, assetID uuid.UUID, req UpdateAssetRequest) (*SellableAsset, error) {
	var updated *SellableAsset
	err := s.repo.InTx(ctx, func(tx Repository) error {
		asset, err := s.managedAsset(ctx, tx, principal, projectID, assetID)
		if err != nil {
			return err
		}
		applyAssetUpdate(asset, req)
		if err := tx.UpdateAsset(ctx, asset); err != nil {
			return err
		}
		updated = asset
		return nil
	})
	return updated, err
}

// DeleteAsset removes an unsold unit from inventory. Anything past
// available is part of a deal history and stays on the books.
func (s *Service) DeleteAsset(ctx context.Context, principal *auth.Principal, projectID, assetID uuid.UUID) error {
	return s.repo.InTx(ctx, func(tx Repository) error {
		asset, err := s.managedAsset(ctx, tx, principal, projectID, assetID)
		if err != nil {
			return err
		}
		if asset.Status != AssetAvailable {
			return &lifecycle.InvalidTransitionError{Transition: "delete", Current: string(asset.Status)}
		}
		if err := tx.DeleteAsset(ctx, assetID); err != nil {
			return err
		}
		return tx.RecountUnits(ctx, projectID)
	})
}

// assetTransition fires one asset transition and refreshes the project's
// unit counters in the same transaction.
func (s *Service) assetTransition(ctx context.Context, principal *auth.Principal, projectID, assetID uuid.UUID, fire func(*SellableAsset) error) (*SellableAsset, error) {
	var asset *SellableAsset
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		asset, err = s.managedAsset(ctx, tx, principal, projectID, assetID)
		if err != nil {
			return err
		}
		if err := fire(asset); err != nil {
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
	return asset, nil
}

func (s *Service) ReserveAsset(ctx context.Context, principal *auth.Principal, projectID, assetID uuid.UUID) (*SellableAsset, error) {
	return s.assetTransition(ctx, principal, projectID, assetID, func(a *SellableAsset) error {
		return a.Reserve(principal)
	})
}

func (s *Service) MarkAssetSold(ctx context.Context, principal *auth.Principal, projectID, assetID uuid.UUID) (*SellableAsset, error) {
	return s.assetTransition(ctx, principal, projectID, assetID, func(a *SellableAsset) error {
		return a.MarkSold(principal)
	})
}

func (s *Service) DeliverAsset(ctx context.Context, principal *auth.Principal, projectID, assetID uuid.UUID) (*SellableAsset, error) {
	return s.assetTransition(ctx, principal, projectID, assetID, func(a *SellableAsset) error {
		return a.Deliver(principal)
	})
}

func (s *Service) ReleaseAsset(ctx context.Context, principal *auth.Principal, projectID, assetID uuid.UUID) (*SellableAsset, error) {
	return s.assetTransition(ctx, principal, projectID, assetID, func(a *SellableAsset) error {
		return a.Release(principal)
	})
}

func (s *Service) ListAssets(ctx context.Context, principal *auth.Principal, projectID uuid.UUID, filter AssetFilter) ([]SellableAsset, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	return s.repo.ListAssets(ctx, projectID, filter)
}

func (s *Service) AddMilestone(ctx context.Context, principal *auth.Principal, projectID uuid.UUID, req MilestoneRequest) (*ProjectMilestone, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	milestone := &ProjectMilestone{
		ProjectID:     projectID,
		Title:         req.Title,
		Description:   req.Description,
		TargetDate:    req.TargetDate,
		CompletedDate: req.CompletedDate,
		Percentage:    req.Percentage,
		Status:        req.Status,
		Order:         req.Order,
	}
	if milestone.Status == "" {
		milestone.Status = MilestonePending
	}
	if err := s.repo.CreateMilestone(ctx, milestone); err != nil {
		return nil, err
	}
	return milestone, nil
}

func (s *Service) UpdateMilestone(ctx context.Context, principal *auth.Principal, projectID, milestoneID uuid.UUID, req MilestoneRequest) (*ProjectMilestone, error) {
	milestone, err := s.managedMilestone(ctx, principal, projectID, milestoneID)
	if err != nil {
		return nil, err
	}
	milestone.Title = req.Title
	milestone.Description = req.Description
	milestone.TargetDate = req.TargetDate
	milestone.CompletedDate = req.CompletedDate
	milestone.Percentage = req.Percentage
	milestone.Order = req.Order
	if req.Status != "" {
		milestone.Status = req.Status
	}
	if err := s.repo.UpdateMilestone(ctx, milestone); err != nil {
		return nil, err
	}
	return milestone, nil
}

func (s *Service) RemoveMilestone(ctx context.Context, principal *auth.Principal, projectID, milestoneID uuid.UUID) error {
	if _, err := s.managedMilestone(ctx, principal, projectID, milestoneID); err != nil {
		return err
	}
	return s.repo.DeleteMilestone(ctx, milestoneID)
}

func (s *Service) PublishUpdate(ctx context.Context, principal *auth.Principal, projectID uuid.UUID, req UpdatePostRequest) (*ProjectUpdate, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	now := time.Now().UTC()
	post := &ProjectUpdate{
		ProjectID:   projectID,
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		AuthorID:    &principal.UserID,
		IsPublic:    true,
		PublishedAt: &now,
	}
	if req.IsPublic != nil {
		post.IsPublic = *req.IsPublic
	}
	if err := s.repo.CreateUpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) AttachImage(ctx context.Context, principal *auth.Principal, projectID uuid.UUID, req GalleryImageRequest) (*ProjectImage, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	image := &ProjectImage{
		ProjectID: projectID,
		ImageURL:  req.ImageURL,
		Caption:   req.Caption,
		Order:     req.Order,
	}
	if err := s.repo.AddImage(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

func (s *Service) RemoveImage(ctx context.Context, principal *auth.Principal, projectID, imageID uuid.UUID) error {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !principal.Manages(project.ManagerID) {
		return &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	return s.repo.DeleteImage(ctx, projectID, imageID)
}

// PublicUpdates lists the public posts for a visible project.
func (s *Service) PublicUpdates(ctx context.Context, slugValue string) ([]ProjectUpdate, error) {
	project, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	if project.Status == ProjectDraft || project.Status == ProjectCancelled {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: slugValue}
	}
	return s.repo.ListUpdatePosts(ctx, project.ID, true)
}

func (s *Service) managedAsset(ctx context.Context, tx Repository, principal *auth.Principal, projectID, assetID uuid.UUID) (*SellableAsset, error) {
	project, err := tx.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	asset, err := tx.GetAssetForUpdate(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.ProjectID != projectID {
		return nil, &lifecycle.NotFoundError{Entity: "asset", ID: assetID.String()}
	}
	return asset, nil
}

func (s *Service) managedMilestone(ctx context.Context, principal *auth.Principal, projectID, milestoneID uuid.UUID) (*ProjectMilestone, error) {
	milestone, err := s.repo.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if milestone.ProjectID != projectID {
		return nil, &lifecycle.NotFoundError{Entity: "milestone", ID: milestoneID.String()}
	}
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	return milestone, nil
}

func (s *Service) invalidateFeatured(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyFeaturedProjects); err != nil {
		s.logger.Warn("featured projects cache invalidation failed", zap.Error(err))
	}
}

func applyProjectUpdate(project *Project, req UpdateProjectRequest, principal *auth.Principal) {
	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.DeveloperName != nil {
		project.DeveloperName = *req.DeveloperName
	}
	if req.DeveloperLogoURL != nil {
		project.DeveloperLogoURL = *req.DeveloperLogoURL
	}
	if req.City != nil {
		project.City = *req.City
	}
	if req.State != nil {
		project.State = *req.State
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.Latitude != nil {
		project.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		project.Longitude = req.Longitude
	}
	if req.PriceRangeMin != nil {
		project.PriceRangeMin = req.PriceRangeMin
	}
	if req.PriceRangeMax != nil {
		project.PriceRangeMax = req.PriceRangeMax
	}
	if req.DeliveryDate != nil {
		project.DeliveryDate = req.DeliveryDate
	}
	if req.ConstructionStartDate != nil {
		project.ConstructionStartDate = req.ConstructionStartDate
	}
	if req.Amenities != nil {
		project.Amenities = *req.Amenities
	}
	if req.MasterPlanURL != nil {
		project.MasterPlanURL = *req.MasterPlanURL
	}
	if req.BrochureURL != nil {
		project.BrochureURL = *req.BrochureURL
	}
	if req.VideoURL != nil {
		project.VideoURL = *req.VideoURL
	}
	if req.CoverImageURL != nil {
		project.CoverImageURL = *req.CoverImageURL
	}
	// Only staff reassign managers or curate the featured strip.
	if principal.IsStaff {
		if req.ManagerID != nil {
			project.ManagerID = req.ManagerID
		}
		if req.IsFeatured != nil {
			project.IsFeatured = *req.IsFeatured
		}
	}
}

func applyAssetUpdate(asset *SellableAsset, req UpdateAssetRequest) {
	if req.Identifier != nil {
		asset.Identifier = *req.Identifier
	}
	if req.AssetType != nil {
		asset.AssetType = *req.AssetType
	}
	if req.Floor != nil {
		asset.Floor = req.Floor
	}
	if req.AreaSqm != nil {
		asset.AreaSqm = req.AreaSqm
	}
	if req.Bedrooms != nil {
		asset.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		asset.Bathrooms = *req.Bathrooms
	}
	if req.PriceUSD != nil {
		asset.PriceUSD = *req.PriceUSD
	}
	if req.FloorPlanURL != nil {
		asset.FloorPlanURL = *req.FloorPlanURL
	}
	if req.Features != nil {
		asset.Features = *req.Features
	}
}
