package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	// Transactional boundaries belong to the real repository; the tests
	// here verify the call sequence.
	return fn(m)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Project, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	args := m.Called(ctx, slug)
	if p := args.Get(0); p != nil {
		return p.(*Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Create(ctx context.Context, project *Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *mockRepository) Update(ctx context.Context, project *Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *mockRepository) List(ctx context.Context, filter Filter) ([]Project, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]Project), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepository) GetAsset(ctx context.Context, id uuid.UUID) (*SellableAsset, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*SellableAsset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetAssetForUpdate(ctx context.Context, id uuid.UUID) (*SellableAsset, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*SellableAsset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) CreateAsset(ctx context.Context, asset *SellableAsset) error {
	return m.Called(ctx, asset).Error(0)
}

func (m *mockRepository) UpdateAsset(ctx context.Context, asset *SellableAsset) error {
	return m.Called(ctx, asset).Error(0)
}

func (m *mockRepository) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) ListAssets(ctx context.Context, projectID uuid.UUID, filter AssetFilter) ([]SellableAsset, error) {
	args := m.Called(ctx, projectID, filter)
	return args.Get(0).([]SellableAsset), args.Error(1)
}

func (m *mockRepository) RecountUnits(ctx context.Context, projectID uuid.UUID) error {
	return m.Called(ctx, projectID).Error(0)
}

func (m *mockRepository) CreateMilestone(ctx context.Context, milestone *ProjectMilestone) error {
	return m.Called(ctx, milestone).Error(0)
}

func (m *mockRepository) UpdateMilestone(ctx context.Context, milestone *ProjectMilestone) error {
	return m.Called(ctx, milestone).Error(0)
}

func (m *mockRepository) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) GetMilestone(ctx context.Context, id uuid.UUID) (*ProjectMilestone, error) {
	args := m.Called(ctx, id)
	if ms := args.Get(0); ms != nil {
		return ms.(*ProjectMilestone), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]ProjectMilestone, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]ProjectMilestone), args.Error(1)
}

func (m *mockRepository) CreateUpdatePost(ctx context.Context, post *ProjectUpdate) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockRepository) ListUpdatePosts(ctx context.Context, projectID uuid.UUID, publicOnly bool) ([]ProjectUpdate, error) {
	args := m.Called(ctx, projectID, publicOnly)
	return args.Get(0).([]ProjectUpdate), args.Error(1)
}

func (m *mockRepository) AddImage(ctx context.Context, image *ProjectImage) error {
	return m.Called(ctx, image).Error(0)
}

func (m *mockRepository) DeleteImage(ctx context.Context, projectID, imageID uuid.UUID) error {
	return m.Called(ctx, projectID, imageID).Error(0)
}

func managedProject(manager uuid.UUID) *Project {
	return &Project{
		ID:        uuid.New(),
		Title:     "Altos de Escazú",
		Slug:      "altos-de-escazu",
		Status:    ProjectPresale,
		ManagerID: &manager,
	}
}

func TestAttachImageStoresGalleryEntry(t *testing.T) {
	manager := managerPrincipal()
	project := managedProject(manager.UserID)
	repo := new(mockRepository)
	service := NewService(repo, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("GetByID", ctx, project.ID).Return(project, nil)
	repo.On("AddImage", ctx, mock.MatchedBy(func(img *ProjectImage) bool {
		return img.ProjectID == project.ID && img.ImageURL == "https://img.example/facade.jpg" && img.Order == 2
	})).Return(nil)

	image, err := service.AttachImage(ctx, manager, project.ID, GalleryImageRequest{
		ImageURL: "https://img.example/facade.jpg",
		Caption:  "Facade at dusk",
		Order:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, project.ID, image.ProjectID)
	repo.AssertExpectations(t)
}

func TestAttachImageHiddenFromNonManager(t *testing.T) {
	project := managedProject(uuid.New())
	repo := new(mockRepository)
	service := NewService(repo, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("GetByID", ctx, project.ID).Return(project, nil)

	stranger := managerPrincipal() // manages a different portfolio
	_, err := service.AttachImage(ctx, stranger, project.ID, GalleryImageRequest{
		ImageURL: "https://img.example/facade.jpg",
	})
	assert.True(t, lifecycle.IsNotFound(err))
	repo.AssertNotCalled(t, "AddImage", mock.Anything, mock.Anything)
}

func TestRemoveImageScopedToProject(t *testing.T) {
	manager := managerPrincipal()
	project := managedProject(manager.UserID)
	imageID := uuid.New()
	repo := new(mockRepository)
	service := NewService(repo, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("GetByID", ctx, project.ID).Return(project, nil)
	repo.On("DeleteImage", ctx, project.ID, imageID).Return(nil)

	require.NoError(t, service.RemoveImage(ctx, manager, project.ID, imageID))
	repo.AssertExpectations(t)
}
