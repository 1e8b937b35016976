package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/internal/events"
	"github.com/vivenda/marketplace-backend/internal/projects"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

type MockRepository struct {
	mock.Mock
}

// InTx runs fn against the mock itself; transactional boundaries are the
// real repository's concern, the tests here verify the call sequence.
func (m *MockRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(m)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*BuyerContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BuyerContract), args.Error(1)
}

func (m *MockRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*BuyerContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BuyerContract), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, contract *BuyerContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, contract *BuyerContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockRepository) ListByProject(ctx context.Context, projectID uuid.UUID, filter Filter) ([]BuyerContract, int64, error) {
	args := m.Called(ctx, projectID, filter)
	return args.Get(0).([]BuyerContract), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter Filter) ([]BuyerContract, int64, error) {
	args := m.Called(ctx, buyerID, filter)
	return args.Get(0).([]BuyerContract), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) GetAssetForUpdate(ctx context.Context, id uuid.UUID) (*projects.SellableAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.SellableAsset), args.Error(1)
}

func (m *MockRepository) UpdateAsset(ctx context.Context, asset *projects.SellableAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockRepository) RecountUnits(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockRepository) GetProject(ctx context.Context, id uuid.UUID) (*projects.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.Project), args.Error(1)
}

func (m *MockRepository) CreatePayment(ctx context.Context, item *PaymentScheduleItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) UpdatePayment(ctx context.Context, item *PaymentScheduleItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) DeletePayment(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentScheduleItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentScheduleItem), args.Error(1)
}

func (m *MockRepository) ListPayments(ctx context.Context, contractID uuid.UUID) ([]PaymentScheduleItem, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]PaymentScheduleItem), args.Error(1)
}

func (m *MockRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

type fixture struct {
	repo     *MockRepository
	service  *Service
	manager  *auth.Principal
	project  *projects.Project
	asset    *projects.SellableAsset
	contract *BuyerContract
}

func newFixture(t *testing.T, assetStatus projects.AssetStatus, contractStatus ContractStatus) *fixture {
	t.Helper()
	manager := managerPrincipal()
	project := &projects.Project{ID: uuid.New(), ManagerID: &manager.UserID}
	asset := &projects.SellableAsset{
		ID:         uuid.New(),
		ProjectID:  project.ID,
		Identifier: "A-101",
		PriceUSD:   200000,
		Status:     assetStatus,
	}
	contract := &BuyerContract{
		ID:         uuid.New(),
		AssetID:    asset.ID,
		Asset:      asset,
		BuyerID:    uuid.New(),
		TotalPrice: asset.PriceUSD,
		Status:     contractStatus,
	}
	repo := new(MockRepository)
	return &fixture{
		repo:     repo,
		service:  NewService(repo, events.NewBus(), zap.NewNop()),
		manager:  manager,
		project:  project,
		asset:    asset,
		contract: contract,
	}
}

func TestCancelReleasesReservedAsset(t *testing.T) {
	f := newFixture(t, projects.AssetReserved, ContractReserved)
	ctx := context.Background()

	f.repo.On("GetByIDForUpdate", ctx, f.contract.ID).Return(f.contract, nil)
	f.repo.On("GetProject", ctx, f.project.ID).Return(f.project, nil)
	f.repo.On("GetAssetForUpdate", ctx, f.asset.ID).Return(f.asset, nil)
	f.repo.On("UpdateAsset", ctx, f.asset).Return(nil)
	f.repo.On("RecountUnits", ctx, f.project.ID).Return(nil)
	f.repo.On("Update", ctx, f.contract).Return(nil)

	contract, err := f.service.Cancel(ctx, f.manager, f.project.ID, f.contract.ID)
	require.NoError(t, err)

	// Cancel and release land in the same unit of work.
	assert.Equal(t, ContractCancelled, contract.Status)
	assert.Equal(t, projects.AssetAvailable, f.asset.Status)
	f.repo.AssertExpectations(t)
}

func TestCancelLeavesSoldAssetUntouched(t *testing.T) {
	f := newFixture(t, projects.AssetSold, ContractActive)
	ctx := context.Background()

	f.repo.On("GetByIDForUpdate", ctx, f.contract.ID).Return(f.contract, nil)
	f.repo.On("GetProject", ctx, f.project.ID).Return(f.project, nil)
	f.repo.On("GetAssetForUpdate", ctx, f.asset.ID).Return(f.asset, nil)
	f.repo.On("Update", ctx, f.contract).Return(nil)

	contract, err := f.service.Cancel(ctx, f.manager, f.project.ID, f.contract.ID)
	require.NoError(t, err)

	// The refused release is non-fatal and the asset keeps its status.
	assert.Equal(t, ContractCancelled, contract.Status)
	assert.Equal(t, projects.AssetSold, f.asset.Status)
	f.repo.AssertNotCalled(t, "UpdateAsset", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "RecountUnits", mock.Anything, mock.Anything)
}

func TestCancelFailureNeverTouchesAsset(t *testing.T) {
	f := newFixture(t, projects.AssetReserved, ContractCompleted)
	ctx := context.Background()

	f.repo.On("GetByIDForUpdate", ctx, f.contract.ID).Return(f.contract, nil)
	f.repo.On("GetProject", ctx, f.project.ID).Return(f.project, nil)

	_, err := f.service.Cancel(ctx, f.manager, f.project.ID, f.contract.ID)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Equal(t, ContractCompleted, f.contract.Status)
	f.repo.AssertNotCalled(t, "GetAssetForUpdate", mock.Anything, mock.Anything)
}

func TestCreateReservesAsset(t *testing.T) {
	f := newFixture(t, projects.AssetAvailable, ContractReserved)
	ctx := context.Background()

	f.repo.On("GetProject", ctx, f.project.ID).Return(f.project, nil)
	f.repo.On("GetAssetForUpdate", ctx, f.asset.ID).Return(f.asset, nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*contracts.BuyerContract")).Return(nil)
	f.repo.On("UpdateAsset", ctx, f.asset).Return(nil)
	f.repo.On("RecountUnits", ctx, f.project.ID).Return(nil)

	contract, err := f.service.Create(ctx, f.manager, f.project.ID, CreateContractRequest{
		AssetID:    f.asset.ID,
		BuyerID:    uuid.New(),
		TotalPrice: 200000,
	})
	require.NoError(t, err)

	assert.Equal(t, ContractReserved, contract.Status)
	assert.Equal(t, projects.AssetReserved, f.asset.Status)
	f.repo.AssertExpectations(t)
}

func TestCreateSecondLiveContractFails(t *testing.T) {
	f := newFixture(t, projects.AssetAvailable, ContractReserved)
	ctx := context.Background()

	f.repo.On("GetProject", ctx, f.project.ID).Return(f.project, nil)
	f.repo.On("GetAssetForUpdate", ctx, f.asset.ID).Return(f.asset, nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*contracts.BuyerContract")).
		Return(&lifecycle.ConstraintViolationError{Kind: "asset already has a live contract"})

	_, err := f.service.Create(ctx, f.manager, f.project.ID, CreateContractRequest{
		AssetID:    f.asset.ID,
		BuyerID:    uuid.New(),
		TotalPrice: 200000,
	})
	assert.True(t, lifecycle.IsConstraintViolation(err))
}

func TestCreateRefusedForUnavailableAsset(t *testing.T) {
	f := newFixture(t, projects.AssetSold, ContractReserved)
	ctx := context.Background()

	f.repo.On("GetProject", ctx, f.project.ID).Return(f.project, nil)
	f.repo.On("GetAssetForUpdate", ctx, f.asset.ID).Return(f.asset, nil)

	_, err := f.service.Create(ctx, f.manager, f.project.ID, CreateContractRequest{
		AssetID:    f.asset.ID,
		BuyerID:    uuid.New(),
		TotalPrice: 200000,
	})
	assert.True(t, lifecycle.IsConstraintViolation(err))
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNonManagerSeesNotFound(t *testing.T) {
	f := newFixture(t, projects.AssetReserved, ContractReserved)
	ctx := context.Background()
	stranger := managerPrincipal() // manages nothing in this fixture

	f.repo.On("GetByIDForUpdate", ctx, f.contract.ID).Return(f.contract, nil)
	f.repo.On("GetProject", ctx, f.project.ID).Return(f.project, nil)

	_, err := f.service.Cancel(ctx, stranger, f.project.ID, f.contract.ID)
	assert.True(t, lifecycle.IsNotFound(err))
	assert.Equal(t, ContractReserved, f.contract.Status)
}
