package projects

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivenda/marketplace-backend/internal/accounts"
	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

func managerPrincipal() *auth.Principal {
	return &auth.Principal{UserID: uuid.New(), Role: accounts.RoleProjectAdmin}
}

func draftProject() *Project {
	return &Project{
		ID:     uuid.New(),
		Title:  "Torres del Parque",
		Status: ProjectDraft,
	}
}

func availableAsset() *SellableAsset {
	return &SellableAsset{
		ID:         uuid.New(),
		ProjectID:  uuid.New(),
		Identifier: "A-101",
		PriceUSD:   180000,
		Status:     AssetAvailable,
	}
}

func TestProjectLifecycleHappyPath(t *testing.T) {
	manager := managerPrincipal()
	p := draftProject()

	require.NoError(t, p.StartPresale(manager))
	assert.Equal(t, ProjectPresale, p.Status)

	require.NoError(t, p.StartConstruction(manager))
	assert.Equal(t, ProjectUnderConstruction, p.Status)

	require.NoError(t, p.MarkDelivered(manager))
	assert.Equal(t, ProjectDelivered, p.Status)
}

func TestProjectDeliveredDirectlyFromPresale(t *testing.T) {
	manager := managerPrincipal()
	p := draftProject()
	require.NoError(t, p.StartPresale(manager))

	require.NoError(t, p.MarkDelivered(manager))
	assert.Equal(t, ProjectDelivered, p.Status)
}

func TestProjectCancelBlockedAfterDelivery(t *testing.T) {
	manager := managerPrincipal()
	p := draftProject()
	require.NoError(t, p.StartPresale(manager))
	require.NoError(t, p.MarkDelivered(manager))

	err := p.Cancel(manager)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Equal(t, ProjectDelivered, p.Status)
}

func TestProjectCannotSkipToConstruction(t *testing.T) {
	manager := managerPrincipal()
	p := draftProject()

	assert.False(t, p.CanProceed(TransitionStartConstruction, manager))
	err := p.StartConstruction(manager)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Equal(t, ProjectDraft, p.Status)
}

func TestAssetReservationRoundTrip(t *testing.T) {
	manager := managerPrincipal()
	a := availableAsset()

	require.NoError(t, a.Reserve(manager))
	assert.Equal(t, AssetReserved, a.Status)

	require.NoError(t, a.Release(manager))
	assert.Equal(t, AssetAvailable, a.Status)

	require.NoError(t, a.Reserve(manager))
	require.NoError(t, a.MarkSold(manager))
	assert.Equal(t, AssetSold, a.Status)

	require.NoError(t, a.Deliver(manager))
	assert.Equal(t, AssetDelivered, a.Status)
}

func TestAssetCannotBeSoldWithoutReservation(t *testing.T) {
	manager := managerPrincipal()
	a := availableAsset()

	err := a.MarkSold(manager)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Equal(t, AssetAvailable, a.Status)
}

func TestAssetReleaseOnlyFromReserved(t *testing.T) {
	manager := managerPrincipal()
	a := availableAsset()
	require.NoError(t, a.Reserve(manager))
	require.NoError(t, a.MarkSold(manager))

	err := a.Release(manager)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Equal(t, AssetSold, a.Status)
}

func TestAssetAllowedTransitions(t *testing.T) {
	manager := managerPrincipal()
	a := availableAsset()

	assert.Equal(t, []string{TransitionReserve}, a.AllowedTransitions(manager))

	require.NoError(t, a.Reserve(manager))
	assert.ElementsMatch(t, []string{TransitionMarkSold, TransitionRelease}, a.AllowedTransitions(manager))

	require.NoError(t, a.MarkSold(manager))
	assert.Equal(t, []string{TransitionDeliver}, a.AllowedTransitions(manager))

	require.NoError(t, a.Deliver(manager))
	assert.Empty(t, a.AllowedTransitions(manager))
}
