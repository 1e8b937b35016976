package properties

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivenda/marketplace-backend/internal/accounts"
	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

func agentPrincipal() *auth.Principal {
	return &auth.Principal{
		UserID:          uuid.New(),
		Role:            accounts.RoleAgent,
		IsVerifiedAgent: true,
	}
}

func adminPrincipal() *auth.Principal {
	return &auth.Principal{UserID: uuid.New(), Role: accounts.RoleAdmin}
}

func draftProperty() *Property {
	return &Property{
		ID:          uuid.New(),
		Title:       "Villa Frente al Mar",
		Description: "Three bedrooms on the beach",
		PriceUSD:    250000,
		Status:      StatusDraft,
		Images:      []PropertyImage{{ImageURL: "https://img.example/1.jpg"}},
	}
}

func TestSubmitForReviewRequiresCompleteListing(t *testing.T) {
	agent := agentPrincipal()

	p := draftProperty()
	p.Images = nil // draft is a valid source, the guard still blocks

	assert.False(t, p.CanProceed(TransitionSubmitForReview, agent))
	err := p.SubmitForReview(agent)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Equal(t, StatusDraft, p.Status)
	assert.Nil(t, p.SubmittedAt)
}

func TestApproveRequiresPermission(t *testing.T) {
	agent := agentPrincipal()
	p := draftProperty()
	require.NoError(t, p.SubmitForReview(agent))

	err := p.Approve(agent, agent.UserID)
	assert.True(t, lifecycle.IsPermissionDenied(err))
	assert.Equal(t, StatusPendingReview, p.Status)
	assert.Nil(t, p.ReviewedByID)

	admin := adminPrincipal()
	require.NoError(t, p.Approve(admin, admin.UserID))
	assert.Equal(t, StatusActive, p.Status)
	require.NotNil(t, p.ReviewedByID)
	assert.Equal(t, admin.UserID, *p.ReviewedByID)
	assert.NotNil(t, p.ReviewedAt)
}

func TestReviewRoundTrip(t *testing.T) {
	agent := agentPrincipal()
	admin := adminPrincipal()
	p := draftProperty()

	require.NoError(t, p.SubmitForReview(agent))
	assert.Equal(t, StatusPendingReview, p.Status)
	assert.NotNil(t, p.SubmittedAt)
	assert.Empty(t, p.RejectionReason)

	require.NoError(t, p.Approve(admin, admin.UserID))
	assert.Equal(t, StatusActive, p.Status)

	require.NoError(t, p.Deactivate(agent))
	assert.Equal(t, StatusInactive, p.Status)

	require.NoError(t, p.Reactivate(agent))
	assert.Equal(t, StatusPendingReview, p.Status)
	assert.NotNil(t, p.SubmittedAt)
	assert.Empty(t, p.RejectionReason)
}

func TestRejectThenResubmitClearsReason(t *testing.T) {
	agent := agentPrincipal()
	admin := adminPrincipal()

	p := draftProperty()
	p.Title = "X"
	p.Description = "Y"
	p.PriceUSD = 100

	require.NoError(t, p.SubmitForReview(agent))
	assert.Equal(t, StatusPendingReview, p.Status)
	assert.NotNil(t, p.SubmittedAt)

	require.NoError(t, p.Reject(admin, admin.UserID, "incomplete photos"))
	assert.Equal(t, StatusRejected, p.Status)
	assert.Equal(t, "incomplete photos", p.RejectionReason)

	require.NoError(t, p.SubmitForReview(agent))
	assert.Equal(t, StatusPendingReview, p.Status)
	assert.Empty(t, p.RejectionReason)
}

func TestSoldAndRentedOnlyFromActive(t *testing.T) {
	agent := agentPrincipal()
	admin := adminPrincipal()
	p := draftProperty()

	err := p.MarkAsSold(agent)
	assert.True(t, lifecycle.IsInvalidTransition(err))

	require.NoError(t, p.SubmitForReview(agent))
	require.NoError(t, p.Approve(admin, admin.UserID))
	require.NoError(t, p.MarkAsSold(agent))
	assert.Equal(t, StatusSold, p.Status)

	// Relisting a sold property is a reviewer action.
	err = p.Relist(agent)
	assert.True(t, lifecycle.IsPermissionDenied(err))
	assert.Equal(t, StatusSold, p.Status)

	require.NoError(t, p.Relist(admin))
	assert.Equal(t, StatusActive, p.Status)

	require.NoError(t, p.MarkAsRented(agent))
	assert.Equal(t, StatusRented, p.Status)
}

func TestInapplicableTransitionIsIdempotent(t *testing.T) {
	agent := agentPrincipal()
	p := draftProperty()
	before := *p

	for i := 0; i < 2; i++ {
		err := p.Deactivate(agent)
		var invalid *lifecycle.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, TransitionDeactivate, invalid.Transition)
		assert.Equal(t, string(StatusDraft), invalid.Current)
		assert.Equal(t, before.Status, p.Status)
		assert.Equal(t, before.SubmittedAt, p.SubmittedAt)
		assert.Equal(t, before.RejectionReason, p.RejectionReason)
	}
}

func TestStaffHoldsReviewPermission(t *testing.T) {
	staff := &auth.Principal{UserID: uuid.New(), Role: accounts.RoleBuyer, IsStaff: true}
	p := draftProperty()
	require.NoError(t, p.SubmitForReview(agentPrincipal()))
	require.NoError(t, p.Approve(staff, staff.UserID))
	assert.Equal(t, StatusActive, p.Status)
}

func TestAllowedTransitions(t *testing.T) {
	admin := adminPrincipal()
	p := draftProperty()

	assert.Equal(t, []string{TransitionSubmitForReview}, p.AllowedTransitions(admin))

	p.Images = nil
	assert.Empty(t, p.AllowedTransitions(admin))
}
