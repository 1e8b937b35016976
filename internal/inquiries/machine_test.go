package inquiries

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
	return &auth.Principal{UserID: uuid.New(), Role: accounts.RoleAgent}
}

func newInquiry() *Inquiry {
	return &Inquiry{
		ID:         uuid.New(),
		PropertyID: uuid.New(),
		FullName:   "Laura Méndez",
		Email:      "laura@example.com",
		Status:     InquiryNew,
	}
}

func TestInquiryQualificationPath(t *testing.T) {
	agent := agentPrincipal()
	i := newInquiry()

	require.NoError(t, i.Advance(TransitionContact, agent))
	require.NoError(t, i.Advance(TransitionStartProgress, agent))
	require.NoError(t, i.Advance(TransitionQualify, agent))
	assert.Equal(t, InquiryQualified, i.Status)

	require.NoError(t, i.Advance(TransitionClose, agent))
	assert.Equal(t, InquiryClosed, i.Status)
}

func TestInquiryQualifyStraightFromContacted(t *testing.T) {
	agent := agentPrincipal()
	i := newInquiry()

	require.NoError(t, i.Advance(TransitionContact, agent))
	require.NoError(t, i.Advance(TransitionQualify, agent))
	assert.Equal(t, InquiryQualified, i.Status)
}

func TestInquirySpamOnlyWhileNew(t *testing.T) {
	agent := agentPrincipal()
	i := newInquiry()

	require.NoError(t, i.Advance(TransitionContact, agent))

	err := i.Advance(TransitionMarkSpam, agent)
	require.Error(t, err)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Equal(t, InquiryContacted, i.Status)
}

func TestInquiryClosedIsTerminal(t *testing.T) {
	agent := agentPrincipal()
	i := newInquiry()

	require.NoError(t, i.Advance(TransitionClose, agent))
	assert.Empty(t, i.AllowedTransitions(agent))

	err := i.Advance(TransitionContact, agent)
	assert.True(t, lifecycle.IsInvalidTransition(err))
}
