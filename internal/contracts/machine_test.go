package contracts

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

func reservedContract() *BuyerContract {
	return &BuyerContract{
		ID:         uuid.New(),
		AssetID:    uuid.New(),
		BuyerID:    uuid.New(),
		TotalPrice: 200000,
		Status:     ContractReserved,
	}
}

func TestContractHappyPath(t *testing.T) {
	manager := managerPrincipal()
	c := reservedContract()

	require.NoError(t, c.Sign(manager))
	assert.Equal(t, ContractSigned, c.Status)

	require.NoError(t, c.Activate(manager))
	assert.Equal(t, ContractActive, c.Status)

	require.NoError(t, c.Complete(manager))
	assert.Equal(t, ContractCompleted, c.Status)
	assert.False(t, c.IsLive())
}

func TestContractCancelFromEveryLiveStatus(t *testing.T) {
	manager := managerPrincipal()

	for _, setup := range []func(*BuyerContract){
		func(*BuyerContract) {},
		func(c *BuyerContract) { require.NoError(t, c.Sign(manager)) },
		func(c *BuyerContract) {
			require.NoError(t, c.Sign(manager))
			require.NoError(t, c.Activate(manager))
		},
	} {
		c := reservedContract()
		setup(c)
		require.True(t, c.IsLive())

		require.NoError(t, c.Cancel(manager))
		assert.Equal(t, ContractCancelled, c.Status)
		assert.False(t, c.IsLive())
	}
}

func TestContractCancelBlockedWhenCompleted(t *testing.T) {
	manager := managerPrincipal()
	c := reservedContract()
	require.NoError(t, c.Sign(manager))
	require.NoError(t, c.Activate(manager))
	require.NoError(t, c.Complete(manager))

	err := c.Cancel(manager)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Equal(t, ContractCompleted, c.Status)
}

func TestContractCannotSkipSigning(t *testing.T) {
	manager := managerPrincipal()
	c := reservedContract()

	assert.False(t, c.CanProceed(TransitionActivate, manager))
	err := c.Activate(manager)
	assert.True(t, lifecycle.IsInvalidTransition(err))

	// Same rejection twice, no partial mutation either time.
	err2 := c.Activate(manager)
	assert.Equal(t, err.Error(), err2.Error())
	assert.Equal(t, ContractReserved, c.Status)
}

func TestOutstandingBalance(t *testing.T) {
	c := reservedContract()
	c.Payments = []PaymentScheduleItem{
		{AmountUSD: 1000, Status: PaymentPaid},
		{AmountUSD: 500, Status: PaymentPending},
		{AmountUSD: 500, Status: PaymentOverdue},
		{AmountUSD: 250, Status: PaymentWaived},
	}
	assert.Equal(t, 1000.0, c.OutstandingBalance())
}
