package contracts

import (
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// Contract transition names. There is no transition into reserved: contracts
// are born there.
const (
	TransitionSign     = "sign"
	TransitionActivate = "activate"
	TransitionComplete = "complete"
	TransitionCancel   = "cancel"
)

// machine is the single writer of BuyerContract.Status. The cancel→release
// coupling with the asset lives in the service, not here: the machine owns
// one entity at a time.
var machine = lifecycle.NewMachine(
	func(c *BuyerContract) ContractStatus { return c.Status },
	func(c *BuyerContract, s ContractStatus) { c.Status = s },
	[]lifecycle.Transition[BuyerContract, ContractStatus]{
		{
			Name:    TransitionSign,
			Sources: []ContractStatus{ContractReserved},
			Target:  ContractSigned,
		},
		{
			Name:    TransitionActivate,
			Sources: []ContractStatus{ContractSigned},
			Target:  ContractActive,
		},
		{
			Name:    TransitionComplete,
			Sources: []ContractStatus{ContractActive},
			Target:  ContractCompleted,
		},
		{
			Name:    TransitionCancel,
			Sources: []ContractStatus{ContractReserved, ContractSigned, ContractActive},
			Target:  ContractCancelled,
		},
	},
)

func (c *BuyerContract) CanProceed(name string, actor lifecycle.Actor) bool {
	return machine.CanProceed(c, name, actor)
}

func (c *BuyerContract) AllowedTransitions(actor lifecycle.Actor) []string {
	return machine.Allowed(c, actor)
}

// Sign records that the buyer has signed the paperwork.
func (c *BuyerContract) Sign(actor lifecycle.Actor) error {
	_, err := machine.Fire(c, TransitionSign, actor, nil)
	return err
}

// Activate puts a signed contract into force.
func (c *BuyerContract) Activate(actor lifecycle.Actor) error {
	_, err := machine.Fire(c, TransitionActivate, actor, nil)
	return err
}

// Complete closes out a fully paid contract.
func (c *BuyerContract) Complete(actor lifecycle.Actor) error {
	_, err := machine.Fire(c, TransitionComplete, actor, nil)
	return err
}

// Cancel voids a live contract. The caller is responsible for releasing the
// asset when the asset machine allows it.
func (c *BuyerContract) Cancel(actor lifecycle.Actor) error {
	_, err := machine.Fire(c, TransitionCancel, actor, nil)
	return err
}
