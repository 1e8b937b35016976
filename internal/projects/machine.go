package projects

import (
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// Project transition names.
const (
	TransitionStartPresale      = "start_presale"
	TransitionStartConstruction = "start_construction"
	TransitionMarkDelivered     = "mark_delivered"
	TransitionCancelProject     = "cancel"
)

// Asset transition names.
const (
	TransitionReserve  = "reserve"
	TransitionMarkSold = "mark_sold"
	TransitionDeliver  = "deliver"
	TransitionRelease  = "release"
)

// projectMachine is the single writer of Project.Status. Authorization is
// the service's job (manager-or-staff), so no transition carries a
// permission of its own.
var projectMachine = lifecycle.NewMachine(
	func(p *Project) ProjectStatus { return p.Status },
	func(p *Project, s ProjectStatus) { p.Status = s },
	[]lifecycle.Transition[Project, ProjectStatus]{
		{
			Name:    TransitionStartPresale,
			Sources: []ProjectStatus{ProjectDraft},
			Target:  ProjectPresale,
		},
		{
			Name:    TransitionStartConstruction,
			Sources: []ProjectStatus{ProjectPresale},
			Target:  ProjectUnderConstruction,
		},
		{
			Name:    TransitionMarkDelivered,
			Sources: []ProjectStatus{ProjectPresale, ProjectUnderConstruction},
			Target:  ProjectDelivered,
		},
		{
			Name:    TransitionCancelProject,
			Sources: []ProjectStatus{ProjectDraft, ProjectPresale, ProjectUnderConstruction},
			Target:  ProjectCancelled,
		},
	},
)

// assetMachine is the single writer of SellableAsset.Status.
var assetMachine = lifecycle.NewMachine(
	func(a *SellableAsset) AssetStatus { return a.Status },
	func(a *SellableAsset, s AssetStatus) { a.Status = s },
	[]lifecycle.Transition[SellableAsset, AssetStatus]{
		{
			Name:    TransitionReserve,
			Sources: []AssetStatus{AssetAvailable},
			Target:  AssetReserved,
		},
		{
			Name:    TransitionMarkSold,
			Sources: []AssetStatus{AssetReserved},
			Target:  AssetSold,
		},
		{
			Name:    TransitionDeliver,
			Sources: []AssetStatus{AssetSold},
			Target:  AssetDelivered,
		},
		{
			// Backs out a reservation, used directly and by the
			// contract-cancellation coupling.
			Name:    TransitionRelease,
			Sources: []AssetStatus{AssetReserved},
			Target:  AssetAvailable,
		},
	},
)

func (p *Project) CanProceed(name string, actor lifecycle.Actor) bool {
	return projectMachine.CanProceed(p, name, actor)
}

func (p *Project) AllowedTransitions(actor lifecycle.Actor) []string {
	return projectMachine.Allowed(p, actor)
}

// StartPresale opens the project for unit reservations.
func (p *Project) StartPresale(actor lifecycle.Actor) error {
	_, err := projectMachine.Fire(p, TransitionStartPresale, actor, nil)
	return err
}

// StartConstruction records the build phase beginning.
func (p *Project) StartConstruction(actor lifecycle.Actor) error {
	_, err := projectMachine.Fire(p, TransitionStartConstruction, actor, nil)
	return err
}

// MarkDelivered closes out a completed development.
func (p *Project) MarkDelivered(actor lifecycle.Actor) error {
	_, err := projectMachine.Fire(p, TransitionMarkDelivered, actor, nil)
	return err
}

// Cancel abandons a project that has not been delivered.
func (p *Project) Cancel(actor lifecycle.Actor) error {
	_, err := projectMachine.Fire(p, TransitionCancelProject, actor, nil)
	return err
}

func (a *SellableAsset) CanProceed(name string, actor lifecycle.Actor) bool {
	return assetMachine.CanProceed(a, name, actor)
}

func (a *SellableAsset) AllowedTransitions(actor lifecycle.Actor) []string {
	return assetMachine.Allowed(a, actor)
}

// Reserve claims an available unit.
func (a *SellableAsset) Reserve(actor lifecycle.Actor) error {
	_, err := assetMachine.Fire(a, TransitionReserve, actor, nil)
	return err
}

// MarkSold converts a reservation into a sale.
func (a *SellableAsset) MarkSold(actor lifecycle.Actor) error {
	_, err := assetMachine.Fire(a, TransitionMarkSold, actor, nil)
	return err
}

// Deliver hands a sold unit over to its buyer.
func (a *SellableAsset) Deliver(actor lifecycle.Actor) error {
	_, err := assetMachine.Fire(a, TransitionDeliver, actor, nil)
	return err
}

// Release returns a reserved unit to the market.
func (a *SellableAsset) Release(actor lifecycle.Actor) error {
	_, err := assetMachine.Fire(a, TransitionRelease, actor, nil)
	return err
}
