package properties

import (
	"time"

	"github.com/google/uuid"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// Transition names for the listing approval workflow.
const (
	TransitionSubmitForReview = "submit_for_review"
	TransitionApprove         = "approve"
	TransitionReject          = "reject"
	TransitionDeactivate      = "deactivate"
	TransitionReactivate      = "reactivate"
	TransitionMarkAsSold      = "mark_as_sold"
	TransitionMarkAsRented    = "mark_as_rented"
	TransitionRelist          = "relist"
)

const (
	paramReviewedBy = "reviewed_by"
	paramReason     = "reason"
)

// machine is the single writer of Property.Status.
var machine = lifecycle.NewMachine(
	func(p *Property) PropertyStatus { return p.Status },
	func(p *Property, s PropertyStatus) { p.Status = s },
	[]lifecycle.Transition[Property, PropertyStatus]{
		{
			Name:    TransitionSubmitForReview,
			Sources: []PropertyStatus{StatusDraft, StatusRejected},
			Target:  StatusPendingReview,
			Guard:   (*Property).reviewReady,
			Apply: func(p *Property, _ lifecycle.Params) {
				now := time.Now()
				p.SubmittedAt = &now
				p.RejectionReason = "" // clear any stale rejection
			},
		},
		{
			Name:       TransitionApprove,
			Sources:    []PropertyStatus{StatusPendingReview},
			Target:     StatusActive,
			Permission: auth.PermApproveProperty,
			Apply: func(p *Property, params lifecycle.Params) {
				recordReview(p, params)
				p.RejectionReason = ""
			},
		},
		{
			Name:       TransitionReject,
			Sources:    []PropertyStatus{StatusPendingReview},
			Target:     StatusRejected,
			Permission: auth.PermApproveProperty,
			Apply: func(p *Property, params lifecycle.Params) {
				recordReview(p, params)
				p.RejectionReason = params.String(paramReason)
			},
		},
		{
			Name:    TransitionDeactivate,
			Sources: []PropertyStatus{StatusActive},
			Target:  StatusInactive,
		},
		{
			Name:    TransitionReactivate,
			Sources: []PropertyStatus{StatusInactive},
			Target:  StatusPendingReview,
			Apply: func(p *Property, _ lifecycle.Params) {
				now := time.Now()
				p.SubmittedAt = &now
			},
		},
		{
			Name:    TransitionMarkAsSold,
			Sources: []PropertyStatus{StatusActive},
			Target:  StatusSold,
		},
		{
			Name:    TransitionMarkAsRented,
			Sources: []PropertyStatus{StatusActive},
			Target:  StatusRented,
		},
		{
			Name:       TransitionRelist,
			Sources:    []PropertyStatus{StatusSold, StatusRented},
			Target:     StatusActive,
			Permission: auth.PermApproveProperty,
		},
	},
)

func recordReview(p *Property, params lifecycle.Params) {
	now := time.Now()
	p.ReviewedAt = &now
	if id, ok := lifecycle.Get[uuid.UUID](params, paramReviewedBy); ok {
		p.ReviewedByID = &id
	}
}

// CanProceed reports whether the named transition may fire for the actor.
func (p *Property) CanProceed(name string, actor lifecycle.Actor) bool {
	return machine.CanProceed(p, name, actor)
}

// AllowedTransitions lists the transitions currently open to the actor.
func (p *Property) AllowedTransitions(actor lifecycle.Actor) []string {
	return machine.Allowed(p, actor)
}

// SubmitForReview moves a draft or rejected listing into the review queue.
func (p *Property) SubmitForReview(actor lifecycle.Actor) error {
	_, err := machine.Fire(p, TransitionSubmitForReview, actor, nil)
	return err
}

// Approve publishes a listing under review. Requires can_approve_property.
func (p *Property) Approve(actor lifecycle.Actor, reviewerID uuid.UUID) error {
	_, err := machine.Fire(p, TransitionApprove, actor, lifecycle.Params{paramReviewedBy: reviewerID})
	return err
}

// Reject sends a listing back to its agent with a reason. Requires
// can_approve_property.
func (p *Property) Reject(actor lifecycle.Actor, reviewerID uuid.UUID, reason string) error {
	_, err := machine.Fire(p, TransitionReject, actor, lifecycle.Params{
		paramReviewedBy: reviewerID,
		paramReason:     reason,
	})
	return err
}

// Deactivate hides an active listing.
func (p *Property) Deactivate(actor lifecycle.Actor) error {
	_, err := machine.Fire(p, TransitionDeactivate, actor, nil)
	return err
}

// Reactivate sends a deactivated listing back through review.
func (p *Property) Reactivate(actor lifecycle.Actor) error {
	_, err := machine.Fire(p, TransitionReactivate, actor, nil)
	return err
}

// MarkAsSold closes out an active sale listing.
func (p *Property) MarkAsSold(actor lifecycle.Actor) error {
	_, err := machine.Fire(p, TransitionMarkAsSold, actor, nil)
	return err
}

// MarkAsRented closes out an active rental listing.
func (p *Property) MarkAsRented(actor lifecycle.Actor) error {
	_, err := machine.Fire(p, TransitionMarkAsRented, actor, nil)
	return err
}

// Relist puts a sold or rented property back on the market. Requires
// can_approve_property.
func (p *Property) Relist(actor lifecycle.Actor) error {
	_, err := machine.Fire(p, TransitionRelist, actor, nil)
	return err
}
