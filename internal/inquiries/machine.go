package inquiries

import (
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

// Inquiry transition names. Leads are born in new; closed and spam are
// terminal.
const (
	TransitionContact       = "contact"
	TransitionStartProgress = "start_progress"
	TransitionQualify       = "qualify"
	TransitionClose         = "close"
	TransitionMarkSpam      = "mark_spam"
)

var machine = lifecycle.NewMachine(
	func(i *Inquiry) InquiryStatus { return i.Status },
	func(i *Inquiry, s InquiryStatus) { i.Status = s },
	[]lifecycle.Transition[Inquiry, InquiryStatus]{
		{
			Name:    TransitionContact,
			Sources: []InquiryStatus{InquiryNew},
			Target:  InquiryContacted,
		},
		{
			Name:    TransitionStartProgress,
			Sources: []InquiryStatus{InquiryContacted},
			Target:  InquiryInProgress,
		},
		{
			Name:    TransitionQualify,
			Sources: []InquiryStatus{InquiryContacted, InquiryInProgress},
			Target:  InquiryQualified,
		},
		{
			Name:    TransitionClose,
			Sources: []InquiryStatus{InquiryNew, InquiryContacted, InquiryInProgress, InquiryQualified},
			Target:  InquiryClosed,
		},
		{
			Name:    TransitionMarkSpam,
			Sources: []InquiryStatus{InquiryNew},
			Target:  InquirySpam,
		},
	},
)

func (i *Inquiry) CanProceed(name string, actor lifecycle.Actor) bool {
	return machine.CanProceed(i, name, actor)
}

func (i *Inquiry) AllowedTransitions(actor lifecycle.Actor) []string {
	return machine.Allowed(i, actor)
}

// Advance fires any named inquiry transition; the set is small enough that
// handlers dispatch by name.
func (i *Inquiry) Advance(name string, actor lifecycle.Actor) error {
	_, err := machine.Fire(i, name, actor, nil)
	return err
}
