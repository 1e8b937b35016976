package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketStatus string

const (
	ticketOpen     ticketStatus = "open"
	ticketTriaged  ticketStatus = "triaged"
	ticketClosed   ticketStatus = "closed"
	ticketArchived ticketStatus = "archived"
)

type ticket struct {
	Status   ticketStatus
	Title    string
	ClosedBy string
}

type stubActor struct {
	permissions map[string]bool
}

func (a *stubActor) HasPermission(permission string) bool {
	return a.permissions[permission]
}

func newTicketMachine() *Machine[ticket, ticketStatus] {
	return NewMachine(
		func(t *ticket) ticketStatus { return t.Status },
		func(t *ticket, s ticketStatus) { t.Status = s },
		[]Transition[ticket, ticketStatus]{
			{
				Name:    "triage",
				Sources: []ticketStatus{ticketOpen},
				Target:  ticketTriaged,
				Guard:   func(t *ticket) bool { return t.Title != "" },
			},
			{
				Name:       "close",
				Sources:    []ticketStatus{ticketOpen, ticketTriaged},
				Target:     ticketClosed,
				Permission: "can_close",
				Apply: func(t *ticket, p Params) {
					t.ClosedBy = p.String("closed_by")
				},
			},
			{
				Name:    "archive",
				Sources: []ticketStatus{ticketClosed},
				Target:  ticketArchived,
			},
		},
	)
}

func TestFireSucceedsOnlyWhenCanProceed(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: ticketOpen, Title: "leaky faucet"}

	assert.True(t, m.CanProceed(tk, "triage", nil))
	next, err := m.Fire(tk, "triage", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ticketTriaged, next)
	assert.Equal(t, ticketTriaged, tk.Status)

	// Not reachable from triaged.
	assert.False(t, m.CanProceed(tk, "triage", nil))
	_, err = m.Fire(tk, "triage", nil, nil)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "triage", invalid.Transition)
	assert.Equal(t, string(ticketTriaged), invalid.Current)
}

func TestGuardBlocksTransition(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: ticketOpen} // no title

	assert.False(t, m.CanProceed(tk, "triage", nil))
	_, err := m.Fire(tk, "triage", nil, nil)
	assert.True(t, IsInvalidTransition(err))
	assert.Equal(t, ticketOpen, tk.Status)
}

func TestPermissionRequired(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: ticketOpen, Title: "x"}

	// Nil actor and unprivileged actor are both rejected.
	_, err := m.Fire(tk, "close", nil, nil)
	assert.True(t, IsPermissionDenied(err))

	_, err = m.Fire(tk, "close", &stubActor{}, nil)
	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "can_close", denied.Permission)
	assert.Equal(t, ticketOpen, tk.Status)
	assert.Empty(t, tk.ClosedBy)

	closer := &stubActor{permissions: map[string]bool{"can_close": true}}
	assert.True(t, m.CanProceed(tk, "close", closer))
	next, err := m.Fire(tk, "close", closer, Params{"closed_by": "ana"})
	require.NoError(t, err)
	assert.Equal(t, ticketClosed, next)
	assert.Equal(t, "ana", tk.ClosedBy)
}

func TestFailedFireNeverMutates(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: ticketClosed, Title: "x", ClosedBy: "ana"}
	before := *tk

	// Inapplicable transition rejected identically on repeated calls.
	for i := 0; i < 2; i++ {
		_, err := m.Fire(tk, "triage", nil, nil)
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, string(ticketClosed), invalid.Current)
		assert.Equal(t, before, *tk)
	}
}

func TestUnknownTransition(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: ticketOpen, Title: "x"}

	assert.False(t, m.CanProceed(tk, "reopen", nil))
	_, err := m.Fire(tk, "reopen", nil, nil)
	assert.True(t, IsInvalidTransition(err))
}

func TestAllowed(t *testing.T) {
	m := newTicketMachine()
	closer := &stubActor{permissions: map[string]bool{"can_close": true}}

	tk := &ticket{Status: ticketOpen, Title: "x"}
	assert.Equal(t, []string{"close", "triage"}, m.Allowed(tk, closer))
	assert.Equal(t, []string{"triage"}, m.Allowed(tk, nil))

	tk.Status = ticketArchived
	assert.Empty(t, m.Allowed(tk, closer))
}
