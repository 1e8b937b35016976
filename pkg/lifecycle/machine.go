package lifecycle

import "sort"

// Actor is the authenticated principal a transition is evaluated against.
// Transitions that carry no Permission accept a nil actor.
type Actor interface {
	HasPermission(permission string) bool
}

// Params carries per-call inputs consumed by a transition's Apply hook,
// such as a reviewer id or a rejection reason.
type Params map[string]any

// String returns the string value stored under key, or "".
func (p Params) String(key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

// Get returns the value stored under key asserted to T.
func Get[T any](p Params, key string) (T, bool) {
	var zero T
	if p == nil {
		return zero, false
	}
	v, ok := p[key].(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Transition is one row of an entity's transition table: a named change
// from any of Sources to Target, optionally gated by a Guard predicate over
// the entity data and a Permission the actor must hold. Apply runs field
// side effects after the status has been assigned.
type Transition[E any, S ~string] struct {
	Name       string
	Sources    []S
	Target     S
	Guard      func(e *E) bool
	Permission string
	Apply      func(e *E, p Params)
}

// Machine evaluates a transition table against entities of type E whose
// status field has string-kind type S. It is the only sanctioned writer of
// the status field: entities expose their table through named methods and
// never assign status directly.
type Machine[E any, S ~string] struct {
	status      func(e *E) S
	setStatus   func(e *E, s S)
	transitions map[string]Transition[E, S]
}

// NewMachine builds a machine from status accessors and a transition table.
func NewMachine[E any, S ~string](
	status func(e *E) S,
	setStatus func(e *E, s S),
	transitions []Transition[E, S],
) *Machine[E, S] {
	byName := make(map[string]Transition[E, S], len(transitions))
	for _, t := range transitions {
		byName[t.Name] = t
	}
	return &Machine[E, S]{status: status, setStatus: setStatus, transitions: byName}
}

// CanProceed reports whether the named transition may fire right now: the
// entity's current status is in the source set, the guard (if any) holds,
// and the actor (if a permission is required) holds that permission.
func (m *Machine[E, S]) CanProceed(e *E, name string, actor Actor) bool {
	t, ok := m.transitions[name]
	if !ok {
		return false
	}
	if !m.sourceAllowed(t, e) {
		return false
	}
	if t.Guard != nil && !t.Guard(e) {
		return false
	}
	if t.Permission != "" && (actor == nil || !actor.HasPermission(t.Permission)) {
		return false
	}
	return true
}

// Fire re-checks the transition and, if allowed, assigns the target status
// and runs the transition's Apply side effects. On a source or guard
// failure it returns *InvalidTransitionError; on a missing permission it
// returns *PermissionDeniedError. Either way the entity is left untouched.
func (m *Machine[E, S]) Fire(e *E, name string, actor Actor, params Params) (S, error) {
	current := m.status(e)
	t, ok := m.transitions[name]
	if !ok || !m.sourceAllowed(t, e) || (t.Guard != nil && !t.Guard(e)) {
		return current, &InvalidTransitionError{Transition: name, Current: string(current)}
	}
	if t.Permission != "" && (actor == nil || !actor.HasPermission(t.Permission)) {
		return current, &PermissionDeniedError{Transition: name, Permission: t.Permission}
	}
	m.setStatus(e, t.Target)
	if t.Apply != nil {
		t.Apply(e, params)
	}
	return t.Target, nil
}

// Allowed returns the names of transitions that can proceed for the entity
// and actor, sorted for stable output.
func (m *Machine[E, S]) Allowed(e *E, actor Actor) []string {
	names := make([]string, 0, len(m.transitions))
	for name := range m.transitions {
		if m.CanProceed(e, name, actor) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (m *Machine[E, S]) sourceAllowed(t Transition[E, S], e *E) bool {
	current := m.status(e)
	for _, s := range t.Sources {
		if s == current {
			return true
		}
	}
	return false
}
