package provisioning

import "fmt"

// State is the lifecycle state of a single resource during reconciliation.
// Creating, Updating and Deleting last for one synchronous cluster call and
// are never reported as the final state of a successful result.
type State int

// Resource states.
const (
	StateUnknown State = iota
	StateAbsent
	StateCreating
	StateUpdating
	StatePresent
	StateDeleting
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateCreating:
		return "creating"
	case StateUpdating:
		return "updating"
	case StatePresent:
		return "present"
	case StateDeleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// transitions lists the allowed moves out of each state.
var transitions = map[State][]State{
	StateUnknown:  {StateAbsent, StatePresent, StateCreating},
	StateAbsent:   {StateCreating},
	StateCreating: {StatePresent},
	StatePresent:  {StateUpdating, StateDeleting},
	StateUpdating: {StatePresent},
	StateDeleting: {StateAbsent},
}

// tracker follows one resource through its states and rejects illegal
// transitions, so a failure always names the stage it happened in.
type tracker struct {
	kind  ResourceKind
	name  string
	state State
}

func newTracker(kind ResourceKind, name string) *tracker {
	return &tracker{kind: kind, name: name, state: StateUnknown}
}

// to moves the resource to next. An illegal move leaves the state as it was.
func (t *tracker) to(next State) error {
	for _, allowed := range transitions[t.state] {
		if allowed == next {
			t.state = next
			return nil
		}
	}
	return fmt.Errorf("%s %s: illegal transition %s -> %s", t.kind, t.name, t.state, next)
}

// current returns the state the resource is in.
func (t *tracker) current() State {
	return t.state
}

// fail builds a Failed result for the current stage.
func (t *tracker) fail(reason string, err error) ReconcileResult {
	return Failed(t.kind, t.name, t.state, reason, err)
}
