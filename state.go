package grove

import (
	"fmt"
	"slices"
)

// State event names fired on the owning object.
const (
	EventEnterState = "enterState"
	EventLeaveState = "leaveState"
)

// State is a finite state machine component. Per-state callbacks are
// registered with OnEnter, OnUpdate and OnEnd; the object also fires
// enterState and leaveState so tag-scoped listeners can follow transitions.
type State struct {
	Current string

	allowed []string
	trans   map[string][]string
	events  Registry
	obj     *Object
}

// NewState returns a state machine starting in initial. When allowed is not
// empty, Enter panics for any state outside it.
func NewState(initial string, allowed ...string) *State {
	return &State{Current: initial, allowed: allowed}
}

// ID implements Component.
func (s *State) ID() string { return CompState }

// Add implements Adder; the initial state is entered when the object goes live.
func (s *State) Add(o *Object) {
	s.obj = o
	s.events.Trigger("enter:"+s.Current)
}

// Update implements Updater.
func (s *State) Update(*Object) {
	s.events.Trigger("update:" + s.Current)
}

// Destroy implements Destroyer.
func (s *State) Destroy(*Object) { s.events.Clear() }

// Transitions restricts which states can be entered from from.
func (s *State) Transitions(from string, to ...string) {
	if s.trans == nil {
		s.trans = make(map[string][]string)
	}
	s.trans[from] = append(s.trans[from], to...)
}

// Enter switches to state, running end callbacks of the current state and
// enter callbacks of the new one with args.
func (s *State) Enter(state string, args ...any) {
	if len(s.allowed) > 0 && !slices.Contains(s.allowed, state) {
		panic(fmt.Errorf("grove: state %q is not allowed", state))
	}
	if to, ok := s.trans[s.Current]; ok && !slices.Contains(to, state) {
		panic(fmt.Errorf("grove: transition %q -> %q is not allowed", s.Current, state))
	}
	prev := s.Current
	s.Current = state
	s.events.Trigger("end:"+prev, args...)
	if s.obj != nil {
		s.obj.Trigger(EventLeaveState, prev)
	}
	s.events.Trigger("enter:"+state, args...)
	if s.obj != nil {
		s.obj.Trigger(EventEnterState, state)
	}
}

// Is reports whether the machine is in state.
func (s *State) Is(state string) bool { return s.Current == state }

// OnEnter registers fn for entering state.
func (s *State) OnEnter(state string, fn Handler) *EventController {
	return s.events.On("enter:"+state, fn)
}

// OnUpdate registers fn for every update while in state.
func (s *State) OnUpdate(state string, fn func()) *EventController {
	return s.events.On("update:"+state, func(...any) { fn() })
}

// OnEnd registers fn for leaving state.
func (s *State) OnEnd(state string, fn Handler) *EventController {
	return s.events.On("end:"+state, fn)
}

// Inspect implements Inspector.
func (s *State) Inspect() string { return "state: " + s.Current }
