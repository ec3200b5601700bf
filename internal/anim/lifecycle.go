package anim

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of a mounted instance.
type State int

const (
	Uninitialized State = iota
	Initializing
	Running
	Suspended
	Disposed
)

var stateNames = [...]string{"uninitialized", "initializing", "running", "suspended", "disposed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrTransition is returned for transitions the lifecycle does not allow.
var ErrTransition = errors.New("invalid lifecycle transition")

var transitions = map[State][]State{
	Uninitialized: {Initializing},
	Initializing:  {Running},
	Running:       {Suspended, Disposed},
	Suspended:     {Running, Disposed},
}

// Lifecycle tracks Uninitialized -> Initializing -> Running <-> Suspended ->
// Disposed. Disposed is terminal.
type Lifecycle struct {
	state State
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return l.state
}

// Can reports whether moving to next is allowed.
func (l *Lifecycle) Can(next State) bool {
	for _, s := range transitions[l.state] {
		if s == next {
			return true
		}
	}
	return false
}

// To moves to next.
func (l *Lifecycle) To(next State) error {
	if !l.Can(next) {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, l.state, next)
	}
	l.state = next
	return nil
}
