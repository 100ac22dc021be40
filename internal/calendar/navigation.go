package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Action is a navigation transition.
type Action string

const (
	ActionPrevious Action = "previous"
	ActionNext     Action = "next"
	ActionToday    Action = "today"
	ActionSetView  Action = "set_view"
)

// ErrUnknownAction is returned by Step for unsupported actions.
var ErrUnknownAction = errors.New("unknown navigation action")

// State is the visible view and its anchor date.
type State struct {
	View   View      `json:"view"`
	Anchor time.Time `json:"anchor"`
}

// Range is the fetch window for the state.
func (s State) Range() Range { return ResolveRange(s.View, s.Anchor) }

// Shift moves the anchor by dir steps of the view's granularity. The
// agenda has no directional navigation and is returned unchanged.
func (s State) Shift(dir int) State {
	switch s.View {
	case ViewMonth:
		s.Anchor = addMonths(s.Anchor, dir)
	case ViewWeek:
		s.Anchor = s.Anchor.AddDate(0, 0, 7*dir)
	case ViewDay:
		s.Anchor = s.Anchor.AddDate(0, 0, dir)
	}
	return s
}

// Step applies a single transition. target is used by ActionSetView only.
func Step(s State, action Action, target View, now time.Time) (State, error) {
	switch action {
	case ActionPrevious:
		return s.Shift(-1), nil
	case ActionNext:
		return s.Shift(1), nil
	case ActionToday:
		loc := s.Anchor.Location()
		s.Anchor = now.In(loc)
		return s, nil
	case ActionSetView:
		v, err := ParseView(string(target))
		if err != nil {
			return s, err
		}
		s.View = v
		return s, nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Navigator holds the current State and applies transitions to it. It is
// not safe for concurrent use.
type Navigator struct {
	state State
	now   func() time.Time
}

// NewNavigator starts at view and anchor. A nil now uses time.Now.
func NewNavigator(view View, anchor time.Time, now func() time.Time) *Navigator {
	if now == nil {
		now = time.Now
	}
	return &Navigator{state: State{View: view, Anchor: anchor}, now: now}
}

func (n *Navigator) State() State { return n.state }

func (n *Navigator) Previous() { n.state = n.state.Shift(-1) }

func (n *Navigator) Next() { n.state = n.state.Shift(1) }

// Today moves the anchor to the current instant, keeping the view.
func (n *Navigator) Today() {
	n.state, _ = Step(n.state, ActionToday, "", n.now())
}

// SetView switches view and keeps the anchor.
func (n *Navigator) SetView(v View) {
	n.state.View = v
}
