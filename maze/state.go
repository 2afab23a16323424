package maze

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidState  = errors.New("invalid state")
)

type State struct {
	R, C int
}

func (s State) String() string {
	return fmt.Sprintf("(%d, %d)", s.R, s.C)
}

type Action int

const (
	Up Action = iota
	Right
	Down
	Left
)

// Actions is the declared action space in its canonical order.
var Actions = []Action{Up, Right, Down, Left}

func (a Action) Valid() bool { return a >= Up && a <= Left }

func (a Action) String() string {
	switch a {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Arrow is the glyph renderers use for the action.
func (a Action) Arrow() string {
	switch a {
	case Up:
		return "↑"
	case Right:
		return "→"
	case Down:
		return "↓"
	case Left:
		return "←"
	}
	return "?"
}

func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if strings.EqualFold(a.String(), name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidAction)
}

// TurnRight rotates clockwise by a quarter.
func (a Action) TurnRight() Action { return (a + 1) % 4 }

// TurnLeft rotates counterclockwise by a quarter.
func (a Action) TurnLeft() Action { return (a + 3) % 4 }

func (a Action) Reverse() Action { return (a + 2) % 4 }

// Shift moves s one cell in the direction of a, ignoring walls and bounds.
func (s State) Shift(a Action) State {
	switch a {
	case Up:
		return State{R: s.R - 1, C: s.C}
	case Down:
		return State{R: s.R + 1, C: s.C}
	case Right:
		return State{R: s.R, C: s.C + 1}
	case Left:
		return State{R: s.R, C: s.C - 1}
	}
	return s
}
