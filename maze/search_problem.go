package maze

import "fmt"

// SearchProblem exposes a map as a deterministic transition graph with
// 4-connected moves.
type SearchProblem struct {
	m     *Map
	order []Action
}

func NewSearchProblem(m *Map) *SearchProblem {
	return &SearchProblem{m: m, order: append([]Action(nil), Actions...)}
}

// SetActionOrder changes the order in which moves are tried. Breadth-first
// search keeps the first path it discovers, so the order decides between
// equally short paths. Omitted actions are never taken.
func (p *SearchProblem) SetActionOrder(order []Action) error {
	if len(order) == 0 {
		return fmt.Errorf("empty action order: %w", ErrInvalidAction)
	}
	seen := make(map[Action]bool, len(order))
	for _, a := range order {
		if !a.Valid() {
			return fmt.Errorf("%v: %w", a, ErrInvalidAction)
		}
		if seen[a] {
			return fmt.Errorf("%v listed twice: %w", a, ErrInvalidAction)
		}
		seen[a] = true
	}
	p.order = append([]Action(nil), order...)
	return nil
}

func (p *SearchProblem) Map() *Map { return p.m }

func (p *SearchProblem) Start() State { return p.m.Start() }

func (p *SearchProblem) IsGoal(s State) bool { return p.m.IsGoal(s) }

// Actions lists the moves from s that land on a free cell.
func (p *SearchProblem) Actions(s State) []Action {
	if !p.m.IsFree(s) {
		return nil
	}
	var out []Action
	for _, a := range p.order {
		if p.m.IsFree(s.Shift(a)) {
			out = append(out, a)
		}
	}
	return out
}

func (p *SearchProblem) Transition(s State, a Action) (State, float64, error) {
	if !a.Valid() {
		return s, 0, fmt.Errorf("%v: %w", a, ErrInvalidAction)
	}
	if !p.m.IsFree(s) {
		return s, 0, fmt.Errorf("from %v: %w", s, ErrInvalidState)
	}
	next := s.Shift(a)
	if !p.m.IsFree(next) {
		return s, 0, fmt.Errorf("%v from %v is blocked: %w", a, s, ErrInvalidAction)
	}
	return next, p.m.EntryCost(next), nil
}

// Manhattan is an admissible heuristic for A* on unit-cost maps: the
// distance to the nearest goal.
func (p *SearchProblem) Manhattan(s State) float64 {
	best := -1
	for _, g := range p.m.Goals() {
		d := abs(g.R-s.R) + abs(g.C-s.C)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0
	}
	return float64(best)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
