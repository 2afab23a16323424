package search

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoPath means the frontier emptied before any goal was dequeued. It is an
// ordinary outcome, not a failure of the environment.
var ErrNoPath = errors.New("no path to a goal state")

// Environment is a deterministic transition graph explored lazily.
type Environment[S, A comparable] interface {
	Start() S
	Actions(S) []A
	Transition(S, A) (S, float64, error)
	IsGoal(S) bool
}

type Strategy int

const (
	// BreadthFirst expands states in discovery order and keeps the first
	// cost seen for each state. Optimal only under uniform step costs.
	BreadthFirst Strategy = iota
	// UniformCost expands the cheapest known state first and relaxes
	// costs when a cheaper path turns up.
	UniformCost
)

func (s Strategy) String() string {
	if s == UniformCost {
		return "ucs"
	}
	return "bfs"
}

func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "bfs", "breadth-first":
		return BreadthFirst, nil
	case "ucs", "uniform-cost", "dijkstra":
		return UniformCost, nil
	}
	return BreadthFirst, fmt.Errorf("unknown search strategy %q", name)
}

type ExpandEvent[S comparable] struct {
	Current    S
	Discovered []S
	Costs      map[S]float64
}

// Observer receives progress from the agent. It has no way to fail the
// search.
type Observer[S comparable] interface {
	ObserveExpand(ev ExpandEvent[S])
	ObservePath(path []S)
}

type Result[S comparable] struct {
	Path         []S
	Goal         S
	Found        bool
	Cost         float64
	Costs        map[S]float64
	Predecessors map[S]S
	Expanded     int
}

type Option[S, A comparable] func(*Agent[S, A])

func WithStrategy[S, A comparable](s Strategy) Option[S, A] {
	return func(a *Agent[S, A]) { a.strategy = s }
}

// WithHeuristic orders the uniform-cost frontier by cost plus h, which makes
// it A*. The heuristic must not overestimate for the path to stay optimal.
func WithHeuristic[S, A comparable](h func(S) float64) Option[S, A] {
	return func(a *Agent[S, A]) {
		a.strategy = UniformCost
		a.heuristic = h
	}
}

func WithObserver[S, A comparable](o Observer[S]) Option[S, A] {
	return func(a *Agent[S, A]) { a.observers = append(a.observers, o) }
}

func WithLogger[S, A comparable](log *zap.Logger) Option[S, A] {
	return func(a *Agent[S, A]) { a.log = log }
}

type Agent[S, A comparable] struct {
	env       Environment[S, A]
	strategy  Strategy
	heuristic func(S) float64
	observers []Observer[S]
	log       *zap.Logger
}

func NewAgent[S, A comparable](env Environment[S, A], opts ...Option[S, A]) *Agent[S, A] {
	a := &Agent[S, A]{env: env, log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FindPath returns the states from the start to a goal, both included.
func (a *Agent[S, A]) FindPath() ([]S, error) {
	res, err := a.Search()
	if err != nil {
		return nil, err
	}
	if !res.Found {
		return nil, ErrNoPath
	}
	return res.Path, nil
}

// Search runs the configured strategy and reports everything it learned.
// An unreachable goal yields a Result with Found unset and a nil error.
func (a *Agent[S, A]) Search() (*Result[S], error) {
	var (
		res *Result[S]
		err error
	)
	switch a.strategy {
	case UniformCost:
		res, err = a.uniformCost()
	default:
		res, err = a.breadthFirst()
	}
	if err != nil {
		return nil, err
	}
	if res.Found {
		res.Path = backtrack(res.Predecessors, a.env.Start(), res.Goal)
		res.Cost = res.Costs[res.Goal]
		a.log.Info("goal reached",
			zap.Any("goal", res.Goal),
			zap.Int("length", len(res.Path)),
			zap.Float64("cost", res.Cost),
			zap.Int("expanded", res.Expanded))
	} else {
		a.log.Info("no path found",
			zap.Int("visited", len(res.Predecessors)),
			zap.Int("expanded", res.Expanded))
	}
	for _, o := range a.observers {
		o.ObservePath(res.Path)
	}
	return res, nil
}

func (a *Agent[S, A]) breadthFirst() (*Result[S], error) {
	start := a.env.Start()
	res := &Result[S]{
		Costs:        map[S]float64{start: 0},
		Predecessors: map[S]S{start: start},
	}
	queue := []S{start}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		res.Expanded++

		var discovered []S
		for _, action := range a.env.Actions(state) {
			next, cost, err := a.env.Transition(state, action)
			if err != nil {
				return nil, fmt.Errorf("transition from %v by %v: %w", state, action, err)
			}
			if _, seen := res.Predecessors[next]; seen {
				continue
			}
			res.Predecessors[next] = state
			res.Costs[next] = res.Costs[state] + cost
			queue = append(queue, next)
			discovered = append(discovered, next)
			a.log.Debug("discovered",
				zap.Any("from", state),
				zap.Any("to", next),
				zap.Float64("cost", res.Costs[next]))
		}
		a.notify(state, discovered, res.Costs)

		if a.env.IsGoal(state) {
			res.Goal = state
			res.Found = true
			return res, nil
		}
	}
	return res, nil
}

func (a *Agent[S, A]) uniformCost() (*Result[S], error) {
	start := a.env.Start()
	res := &Result[S]{
		Costs:        map[S]float64{start: 0},
		Predecessors: map[S]S{start: start},
	}
	frontier := newPriorityFrontier[S]()
	frontier.push(start, a.priority(start, 0))
	closed := map[S]bool{}

	for frontier.Len() > 0 {
		state := frontier.pop()
		if closed[state] {
			continue
		}
		closed[state] = true
		res.Expanded++

		if a.env.IsGoal(state) {
			a.notify(state, nil, res.Costs)
			res.Goal = state
			res.Found = true
			return res, nil
		}

		var discovered []S
		for _, action := range a.env.Actions(state) {
			next, cost, err := a.env.Transition(state, action)
			if err != nil {
				return nil, fmt.Errorf("transition from %v by %v: %w", state, action, err)
			}
			g := res.Costs[state] + cost
			if old, seen := res.Costs[next]; seen && g >= old {
				continue
			}
			if closed[next] {
				continue
			}
			res.Predecessors[next] = state
			res.Costs[next] = g
			frontier.push(next, a.priority(next, g))
			discovered = append(discovered, next)
		}
		a.notify(state, discovered, res.Costs)
	}
	return res, nil
}

func (a *Agent[S, A]) priority(s S, g float64) float64 {
	if a.heuristic == nil {
		return g
	}
	return g + a.heuristic(s)
}

func (a *Agent[S, A]) notify(current S, discovered []S, costs map[S]float64) {
	if len(a.observers) == 0 {
		return
	}
	ev := ExpandEvent[S]{Current: current, Discovered: discovered, Costs: costs}
	for _, o := range a.observers {
		o.ObserveExpand(ev)
	}
}

// backtrack follows predecessors from goal to start and returns the states
// in start-to-goal order.
func backtrack[S comparable](pred map[S]S, start, goal S) []S {
	path := []S{goal}
	for s := goal; s != start; {
		s = pred[s]
		path = append(path, s)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
