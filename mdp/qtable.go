package mdp

import (
	"fmt"
	"math"
)

// QTable is a state-action value estimator materialized over the full
// declared spaces. Pairs are never added or removed after construction.
type QTable[S, A comparable] struct {
	states  []S
	actions []A
	values  map[S]map[A]float64
}

func NewQTable[S, A comparable](states []S, actions []A) *QTable[S, A] {
	q := &QTable[S, A]{
		states:  append([]S(nil), states...),
		actions: append([]A(nil), actions...),
		values:  make(map[S]map[A]float64, len(states)),
	}
	for _, s := range q.states {
		q.values[s] = make(map[A]float64, len(q.actions))
		for _, a := range q.actions {
			q.values[s][a] = 0.0
		}
	}
	return q
}

func (q *QTable[S, A]) States() []S  { return q.states }
func (q *QTable[S, A]) Actions() []A { return q.actions }

// Len is the number of state-action entries.
func (q *QTable[S, A]) Len() int {
	n := 0
	for _, av := range q.values {
		n += len(av)
	}
	return n
}

func (q *QTable[S, A]) Get(s S, a A) (float64, error) {
	v, ok := q.values[s][a]
	if !ok {
		return 0, fmt.Errorf("get Q(%v, %v): %w", s, a, ErrUnknownPair)
	}
	return v, nil
}

func (q *QTable[S, A]) Set(s S, a A, v float64) error {
	av, ok := q.values[s]
	if !ok {
		return fmt.Errorf("set Q(%v, %v): %w", s, a, ErrUnknownPair)
	}
	if _, ok := av[a]; !ok {
		return fmt.Errorf("set Q(%v, %v): %w", s, a, ErrUnknownPair)
	}
	av[a] = v
	return nil
}

// Argmax returns the best action for s. Ties go to the earliest action in
// declared order.
func (q *QTable[S, A]) Argmax(s S) (A, float64, error) {
	var bestA A
	av, ok := q.values[s]
	if !ok || len(q.actions) == 0 {
		return bestA, 0, fmt.Errorf("argmax over %v: %w", s, ErrUnknownPair)
	}
	bestV := math.Inf(-1)
	for _, a := range q.actions {
		if v := av[a]; v > bestV {
			bestV = v
			bestA = a
		}
	}
	return bestA, bestV, nil
}

func (q *QTable[S, A]) Max(s S) (float64, error) {
	_, v, err := q.Argmax(s)
	return v, err
}

// Values is the state-value view V(s) = max_a Q(s, a).
func (q *QTable[S, A]) Values() map[S]float64 {
	out := make(map[S]float64, len(q.states))
	for _, s := range q.states {
		_, v, err := q.Argmax(s)
		if err == nil {
			out[s] = v
		}
	}
	return out
}

// Snapshot copies the table, mostly for renderers.
func (q *QTable[S, A]) Snapshot() map[S]map[A]float64 {
	out := make(map[S]map[A]float64, len(q.values))
	for s, av := range q.values {
		out[s] = make(map[A]float64, len(av))
		for a, v := range av {
			out[s][a] = v
		}
	}
	return out
}
