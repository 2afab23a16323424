package mdp

import (
	"fmt"
	"math/rand"
)

// Policy maps every state to the action the agent commits to.
type Policy[S, A comparable] map[S]A

// Explorer picks the behavior action while learning.
type Explorer[S, A comparable] interface {
	Name() string
	Act(q *QTable[S, A], env Environment[S, A], s S) (A, error)
}

// Uniform walks randomly using the environment's own sampler.
type Uniform[S, A comparable] struct{}

func (Uniform[S, A]) Name() string { return "uniform" }

func (Uniform[S, A]) Act(_ *QTable[S, A], env Environment[S, A], _ S) (A, error) {
	return env.SampleAction(), nil
}

type Greedy[S, A comparable] struct{}

func (Greedy[S, A]) Name() string { return "greedy" }

func (Greedy[S, A]) Act(q *QTable[S, A], _ Environment[S, A], s S) (A, error) {
	a, _, err := q.Argmax(s)
	return a, err
}

type EpsilonGreedy[S, A comparable] struct {
	Epsilon float64
	Rand    *rand.Rand
}

func (p EpsilonGreedy[S, A]) Name() string {
	return fmt.Sprintf("e-greedy-%.2f", p.Epsilon)
}

// Validate reports parameters Act cannot work with.
func (p EpsilonGreedy[S, A]) Validate() error {
	if p.Epsilon < 0 || p.Epsilon > 1 {
		return fmt.Errorf("epsilon %v outside [0, 1]: %w", p.Epsilon, ErrInvalidParameter)
	}
	if p.Rand == nil {
		return fmt.Errorf("epsilon-greedy needs a random source: %w", ErrInvalidParameter)
	}
	return nil
}

func (p EpsilonGreedy[S, A]) Act(q *QTable[S, A], _ Environment[S, A], s S) (A, error) {
	best, _, err := q.Argmax(s)
	if err != nil {
		return best, err
	}
	actions := q.Actions()
	pdf := DiscretePdf[A]{}
	for _, a := range actions {
		if a == best {
			pdf.Add(a, Probability(1.0-p.Epsilon+p.Epsilon/float64(len(actions))))
		} else {
			pdf.Add(a, Probability(p.Epsilon/float64(len(actions))))
		}
	}
	return pdf.Choose(p.Rand), nil
}
