package mdp

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

type Probability float64

var ErrBadDistribution = errors.New("probabilities do not sum to 1")

// Weighted is one outcome of a distribution with its probability mass.
type Weighted[T comparable] struct {
	Value T
	P     Probability
}

// DiscretePdf keeps outcomes in insertion order so that sampling with a
// seeded source is reproducible.
type DiscretePdf[T comparable] struct {
	Outcomes []Weighted[T]
}

func (p *DiscretePdf[T]) Add(outcome T, prob Probability) {
	for i := range p.Outcomes {
		if p.Outcomes[i].Value == outcome {
			p.Outcomes[i].P += prob
			return
		}
	}
	p.Outcomes = append(p.Outcomes, Weighted[T]{Value: outcome, P: prob})
}

func (p DiscretePdf[T]) Prob(outcome T) Probability {
	for _, o := range p.Outcomes {
		if o.Value == outcome {
			return o.P
		}
	}
	return 0
}

func (p DiscretePdf[T]) Check() error {
	sum := 0.0
	for _, o := range p.Outcomes {
		if o.P < 0 {
			return fmt.Errorf("negative probability %v for %v: %w", o.P, o.Value, ErrBadDistribution)
		}
		sum += float64(o.P)
	}
	if math.Abs(sum-1) > .001 {
		return fmt.Errorf("sum is %.4f: %w", sum, ErrBadDistribution)
	}
	return nil
}

func (p DiscretePdf[T]) Choose(rng *rand.Rand) T {
	v := rng.Float64()
	cumulative := 0.0
	var last T
	for _, o := range p.Outcomes {
		if o.P == 0 {
			continue
		}
		cumulative += float64(o.P)
		if v < cumulative {
			return o.Value
		}
		last = o.Value
	}
	return last
}
