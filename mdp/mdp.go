package mdp

import "errors"

type Reward float64

// StepResult is what an environment reports after one action. Next is the
// zero value of S when Terminated is set.
type StepResult[S comparable] struct {
	Next       S
	Reward     Reward
	Terminated bool
}

// Environment is the episodic MDP the learner interacts with.
type Environment[S, A comparable] interface {
	States() []S
	ActionSpace() []A
	Reset() S
	SampleAction() A
	Step(A) (StepResult[S], error)
}

var (
	ErrUnknownPair      = errors.New("state-action pair not in q-table")
	ErrInvalidParameter = errors.New("invalid learner parameter")
	ErrEmptySpace       = errors.New("environment declares no states or actions")
)
