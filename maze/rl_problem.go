package maze

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/CodeStranger-Fred/gridplan/mdp"
)

var ErrEpisodeOver = errors.New("no running episode, call Reset")

// ActionProbs is the chance that a chosen direction is executed as is,
// turned left, turned right or reversed.
type ActionProbs struct {
	Forward  float64 `yaml:"forward"`
	Left     float64 `yaml:"left"`
	Right    float64 `yaml:"right"`
	Backward float64 `yaml:"backward"`
}

var Deterministic = ActionProbs{Forward: 1}

type Rewards struct {
	Step   float64 `yaml:"step_reward"`
	Goal   float64 `yaml:"goal_reward"`
	Danger float64 `yaml:"danger_reward"`
}

var DefaultRewards = Rewards{Step: -0.04, Goal: 1, Danger: -1}

// RLProblem is an episodic MDP over a map. The reward is paid for the
// state an action is taken in; acting in a goal or danger cell ends the
// episode.
type RLProblem struct {
	m       *Map
	probs   ActionProbs
	rewards Rewards
	rng     *rand.Rand

	current State
	running bool
}

func NewRLProblem(m *Map, probs ActionProbs, rewards Rewards, rng *rand.Rand) (*RLProblem, error) {
	pdf := slipPdf(Up, probs)
	if err := pdf.Check(); err != nil {
		return nil, fmt.Errorf("action probabilities: %w", err)
	}
	return &RLProblem{m: m, probs: probs, rewards: rewards, rng: rng}, nil
}

func (p *RLProblem) Map() *Map { return p.m }

func (p *RLProblem) States() []State { return p.m.States() }

func (p *RLProblem) ActionSpace() []Action {
	return append([]Action(nil), Actions...)
}

func (p *RLProblem) Reset() State {
	p.current = p.m.Start()
	p.running = true
	return p.current
}

func (p *RLProblem) SampleAction() Action {
	return Actions[p.rng.Intn(len(Actions))]
}

func (p *RLProblem) Reward(s State) mdp.Reward {
	switch {
	case p.m.IsGoal(s):
		return mdp.Reward(p.rewards.Goal)
	case p.m.IsDanger(s):
		return mdp.Reward(p.rewards.Danger)
	}
	return mdp.Reward(p.rewards.Step)
}

// Transition is the distribution over successor cells for acting in s.
// Moves into walls or off the map leave the agent in place.
func (p *RLProblem) Transition(s State, a Action) mdp.DiscretePdf[State] {
	out := mdp.DiscretePdf[State]{}
	for _, o := range slipPdf(a, p.probs).Outcomes {
		next := s.Shift(o.Value)
		if !p.m.IsFree(next) {
			next = s
		}
		out.Add(next, o.P)
	}
	return out
}

func (p *RLProblem) Step(a Action) (mdp.StepResult[State], error) {
	if !a.Valid() {
		return mdp.StepResult[State]{}, fmt.Errorf("%v: %w", a, ErrInvalidAction)
	}
	if !p.running {
		return mdp.StepResult[State]{}, ErrEpisodeOver
	}
	reward := p.Reward(p.current)
	if p.m.IsTerminal(p.current) {
		p.running = false
		return mdp.StepResult[State]{Reward: reward, Terminated: true}, nil
	}
	p.current = p.Transition(p.current, a).Choose(p.rng)
	return mdp.StepResult[State]{Next: p.current, Reward: reward}, nil
}

func slipPdf(a Action, probs ActionProbs) mdp.DiscretePdf[Action] {
	pdf := mdp.DiscretePdf[Action]{}
	pdf.Add(a, mdp.Probability(probs.Forward))
	pdf.Add(a.TurnLeft(), mdp.Probability(probs.Left))
	pdf.Add(a.TurnRight(), mdp.Probability(probs.Right))
	pdf.Add(a.Reverse(), mdp.Probability(probs.Backward))
	return pdf
}
