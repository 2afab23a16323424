package mdp

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	DefaultGamma = 0.9
	DefaultAlpha = 0.1
	DefaultTMax  = 200
)

// Rule selects how the bootstrap value of the next state is computed.
type Rule int

const (
	// QLearning bootstraps from max_a Q(s', a).
	QLearning Rule = iota
	// SARSA bootstraps from Q(s', a') where a' is the next behavior action.
	SARSA
)

func (r Rule) String() string {
	if r == SARSA {
		return "sarsa"
	}
	return "q-learning"
}

type Option[S, A comparable] func(*Learner[S, A])

func WithGamma[S, A comparable](gamma float64) Option[S, A] {
	return func(l *Learner[S, A]) { l.gamma = gamma }
}

func WithAlpha[S, A comparable](alpha float64) Option[S, A] {
	return func(l *Learner[S, A]) { l.alpha = alpha }
}

func WithTMax[S, A comparable](tMax int) Option[S, A] {
	return func(l *Learner[S, A]) { l.tMax = tMax }
}

func WithExplorer[S, A comparable](e Explorer[S, A]) Option[S, A] {
	return func(l *Learner[S, A]) { l.explorer = e }
}

func WithRule[S, A comparable](r Rule) Option[S, A] {
	return func(l *Learner[S, A]) { l.rule = r }
}

func WithObserver[S, A comparable](o Observer[S, A]) Option[S, A] {
	return func(l *Learner[S, A]) { l.observers = append(l.observers, o) }
}

func WithLogger[S, A comparable](log *zap.Logger) Option[S, A] {
	return func(l *Learner[S, A]) { l.log = log }
}

// Learner runs tabular temporal-difference control against an environment.
// It owns its q-table and is not safe for concurrent use.
type Learner[S, A comparable] struct {
	env       Environment[S, A]
	q         *QTable[S, A]
	gamma     float64
	alpha     float64
	tMax      int
	rule      Rule
	explorer  Explorer[S, A]
	observers observers[S, A]
	log       *zap.Logger
	episodes  int
}

func NewLearner[S, A comparable](env Environment[S, A], opts ...Option[S, A]) (*Learner[S, A], error) {
	l := &Learner[S, A]{
		env:      env,
		gamma:    DefaultGamma,
		alpha:    DefaultAlpha,
		tMax:     DefaultTMax,
		explorer: Uniform[S, A]{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.gamma <= 0 || l.gamma > 1 {
		return nil, fmt.Errorf("gamma %v outside (0, 1]: %w", l.gamma, ErrInvalidParameter)
	}
	if l.alpha <= 0 || l.alpha > 1 {
		return nil, fmt.Errorf("alpha %v outside (0, 1]: %w", l.alpha, ErrInvalidParameter)
	}
	if l.tMax < 1 {
		return nil, fmt.Errorf("step budget %d below 1: %w", l.tMax, ErrInvalidParameter)
	}
	if v, ok := l.explorer.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("explorer %s: %w", l.explorer.Name(), err)
		}
	}
	states, actions := env.States(), env.ActionSpace()
	if len(states) == 0 || len(actions) == 0 {
		return nil, ErrEmptySpace
	}
	l.q = NewQTable(states, actions)
	return l, nil
}

func (l *Learner[S, A]) QTable() *QTable[S, A] { return l.q }

func (l *Learner[S, A]) Values() map[S]float64 { return l.q.Values() }

// TDTarget is the temporal-difference target. A terminal transition has no
// continuation value.
func TDTarget(reward, gamma, next float64, terminated bool) float64 {
	if terminated {
		return reward
	}
	return reward + gamma*next
}

// RunEpisode plays one episode from a fresh reset, updating the q-table
// after every step. Hitting the step budget is not an error; it is reported
// through the episode outcome.
func (l *Learner[S, A]) RunEpisode() (Episode[S, A], error) {
	l.episodes++
	ep := Episode[S, A]{Index: l.episodes, Outcome: OutcomeTimeout}

	state := l.env.Reset()
	ep.Path = []S{state}

	var (
		action   A
		selected bool
	)
	for t := 1; t <= l.tMax; t++ {
		if !selected {
			a, err := l.explorer.Act(l.q, l.env, state)
			if err != nil {
				return ep, fmt.Errorf("episode %d step %d: select action: %w", ep.Index, t, err)
			}
			action = a
		}
		selected = false

		res, err := l.env.Step(action)
		if err != nil {
			return ep, fmt.Errorf("episode %d step %d: %w", ep.Index, t, err)
		}
		oldQ, err := l.q.Get(state, action)
		if err != nil {
			return ep, fmt.Errorf("episode %d step %d: %w", ep.Index, t, err)
		}

		var (
			nextAction A
			nextValue  float64
		)
		if !res.Terminated {
			if l.rule == SARSA {
				nextAction, err = l.explorer.Act(l.q, l.env, res.Next)
				if err != nil {
					return ep, fmt.Errorf("episode %d step %d: select action: %w", ep.Index, t, err)
				}
				selected = true
				nextValue, err = l.q.Get(res.Next, nextAction)
			} else {
				nextValue, err = l.q.Max(res.Next)
			}
			if err != nil {
				return ep, fmt.Errorf("episode %d step %d: %w", ep.Index, t, err)
			}
		}

		target := TDTarget(float64(res.Reward), l.gamma, nextValue, res.Terminated)
		newQ := oldQ + l.alpha*(target-oldQ)
		if err := l.q.Set(state, action, newQ); err != nil {
			return ep, fmt.Errorf("episode %d step %d: %w", ep.Index, t, err)
		}

		ep.Step(state, action, res.Next, res.Reward, res.Terminated)
		l.observers.ObserveStep(l.q, StepEvent[S, A]{
			Episode:    ep.Index,
			T:          t,
			State:      state,
			Action:     action,
			Next:       res.Next,
			Reward:     res.Reward,
			Terminated: res.Terminated,
			OldQ:       oldQ,
			Target:     target,
			NewQ:       newQ,
		})
		l.log.Debug("td update",
			zap.Int("episode", ep.Index),
			zap.Int("t", t),
			zap.Any("state", state),
			zap.Any("action", action),
			zap.Float64("reward", float64(res.Reward)),
			zap.Float64("old_q", oldQ),
			zap.Float64("new_q", newQ))

		if res.Terminated {
			ep.Outcome = OutcomeTerminal
			break
		}
		state = res.Next
		if selected {
			action = nextAction
		}
	}

	if ep.Outcome == OutcomeTimeout {
		l.log.Info("episode did not reach a terminal state",
			zap.Int("episode", ep.Index),
			zap.Int("t_max", l.tMax),
			zap.Float64("total_reward", float64(ep.TotalReward)))
	} else {
		l.log.Debug("episode finished in a terminal state",
			zap.Int("episode", ep.Index),
			zap.Int("steps", ep.Steps),
			zap.Float64("total_reward", float64(ep.TotalReward)))
	}
	l.observers.ObserveEpisode(l.q, ep)
	return ep, nil
}

// LearnPolicy runs the given number of episodes and returns the greedy
// policy of the resulting table.
func (l *Learner[S, A]) LearnPolicy(episodes int) (Policy[S, A], error) {
	if episodes < 0 {
		return nil, fmt.Errorf("episode count %d: %w", episodes, ErrInvalidParameter)
	}
	timeouts := 0
	for i := 0; i < episodes; i++ {
		ep, err := l.RunEpisode()
		if err != nil {
			return nil, err
		}
		if ep.Outcome == OutcomeTimeout {
			timeouts++
		}
	}
	l.log.Info("learning finished",
		zap.Int("episodes", episodes),
		zap.Int("timeouts", timeouts),
		zap.Stringer("rule", l.rule),
		zap.String("explorer", l.explorer.Name()))
	return l.ExtractPolicy(), nil
}

// ExtractPolicy picks the greedy action in every state. Ties resolve to the
// earliest declared action, so the result is reproducible.
func (l *Learner[S, A]) ExtractPolicy() Policy[S, A] {
	policy := make(Policy[S, A], len(l.q.States()))
	for _, s := range l.q.States() {
		if a, _, err := l.q.Argmax(s); err == nil {
			policy[s] = a
		}
	}
	return policy
}
