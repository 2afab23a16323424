package mdp

type Transition[S, A comparable] struct {
	State0 S
	Action A
	State1 S
	Reward Reward
}

type Outcome int

const (
	// OutcomeTerminal means the environment signalled the end of the episode.
	OutcomeTerminal Outcome = iota
	// OutcomeTimeout means the step budget ran out first.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTerminal:
		return "terminal"
	case OutcomeTimeout:
		return "timeout"
	}
	return "unknown"
}

type Episode[S, A comparable] struct {
	Index       int
	Outcome     Outcome
	Steps       int
	TotalReward Reward
	Path        []S
	History     []Transition[S, A]
}

func (e *Episode[S, A]) Step(state0 S, action A, state1 S, reward Reward, terminated bool) {
	e.History = append(e.History, Transition[S, A]{
		State0: state0,
		Action: action,
		State1: state1,
		Reward: reward,
	})
	e.Steps++
	e.TotalReward += reward
	if !terminated {
		e.Path = append(e.Path, state1)
	}
}

type StepEvent[S, A comparable] struct {
	Episode    int
	T          int
	State      S
	Action     A
	Next       S
	Reward     Reward
	Terminated bool
	OldQ       float64
	Target     float64
	NewQ       float64
}

// Observer receives progress from the learner. It is informational only:
// it cannot fail the run.
type Observer[S, A comparable] interface {
	ObserveStep(q *QTable[S, A], ev StepEvent[S, A])
	ObserveEpisode(q *QTable[S, A], ep Episode[S, A])
}

type observers[S, A comparable] []Observer[S, A]

func (os observers[S, A]) ObserveStep(q *QTable[S, A], ev StepEvent[S, A]) {
	for _, o := range os {
		o.ObserveStep(q, ev)
	}
}

func (os observers[S, A]) ObserveEpisode(q *QTable[S, A], ep Episode[S, A]) {
	for _, o := range os {
		o.ObserveEpisode(q, ep)
	}
}
