package maze

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/gridplan/mdp"
)

var _ mdp.Environment[State, Action] = (*RLProblem)(nil)

func newRL(t *testing.T, grid string, probs ActionProbs) *RLProblem {
	t.Helper()
	m, err := ParseMap(grid)
	require.NoError(t, err)
	p, err := NewRLProblem(m, probs, DefaultRewards, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	return p
}

func TestNewRLProblemRejectsBadProbabilities(t *testing.T) {
	m, err := ParseMap("SG")
	require.NoError(t, err)
	_, err = NewRLProblem(m, ActionProbs{Forward: 0.5}, DefaultRewards, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, mdp.ErrBadDistribution)
}

func TestRLProblemSpaces(t *testing.T) {
	p := newRL(t, "S.G\n.#D", Deterministic)
	assert.Len(t, p.States(), 5)
	assert.Equal(t, []Action{Up, Right, Down, Left}, p.ActionSpace())
}

func TestRLProblemEpisode(t *testing.T) {
	p := newRL(t, "S.G", Deterministic)

	_, err := p.Step(Right)
	assert.ErrorIs(t, err, ErrEpisodeOver, "step before reset")

	assert.Equal(t, State{R: 0, C: 0}, p.Reset())

	res, err := p.Step(Right)
	require.NoError(t, err)
	assert.Equal(t, mdp.StepResult[State]{Next: State{R: 0, C: 1}, Reward: -0.04}, res)

	res, err = p.Step(Up)
	require.NoError(t, err)
	assert.Equal(t, State{R: 0, C: 1}, res.Next, "blocked moves stay in place")

	res, err = p.Step(Right)
	require.NoError(t, err)
	assert.Equal(t, State{R: 0, C: 2}, res.Next)
	assert.False(t, res.Terminated)

	res, err = p.Step(Left)
	require.NoError(t, err)
	assert.True(t, res.Terminated)
	assert.Equal(t, mdp.Reward(1), res.Reward)
	assert.Equal(t, State{}, res.Next)

	_, err = p.Step(Left)
	assert.ErrorIs(t, err, ErrEpisodeOver)

	_, err = p.Step(Action(7))
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestRLProblemDangerEndsEpisode(t *testing.T) {
	p := newRL(t, "SD", Deterministic)
	p.Reset()
	_, err := p.Step(Right)
	require.NoError(t, err)
	res, err := p.Step(Right)
	require.NoError(t, err)
	assert.True(t, res.Terminated)
	assert.Equal(t, mdp.Reward(-1), res.Reward)
}

func TestRLProblemTransition(t *testing.T) {
	p := newRL(t, "...\n.S.\n...", ActionProbs{Forward: 0.8, Left: 0.1, Right: 0.1})
	pdf := p.Transition(State{R: 1, C: 1}, Up)

	assert.NoError(t, pdf.Check())
	assert.Equal(t, mdp.Probability(0.8), pdf.Prob(State{R: 0, C: 1}))
	assert.Equal(t, mdp.Probability(0.1), pdf.Prob(State{R: 1, C: 0}))
	assert.Equal(t, mdp.Probability(0.1), pdf.Prob(State{R: 1, C: 2}))
	assert.Equal(t, mdp.Probability(0), pdf.Prob(State{R: 2, C: 1}))

	corner := p.Transition(State{R: 0, C: 0}, Up)
	assert.InDelta(t, 0.9, float64(corner.Prob(State{R: 0, C: 0})), 1e-9)
	assert.InDelta(t, 0.1, float64(corner.Prob(State{R: 0, C: 1})), 1e-9)
}

func TestRLProblemSampleAction(t *testing.T) {
	p := newRL(t, "SG", Deterministic)
	seen := map[Action]bool{}
	for i := 0; i < 100; i++ {
		seen[p.SampleAction()] = true
	}
	assert.Len(t, seen, 4)
}
