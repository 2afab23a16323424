package search_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/gridplan/maze"
	"github.com/CodeStranger-Fred/gridplan/search"
)

var _ search.Environment[maze.State, maze.Action] = (*maze.SearchProblem)(nil)

func newAgent(t *testing.T, grid string, opts ...search.Option[maze.State, maze.Action]) (*search.Agent[maze.State, maze.Action], *maze.SearchProblem) {
	t.Helper()
	m, err := maze.ParseMap(grid)
	require.NoError(t, err)
	p := maze.NewSearchProblem(m)
	return search.NewAgent[maze.State, maze.Action](p, opts...), p
}

// requireContiguous checks that every consecutive pair is linked by some
// action of the environment.
func requireContiguous(t *testing.T, p *maze.SearchProblem, path []maze.State) {
	t.Helper()
	for i := 0; i+1 < len(path); i++ {
		linked := false
		for _, a := range p.Actions(path[i]) {
			next, _, err := p.Transition(path[i], a)
			require.NoError(t, err)
			if next == path[i+1] {
				linked = true
				break
			}
		}
		require.True(t, linked, "no action from %v to %v", path[i], path[i+1])
	}
}

func TestFindPath(t *testing.T) {
	tests := []struct {
		name   string
		grid   string
		length int
	}{
		{"open 3x3", "S..\n...\n..G", 5},
		{"corridor", "S..G", 4},
		{"down corridor", "S\n.\n.\nG", 4},
		{"detour", `
			S#...
			.#.#.
			...#G`, 11},
		{"indented rows", `
			.S...
			.###.
			...#G`, 6},
		{"nearest of two goals", "G.S...G", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent, p := newAgent(t, tt.grid)
			path, err := agent.FindPath()
			require.NoError(t, err)
			assert.Len(t, path, tt.length)
			assert.Equal(t, p.Start(), path[0])
			assert.True(t, p.IsGoal(path[len(path)-1]))
			requireContiguous(t, p, path)
		})
	}
}

func TestFindPathExample3x3(t *testing.T) {
	agent, _ := newAgent(t, "S..\n...\n..G")
	path, err := agent.FindPath()
	require.NoError(t, err)

	want := []maze.State{{R: 0, C: 0}, {R: 0, C: 1}, {R: 0, C: 2}, {R: 1, C: 2}, {R: 2, C: 2}}
	if diff := cmp.Diff(want, path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestFindPathUnreachable(t *testing.T) {
	agent, _ := newAgent(t, "S##\n#.#\n##G")
	path, err := agent.FindPath()
	assert.Nil(t, path)
	assert.True(t, errors.Is(err, search.ErrNoPath))

	res, err := agent.Search()
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Len(t, res.Predecessors, 1, "only the start is reachable")
}

func TestSearchVisitsEachReachableStateOnce(t *testing.T) {
	agent, _ := newAgent(t, `
		S..#.
		.#.#G
		...##`)
	res, err := agent.Search()
	require.NoError(t, err)
	assert.False(t, res.Found)
	// Eight free cells are reachable; the goal column is walled off.
	assert.Len(t, res.Predecessors, 8)
	assert.Len(t, res.Costs, 8)
	assert.Equal(t, 8, res.Expanded)
}

func TestSearchRecordsCosts(t *testing.T) {
	agent, _ := newAgent(t, "S..\n...\n..G")
	res, err := agent.Search()
	require.NoError(t, err)
	require.True(t, res.Found)

	assert.Equal(t, maze.State{R: 2, C: 2}, res.Goal)
	assert.Equal(t, 4.0, res.Cost)
	assert.Equal(t, 0.0, res.Costs[maze.State{R: 0, C: 0}])
	assert.Equal(t, 2.0, res.Costs[maze.State{R: 1, C: 1}])
}

type recorder struct {
	expanded []maze.State
	paths    [][]maze.State
}

func (r *recorder) ObserveExpand(ev search.ExpandEvent[maze.State]) {
	r.expanded = append(r.expanded, ev.Current)
}

func (r *recorder) ObservePath(path []maze.State) {
	r.paths = append(r.paths, path)
}

func TestObserverDoesNotChangeResult(t *testing.T) {
	plain, _ := newAgent(t, "S..\n.#.\n..G")
	want, err := plain.FindPath()
	require.NoError(t, err)

	rec := &recorder{}
	observed, _ := newAgent(t, "S..\n.#.\n..G", search.WithObserver[maze.State, maze.Action](rec))
	got, err := observed.FindPath()
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, maze.State{R: 0, C: 0}, rec.expanded[0])
	require.Len(t, rec.paths, 1)
	assert.Equal(t, want, rec.paths[0])
}

func TestUniformCostPrefersCheapCells(t *testing.T) {
	grid := `
		S9G
		...`
	bfs, _ := newAgent(t, grid)
	res, err := bfs.Search()
	require.NoError(t, err)
	assert.Len(t, res.Path, 3)
	assert.Equal(t, 10.0, res.Cost)

	m, err := maze.ParseMap(grid)
	require.NoError(t, err)
	p := maze.NewSearchProblem(m)
	agents := map[string]*search.Agent[maze.State, maze.Action]{
		"ucs":   search.NewAgent[maze.State, maze.Action](p, search.WithStrategy[maze.State, maze.Action](search.UniformCost)),
		"astar": search.NewAgent[maze.State, maze.Action](p, search.WithHeuristic[maze.State, maze.Action](p.Manhattan)),
	}
	for name, agent := range agents {
		t.Run(name, func(t *testing.T) {
			res, err := agent.Search()
			require.NoError(t, err)
			require.True(t, res.Found)
			assert.Len(t, res.Path, 5)
			assert.Equal(t, 4.0, res.Cost)
			requireContiguous(t, p, res.Path)
		})
	}
}

func TestUniformCostUnreachable(t *testing.T) {
	agent, _ := newAgent(t, "S##\n#.#\n##G", search.WithStrategy[maze.State, maze.Action](search.UniformCost))
	_, err := agent.FindPath()
	assert.ErrorIs(t, err, search.ErrNoPath)
}

func TestParseStrategy(t *testing.T) {
	s, err := search.ParseStrategy("ucs")
	require.NoError(t, err)
	assert.Equal(t, search.UniformCost, s)

	s, err = search.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, search.BreadthFirst, s)

	_, err = search.ParseStrategy("dfs")
	assert.Error(t, err)
}

func TestActionOrderBreaksTiesBetweenShortestPaths(t *testing.T) {
	m, err := maze.ParseMap("S.\n.G")
	require.NoError(t, err)
	p := maze.NewSearchProblem(m)

	path, err := search.NewAgent[maze.State, maze.Action](p).FindPath()
	require.NoError(t, err)
	assert.Equal(t, []maze.State{{R: 0, C: 0}, {R: 0, C: 1}, {R: 1, C: 1}}, path)

	require.NoError(t, p.SetActionOrder([]maze.Action{maze.Down, maze.Right, maze.Up, maze.Left}))
	path, err = search.NewAgent[maze.State, maze.Action](p).FindPath()
	require.NoError(t, err)
	assert.Equal(t, []maze.State{{R: 0, C: 0}, {R: 1, C: 0}, {R: 1, C: 1}}, path)
}
