package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/gridplan/maze"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	moves, err := cfg.Search.Actions()
	require.NoError(t, err)
	assert.Nil(t, moves, "default move order")

	m, err := cfg.LoadMap()
	require.NoError(t, err)
	assert.Equal(t, 3, m.Rows())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "gridplan.yaml", `
grid: |
  S.#
  ..G
search:
  strategy: astar
  moves: [down, Right, up, left]
learn:
  gamma: 0.5
  t_max: 40
  rule: sarsa
env:
  forward: 1
  left: 0
  right: 0
  goal_reward: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "astar", cfg.Search.Strategy)
	moves, err := cfg.Search.Actions()
	require.NoError(t, err)
	assert.Equal(t, []maze.Action{maze.Down, maze.Right, maze.Up, maze.Left}, moves)
	assert.Equal(t, 0.5, cfg.Learn.Gamma)
	assert.Equal(t, 40, cfg.Learn.TMax)
	assert.Equal(t, "sarsa", cfg.Learn.Rule)
	assert.Equal(t, 0.1, cfg.Learn.Alpha, "unset keys keep defaults")
	assert.Equal(t, 500, cfg.Learn.Episodes)
	assert.Equal(t, maze.Deterministic, cfg.Env.ActionProbs)
	assert.Equal(t, 10.0, float64(cfg.Env.Goal))
	assert.Equal(t, maze.DefaultRewards.Step, cfg.Env.Step)

	m, err := cfg.LoadMap()
	require.NoError(t, err)
	assert.Equal(t, 3, m.Cols())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "learn: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "invalid.yaml", "learn:\n  alpha: 3\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"gamma zero", func(c *Config) { c.Learn.Gamma = 0 }},
		{"gamma above one", func(c *Config) { c.Learn.Gamma = 1.5 }},
		{"alpha negative", func(c *Config) { c.Learn.Alpha = -0.1 }},
		{"epsilon above one", func(c *Config) { c.Learn.Epsilon = 2 }},
		{"negative episodes", func(c *Config) { c.Learn.Episodes = -1 }},
		{"zero t_max", func(c *Config) { c.Learn.TMax = 0 }},
		{"unknown rule", func(c *Config) { c.Learn.Rule = "td-lambda" }},
		{"unknown strategy", func(c *Config) { c.Search.Strategy = "dfs" }},
		{"probabilities", func(c *Config) { c.Env.Forward = 0.5 }},
		{"no map", func(c *Config) { c.Grid = "" }},
		{"unknown move", func(c *Config) { c.Search.Moves = []string{"up", "jump"} }},
		{"repeated move", func(c *Config) { c.Search.Moves = []string{"up", "UP"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestMapFileWinsOverGrid(t *testing.T) {
	cfg := Default()
	cfg.Map = writeFile(t, "maze.txt", "SG\n")

	m, err := cfg.LoadMap()
	require.NoError(t, err)
	assert.Equal(t, 1, m.Rows())
	assert.Equal(t, 2, m.Cols())
}
