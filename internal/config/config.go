package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CodeStranger-Fred/gridplan/maze"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// Map is a path to a map file and wins over the inline Grid.
	Map  string `yaml:"map"`
	Grid string `yaml:"grid"`

	Search Search `yaml:"search"`
	Learn  Learn  `yaml:"learn"`
	Env    Env    `yaml:"env"`

	Log Log `yaml:"log"`
}

type Search struct {
	Strategy string `yaml:"strategy"`
	// Moves is the order moves are tried in, e.g. [up, right, down, left].
	// Empty keeps the default order.
	Moves []string `yaml:"moves"`
}

type Learn struct {
	Gamma    float64 `yaml:"gamma"`
	Alpha    float64 `yaml:"alpha"`
	Epsilon  float64 `yaml:"epsilon"`
	Episodes int     `yaml:"episodes"`
	TMax     int     `yaml:"t_max"`
	Seed     int64   `yaml:"seed"`
	Rule     string  `yaml:"rule"`
}

type Env struct {
	maze.ActionProbs `yaml:",inline"`
	maze.Rewards     `yaml:",inline"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		Grid:   "S..\n...\n..G",
		Search: Search{Strategy: "bfs"},
		Learn: Learn{
			Gamma:    0.9,
			Alpha:    0.1,
			Epsilon:  0.1,
			Episodes: 500,
			TMax:     200,
			Seed:     1,
			Rule:     "q-learning",
		},
		Env: Env{
			ActionProbs: maze.ActionProbs{Forward: 0.8, Left: 0.1, Right: 0.1},
			Rewards:     maze.DefaultRewards,
		},
		Log: Log{Level: "info"},
	}
}

// Load overlays the YAML file at path onto the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	l := c.Learn
	switch {
	case l.Gamma <= 0 || l.Gamma > 1:
		return fmt.Errorf("learn.gamma %v outside (0, 1]: %w", l.Gamma, ErrInvalid)
	case l.Alpha <= 0 || l.Alpha > 1:
		return fmt.Errorf("learn.alpha %v outside (0, 1]: %w", l.Alpha, ErrInvalid)
	case l.Epsilon < 0 || l.Epsilon > 1:
		return fmt.Errorf("learn.epsilon %v outside [0, 1]: %w", l.Epsilon, ErrInvalid)
	case l.Episodes < 0:
		return fmt.Errorf("learn.episodes %d is negative: %w", l.Episodes, ErrInvalid)
	case l.TMax < 1:
		return fmt.Errorf("learn.t_max %d below 1: %w", l.TMax, ErrInvalid)
	}
	switch l.Rule {
	case "q-learning", "sarsa":
	default:
		return fmt.Errorf("learn.rule %q: %w", l.Rule, ErrInvalid)
	}
	switch c.Search.Strategy {
	case "bfs", "ucs", "astar":
	default:
		return fmt.Errorf("search.strategy %q: %w", c.Search.Strategy, ErrInvalid)
	}
	if _, err := c.Search.Actions(); err != nil {
		return fmt.Errorf("search.moves: %w", err)
	}
	p := c.Env.ActionProbs
	if sum := p.Forward + p.Left + p.Right + p.Backward; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("env action probabilities sum to %.3f: %w", sum, ErrInvalid)
	}
	if c.Map == "" && c.Grid == "" {
		return fmt.Errorf("no map or grid given: %w", ErrInvalid)
	}
	return nil
}

// Actions parses Moves. A nil result means the default order.
func (s Search) Actions() ([]maze.Action, error) {
	if len(s.Moves) == 0 {
		return nil, nil
	}
	out := make([]maze.Action, 0, len(s.Moves))
	seen := make(map[maze.Action]bool, len(s.Moves))
	for _, name := range s.Moves {
		a, err := maze.ParseAction(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", err, ErrInvalid)
		}
		if seen[a] {
			return nil, fmt.Errorf("%v listed twice: %w", a, ErrInvalid)
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}

// LoadMap resolves the configured map.
func (c Config) LoadMap() (*maze.Map, error) {
	if c.Map != "" {
		return maze.LoadMap(c.Map)
	}
	return maze.ParseMap(c.Grid)
}
