package main

import (
	"fmt"
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeStranger-Fred/gridplan/internal/config"
	"github.com/CodeStranger-Fred/gridplan/internal/metrics"
	"github.com/CodeStranger-Fred/gridplan/maze"
	"github.com/CodeStranger-Fred/gridplan/mdp"
	"github.com/CodeStranger-Fred/gridplan/plot"
	"github.com/CodeStranger-Fred/gridplan/render"
)

type learnFlags struct {
	explorer   string
	render     bool
	steps      bool
	plotOut    string
	plotSmooth int
	metricsOut string
	qValues    bool
}

var learnOpts learnFlags

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Learn a policy with Q-learning",
	Long:  `Runs episodic Q-learning (or SARSA) on a stochastic version of the maze and prints the greedy policy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyLearnFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		m, err := cfg.LoadMap()
		if err != nil {
			return err
		}
		return runLearn(cmd, cfg, m, learnOpts, log)
	},
}

func applyLearnFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("episodes") {
		cfg.Learn.Episodes, _ = flags.GetInt("episodes")
	}
	if flags.Changed("gamma") {
		cfg.Learn.Gamma, _ = flags.GetFloat64("gamma")
	}
	if flags.Changed("alpha") {
		cfg.Learn.Alpha, _ = flags.GetFloat64("alpha")
	}
	if flags.Changed("epsilon") {
		cfg.Learn.Epsilon, _ = flags.GetFloat64("epsilon")
	}
	if flags.Changed("t-max") {
		cfg.Learn.TMax, _ = flags.GetInt("t-max")
	}
	if flags.Changed("seed") {
		cfg.Learn.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("rule") {
		cfg.Learn.Rule, _ = flags.GetString("rule")
	}
}

func newExplorer(name string, epsilon float64, rng *rand.Rand) (mdp.Explorer[maze.State, maze.Action], error) {
	switch name {
	case "uniform":
		return mdp.Uniform[maze.State, maze.Action]{}, nil
	case "greedy":
		return mdp.Greedy[maze.State, maze.Action]{}, nil
	case "epsilon-greedy", "":
		return mdp.EpsilonGreedy[maze.State, maze.Action]{Epsilon: epsilon, Rand: rng}, nil
	}
	return nil, fmt.Errorf("unknown explorer %q", name)
}

func runLearn(cmd *cobra.Command, cfg config.Config, m *maze.Map, lf learnFlags, log *zap.Logger) error {
	rng := rand.New(rand.NewSource(cfg.Learn.Seed))
	env, err := maze.NewRLProblem(m, cfg.Env.ActionProbs, cfg.Env.Rewards, rng)
	if err != nil {
		return err
	}
	explorer, err := newExplorer(lf.explorer, cfg.Learn.Epsilon, rng)
	if err != nil {
		return err
	}
	rule := mdp.QLearning
	if cfg.Learn.Rule == "sarsa" {
		rule = mdp.SARSA
	}

	recorder := &plot.Recorder[maze.State, maze.Action]{}
	opts := []mdp.Option[maze.State, maze.Action]{
		mdp.WithGamma[maze.State, maze.Action](cfg.Learn.Gamma),
		mdp.WithAlpha[maze.State, maze.Action](cfg.Learn.Alpha),
		mdp.WithTMax[maze.State, maze.Action](cfg.Learn.TMax),
		mdp.WithExplorer(explorer),
		mdp.WithRule[maze.State, maze.Action](rule),
		mdp.WithLogger[maze.State, maze.Action](log),
		mdp.WithObserver[maze.State, maze.Action](recorder),
	}

	term := render.NewTerminal(cmd.OutOrStdout(), m, colorsEnabled(cmd), log)
	term.EveryStep = lf.steps
	if lf.render || lf.steps {
		opts = append(opts, mdp.WithObserver[maze.State, maze.Action](term))
	}

	var reg *prometheus.Registry
	if lf.metricsOut != "" {
		reg = prometheus.NewRegistry()
		col, err := metrics.NewCollector[maze.State, maze.Action](reg)
		if err != nil {
			return err
		}
		opts = append(opts, mdp.WithObserver[maze.State, maze.Action](col))
	}

	learner, err := mdp.NewLearner[maze.State, maze.Action](env, opts...)
	if err != nil {
		return err
	}
	policy, err := learner.LearnPolicy(cfg.Learn.Episodes)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d episodes, %d timeouts\n", len(recorder.Rewards), recorder.Timeouts)
	fmt.Fprintf(out, "V(start) = %.3f\n", learner.Values()[m.Start()])
	if err := term.Policy(learner.QTable()); err != nil {
		log.Warn("render failed", zap.Error(err))
	}
	if lf.qValues {
		if err := term.QValues(learner.QTable()); err != nil {
			log.Warn("render failed", zap.Error(err))
		}
	}
	for _, s := range learner.QTable().States() {
		if m.IsTerminal(s) {
			continue
		}
		fmt.Fprintf(out, "%v: %v\n", s, policy[s])
	}

	if lf.plotOut != "" {
		series := []plot.Series{
			{Name: "reward", Values: recorder.Rewards},
			{Name: fmt.Sprintf("reward (avg %d)", lf.plotSmooth), Values: plot.Smooth(recorder.Rewards, lf.plotSmooth)},
		}
		title := fmt.Sprintf("%s, %s", rule, explorer.Name())
		if err := plot.WriteLearningCurve(lf.plotOut, title, series...); err != nil {
			log.Warn("plot failed", zap.Error(err))
		}
	}
	if reg != nil {
		if err := metrics.WriteTextfile(lf.metricsOut, reg); err != nil {
			log.Warn("writing metrics failed", zap.Error(err))
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(learnCmd)

	flags := learnCmd.Flags()
	flags.Int("episodes", 500, "Number of episodes")
	flags.Float64("gamma", mdp.DefaultGamma, "Discount factor in (0, 1]")
	flags.Float64("alpha", mdp.DefaultAlpha, "Learning rate in (0, 1]")
	flags.Float64("epsilon", 0.1, "Exploration rate for epsilon-greedy")
	flags.Int("t-max", mdp.DefaultTMax, "Step budget per episode")
	flags.Int64("seed", 1, "Random seed")
	flags.String("rule", "q-learning", "Update rule: q-learning or sarsa")
	flags.StringVar(&learnOpts.explorer, "explorer", "epsilon-greedy", "Exploration: epsilon-greedy, greedy or uniform")
	flags.BoolVar(&learnOpts.render, "render", false, "Draw values and policy after every episode")
	flags.BoolVar(&learnOpts.steps, "steps", false, "Print a row for every learning step")
	flags.StringVar(&learnOpts.plotOut, "plot", "", "Write a learning-curve HTML chart to this file")
	flags.IntVar(&learnOpts.plotSmooth, "plot-smooth", 20, "Moving-average window for the chart")
	flags.StringVar(&learnOpts.metricsOut, "metrics-out", "", "Write Prometheus metrics to this file")
	flags.BoolVar(&learnOpts.qValues, "q-values", false, "Print every Q(s, a) after learning")
}
