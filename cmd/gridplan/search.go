package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeStranger-Fred/gridplan/internal/config"
	"github.com/CodeStranger-Fred/gridplan/internal/metrics"
	"github.com/CodeStranger-Fred/gridplan/maze"
	"github.com/CodeStranger-Fred/gridplan/render"
	"github.com/CodeStranger-Fred/gridplan/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find a path from the start to a goal",
	Long:  `Runs breadth-first search (or uniform-cost / A* search) over the maze and prints the path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("strategy") {
			cfg.Search.Strategy, _ = cmd.Flags().GetString("strategy")
		}
		if cmd.Flags().Changed("moves") {
			cfg.Search.Moves, _ = cmd.Flags().GetStringSlice("moves")
		}
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
		renderSteps, _ := cmd.Flags().GetBool("render")
		metricsOut, _ := cmd.Flags().GetString("metrics-out")

		path, err := runSearch(cmd, cfg, m, renderSteps, metricsOut, log)
		if errors.Is(err, search.ErrNoPath) {
			fmt.Fprintln(cmd.OutOrStdout(), "no path found")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "path (%d states): %v\n", len(path), path)
		return nil
	},
}

func runSearch(cmd *cobra.Command, cfg config.Config, m *maze.Map, renderSteps bool, metricsOut string, log *zap.Logger) ([]maze.State, error) {
	problem := maze.NewSearchProblem(m)
	order, err := cfg.Search.Actions()
	if err != nil {
		return nil, err
	}
	if order != nil {
		if err := problem.SetActionOrder(order); err != nil {
			return nil, err
		}
	}
	opts := []search.Option[maze.State, maze.Action]{
		search.WithLogger[maze.State, maze.Action](log),
	}
	switch cfg.Search.Strategy {
	case "astar":
		opts = append(opts, search.WithHeuristic[maze.State, maze.Action](problem.Manhattan))
	default:
		strategy, err := search.ParseStrategy(cfg.Search.Strategy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, search.WithStrategy[maze.State, maze.Action](strategy))
	}

	term := render.NewTerminal(cmd.OutOrStdout(), m, colorsEnabled(cmd), log)
	if renderSteps {
		opts = append(opts, search.WithObserver[maze.State, maze.Action](term))
	}

	var reg *prometheus.Registry
	if metricsOut != "" {
		reg = prometheus.NewRegistry()
		col, err := metrics.NewCollector[maze.State, maze.Action](reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, search.WithObserver[maze.State, maze.Action](col))
	}

	path, err := search.NewAgent[maze.State, maze.Action](problem, opts...).FindPath()
	if reg != nil {
		if werr := metrics.WriteTextfile(metricsOut, reg); werr != nil {
			log.Warn("writing metrics failed", zap.Error(werr))
		}
	}
	if err == nil && !renderSteps {
		term.ObservePath(path)
	}
	return path, err
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("strategy", "bfs", "Search strategy: bfs, ucs or astar")
	searchCmd.Flags().Bool("render", false, "Draw the cost map after every expansion")
	searchCmd.Flags().String("metrics-out", "", "Write Prometheus metrics to this file")
	searchCmd.Flags().StringSlice("moves", nil, "Order moves are tried in, e.g. up,right,down,left")
}
