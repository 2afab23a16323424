package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeStranger-Fred/gridplan/internal/config"
	"github.com/CodeStranger-Fred/gridplan/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "gridplan",
	Short: "Path search and Q-learning in grid worlds",
	Long: `gridplan finds paths through grid mazes with breadth-first or uniform-cost
search and learns policies for stochastic grid worlds with Q-learning.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("map", "", "Map file (one row per line)")
	rootCmd.PersistentFlags().String("grid", "", `Inline map, rows separated by "\n"`)
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

// loadConfig reads the config file if one is given and applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	flags := cmd.Flags()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if flags.Changed("map") {
		cfg.Map, _ = flags.GetString("map")
	}
	if flags.Changed("grid") {
		grid, _ := flags.GetString("grid")
		cfg.Grid = unescapeGrid(grid)
		cfg.Map = ""
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Development)
}

func colorsEnabled(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return !noColor
}

// unescapeGrid lets shells pass "S..\n..G" without a literal newline.
func unescapeGrid(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == 'n' {
			out = append(out, '\n')
			i++
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
