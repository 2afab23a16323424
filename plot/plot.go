package plot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/CodeStranger-Fred/gridplan/mdp"
)

var ErrNoSeries = errors.New("nothing to plot")

// Series is one line of a learning curve: a value per episode.
type Series struct {
	Name   string
	Values []float64
}

// LearningCurve renders the series as a line chart page.
func LearningCurve(w io.Writer, title string, series ...Series) error {
	if len(series) == 0 {
		return ErrNoSeries
	}
	numEpisodes := 0
	for _, s := range series {
		numEpisodes = max(numEpisodes, len(s.Values))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	var episodes []string
	for i := 0; i < numEpisodes; i++ {
		episodes = append(episodes, fmt.Sprintf("%d", i+1))
	}
	line = line.SetXAxis(episodes)
	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Values))
		for _, v := range s.Values {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

func WriteLearningCurve(path, title string, series ...Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := LearningCurve(f, title, series...); err != nil {
		f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}

// Recorder collects per-episode statistics from a learner.
type Recorder[S, A comparable] struct {
	Rewards  []float64
	Steps    []float64
	Timeouts int
}

func (r *Recorder[S, A]) ObserveStep(*mdp.QTable[S, A], mdp.StepEvent[S, A]) {}

func (r *Recorder[S, A]) ObserveEpisode(_ *mdp.QTable[S, A], ep mdp.Episode[S, A]) {
	r.Rewards = append(r.Rewards, float64(ep.TotalReward))
	r.Steps = append(r.Steps, float64(ep.Steps))
	if ep.Outcome == mdp.OutcomeTimeout {
		r.Timeouts++
	}
}

// Smooth returns the trailing moving average over window episodes.
func Smooth(values []float64, window int) []float64 {
	if window <= 1 {
		return append([]float64(nil), values...)
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}
