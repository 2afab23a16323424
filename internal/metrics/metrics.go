package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/CodeStranger-Fred/gridplan/mdp"
	"github.com/CodeStranger-Fred/gridplan/search"
)

// Collector turns agent progress into Prometheus metrics. It implements the
// observer interfaces of both agents.
type Collector[S, A comparable] struct {
	episodes   *prometheus.CounterVec
	steps      prometheus.Histogram
	reward     prometheus.Gauge
	tdError    prometheus.Histogram
	expansions prometheus.Counter
	pathLength prometheus.Gauge
}

func NewCollector[S, A comparable](reg prometheus.Registerer) (*Collector[S, A], error) {
	c := &Collector[S, A]{
		episodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridplan_episodes_total",
				Help: "Finished learning episodes by outcome",
			},
			[]string{"outcome"},
		),
		steps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridplan_episode_steps",
			Help:    "Steps taken per episode",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		reward: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridplan_episode_reward",
			Help: "Total reward of the last finished episode",
		}),
		tdError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridplan_td_error_abs",
			Help:    "Absolute temporal-difference error per update",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		expansions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridplan_search_expansions_total",
			Help: "States expanded by the search agent",
		}),
		pathLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridplan_search_path_length",
			Help: "States on the last path found, 0 when none",
		}),
	}
	for _, col := range []prometheus.Collector{c.episodes, c.steps, c.reward, c.tdError, c.expansions, c.pathLength} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics collector: %w", err)
		}
	}
	return c, nil
}

func (c *Collector[S, A]) ObserveStep(_ *mdp.QTable[S, A], ev mdp.StepEvent[S, A]) {
	d := ev.Target - ev.OldQ
	if d < 0 {
		d = -d
	}
	c.tdError.Observe(d)
}

func (c *Collector[S, A]) ObserveEpisode(_ *mdp.QTable[S, A], ep mdp.Episode[S, A]) {
	c.episodes.WithLabelValues(ep.Outcome.String()).Inc()
	c.steps.Observe(float64(ep.Steps))
	c.reward.Set(float64(ep.TotalReward))
}

func (c *Collector[S, A]) ObserveExpand(search.ExpandEvent[S]) {
	c.expansions.Inc()
}

func (c *Collector[S, A]) ObservePath(path []S) {
	c.pathLength.Set(float64(len(path)))
}

// WriteTextfile dumps everything gathered by g in the text exposition
// format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
