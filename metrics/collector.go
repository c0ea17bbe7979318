package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shreekarashastry/miningsim/experiment"
)

// Collector turns experiment progress into prometheus metrics on its own
// registry.
type Collector struct {
	registry *prometheus.Registry

	iterations *prometheus.CounterVec
	mined      *prometheus.CounterVec
	orphaned   *prometheus.CounterVec
	canonical  *prometheus.CounterVec
	lost       *prometheus.CounterVec
	lostValue  *prometheus.CounterVec
	share      *prometheus.GaugeVec
	headHeight *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miningsim",
			Name:      "iterations_total",
			Help:      "Completed simulation iterations.",
		}, []string{"scenario"}),
		mined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miningsim",
			Name:      "blocks_mined_total",
			Help:      "Mining events, withheld blocks included.",
		}, []string{"scenario"}),
		orphaned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miningsim",
			Name:      "blocks_orphaned_total",
			Help:      "Mined blocks left off the canonical chain.",
		}, []string{"scenario"}),
		canonical: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miningsim",
			Name:      "canonical_value_total",
			Help:      "Block value earned on the canonical chain.",
		}, []string{"scenario", "miner"}),
		lost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miningsim",
			Name:      "miner_blocks_orphaned_total",
			Help:      "Blocks a miner found that ended off the canonical chain.",
		}, []string{"scenario", "miner"}),
		lostValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miningsim",
			Name:      "orphaned_value_total",
			Help:      "Block value a miner lost to orphaning.",
		}, []string{"scenario", "miner"}),
		share: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "miningsim",
			Name:      "profit_share",
			Help:      "Relative profit share at the end of an experiment.",
		}, []string{"scenario", "miner"}),
		headHeight: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "miningsim",
			Name:      "head_height",
			Help:      "Height of the canonical head per iteration.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}, []string{"scenario"}),
	}
	c.registry.MustRegister(c.iterations, c.mined, c.orphaned, c.canonical, c.lost, c.lostValue, c.share, c.headHeight)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveIteration(ev experiment.IterationEvent) {
	c.iterations.WithLabelValues(ev.Scenario).Inc()
	if ev.Result == nil {
		return
	}
	c.mined.WithLabelValues(ev.Scenario).Add(float64(ev.Result.Mined))
	c.orphaned.WithLabelValues(ev.Scenario).Add(float64(ev.Result.Orphaned()))
	c.headHeight.WithLabelValues(ev.Scenario).Observe(float64(ev.Result.Head.Height()))
	for id, p := range ev.Profits {
		c.canonical.WithLabelValues(ev.Scenario, id).Add(p)
	}
	for id, n := range ev.Orphans {
		c.lost.WithLabelValues(ev.Scenario, id).Add(float64(n))
		c.lostValue.WithLabelValues(ev.Scenario, id).Add(ev.OrphanedValue[id])
	}
}

func (c *Collector) ObserveReport(r *experiment.Report) {
	for id, s := range r.Shares {
		c.share.WithLabelValues(r.Scenario, id).Set(s)
	}
}
