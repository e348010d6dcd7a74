package dotcluster

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a Clusterizator reports to. One
// Metrics value may be shared by many instances; register it once.
type Metrics struct {
	BuildsTotal     *prometheus.CounterVec
	BuildDuration   *prometheus.HistogramVec
	BuildIterations *prometheus.HistogramVec
	ClustersBuilt   *prometheus.CounterVec
	DotsInserted    prometheus.Counter
}

// NewMetrics creates an unregistered set of collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dotcluster_builds_total",
			Help: "Total number of level builds",
		}, []string{"level"}),
		BuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dotcluster_build_duration_seconds",
			Help:    "Level build duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"level"}),
		BuildIterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dotcluster_build_iterations",
			Help:    "Fixed-point passes needed per level build",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 32},
		}, []string{"level"}),
		ClustersBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dotcluster_clusters_built_total",
			Help: "Total number of clusters committed by level builds",
		}, []string{"level"}),
		DotsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dotcluster_dots_inserted_total",
			Help: "Total number of new dot coordinates inserted",
		}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.BuildsTotal,
		m.BuildDuration,
		m.BuildIterations,
		m.ClustersBuilt,
		m.DotsInserted,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observe(stats BuildStats, elapsed time.Duration) {
	l := stats.Level.String()
	m.BuildsTotal.WithLabelValues(l).Inc()
	m.BuildDuration.WithLabelValues(l).Observe(elapsed.Seconds())
	m.BuildIterations.WithLabelValues(l).Observe(float64(stats.Iterations))
	m.ClustersBuilt.WithLabelValues(l).Add(float64(stats.Clusters))
}
