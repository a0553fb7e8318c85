package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run metrics, written at the end of a run in the Prometheus text format for the node exporter's
// textfile collector.  Each run has its own registry.
type runMetrics struct {
	registry  *prometheus.Registry
	jobs      prometheus.Counter
	exclusive prometheus.Gauge
	noData    prometheus.Counter
	malformed *prometheus.CounterVec
	nodes     prometheus.Gauge
	seconds   prometheus.Gauge
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobpower_jobs_total",
			Help: "Jobs loaded from the job tables",
		}),
		exclusive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobpower_jobs_exclusive",
			Help: "Jobs that had their nodes to themselves",
		}),
		noData: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobpower_jobs_nodata_total",
			Help: "Exclusive jobs for which no power samples were found",
		}),
		malformed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobpower_jobs_malformed_total",
				Help: "Input rows dropped as malformed",
			},
			[]string{"source"},
		),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobpower_nodes_indexed",
			Help: "Nodes for which an occupancy map was built",
		}),
		seconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobpower_run_seconds",
			Help: "Wall time of the run",
		}),
	}
	m.registry.MustRegister(m.jobs, m.exclusive, m.noData, m.malformed, m.nodes, m.seconds)
	return m
}

func (m *runMetrics) record(s *Summary) {
	m.jobs.Add(float64(s.Jobs))
	m.exclusive.Set(float64(s.Exclusive))
	m.noData.Add(float64(s.NoData))
	m.malformed.WithLabelValues("jobs").Add(float64(s.MalformedJobs))
	m.malformed.WithLabelValues("power").Add(float64(s.MalformedPower))
	m.nodes.Set(float64(s.Nodes))
	m.seconds.Set(s.Elapsed.Seconds())
}

func (m *runMetrics) write(filename string) error {
	return prometheus.WriteToTextfile(filename, m.registry)
}
