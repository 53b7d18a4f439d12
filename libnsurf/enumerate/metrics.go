package enumerate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Enumeration metrics, published once per run.
var (
	nodesVisited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gonsurf_enumerate_nodes_visited_total",
		Help: "Search tree nodes (or double description pairs) examined",
	}, []string{"algorithm"})

	solutionsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gonsurf_enumerate_solutions_total",
		Help: "Solutions passed to a sink",
	}, []string{"algorithm", "coords"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gonsurf_enumerate_runs_total",
		Help: "Enumeration runs by algorithm and outcome",
	}, []string{"algorithm", "outcome"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gonsurf_enumerate_run_duration_seconds",
		Help:    "Wall time of an enumeration run",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 100},
	}, []string{"algorithm"})
)

// runStats accumulates counts locally during a run.
type runStats struct {
	algorithm string
	coords    string
	start     time.Time
	visited   uint64
	emitted   uint64
}

func newRunStats(algorithm, coords string) *runStats {
	return &runStats{
		algorithm: algorithm,
		coords:    coords,
		start:     time.Now(),
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	return errorLabel(err)
}

func (st *runStats) publish(err error) {
	nodesVisited.WithLabelValues(st.algorithm).Add(float64(st.visited))
	solutionsEmitted.WithLabelValues(st.algorithm, st.coords).Add(float64(st.emitted))
	runsTotal.WithLabelValues(st.algorithm, outcomeOf(err)).Inc()
	runDuration.WithLabelValues(st.algorithm).Observe(time.Since(st.start).Seconds())
}
