package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "mmf"

// #region metrics
// Metrics holds the planner and executor instruments. They register on a
// local registry rather than prometheus.DefaultRegisterer. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	plans          *prometheus.CounterVec
	planDuration   prometheus.Histogram
	evaluations    prometheus.Histogram
	hardViolations prometheus.Counter
	identifiers    *prometheus.CounterVec
	executions     *prometheus.CounterVec
}

// New creates the instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		plans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Planning calls, partitioned by gate action.",
		}, []string{"action"}),
		planDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Wall time of one planning call.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		evaluations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_evaluations",
			Help:      "Candidate plans scored per planning call.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		hardViolations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hard_violations_total",
			Help:      "Hard constraint violations in returned plans.",
		}),
		identifiers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_total",
			Help:      "Referring expressions built, partitioned by outcome.",
		}, []string{"outcome"}),
		executions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Executed outputs, partitioned by modality and outcome.",
		}, []string{"modality", "outcome"}),
	}
}

// #endregion metrics

// #region observe

// ObservePlan records one planning call.
func (m *Metrics) ObservePlan(action string, hard, evaluations int, took time.Duration) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(action).Inc()
	m.planDuration.Observe(took.Seconds())
	m.evaluations.Observe(float64(evaluations))
	if hard < 0 {
		m.hardViolations.Add(float64(-hard))
	}
}

// ObserveIdentifier records a selector outcome: "full", "partial", "type_only" or "failed".
func (m *Metrics) ObserveIdentifier(outcome string) {
	if m == nil {
		return
	}
	m.identifiers.WithLabelValues(outcome).Inc()
}

// ObserveExecution records one executed output.
func (m *Metrics) ObserveExecution(modality string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.executions.WithLabelValues(modality, outcome).Inc()
}

// #endregion observe

// #region snapshot

// Snapshot flattens counters and histogram counts into "name{labels}" keys,
// sorted, for printing from the CLI.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName() + labels(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out = append(out, Sample{Name: key, Value: metric.GetCounter().GetValue()})
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				out = append(out,
					Sample{Name: key + "_count", Value: float64(h.GetSampleCount())},
					Sample{Name: key + "_sum", Value: h.GetSampleSum()},
				)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Sample is one flattened metric value.
type Sample struct {
	Name  string
	Value float64
}

func labels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.GetName() + "=" + p.GetValue()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// #endregion snapshot
