package eval

// #region eval-config
// EvalConfig holds thresholds for judging a plan after the search.
type EvalConfig struct {
	MaxNormalizedPenalty float64 `yaml:"max_normalized_penalty"` // fail a scorer above this share of its worst case
	MinQuality           float64 `yaml:"min_quality"`            // fail below this gate quality
	MaxAverageDuration   float64 `yaml:"max_average_duration"`   // seconds per element; 0 disables
}

// DefaultEvalConfig fails only plans that break hard constraints or that
// some scorer rates as bad as it can.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxNormalizedPenalty: 0.99,
		MinQuality:           0,
		MaxAverageDuration:   0,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the report for one plan.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// Metric looks a metric up by name.
func (r EvalResult) Metric(name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

// #endregion eval-result
