package measure

import (
	"time"

	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// Measure collects one metric per step across any number of runs.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric aggregates the timings and outcomes of a step.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AVGDuration() time.Duration
	AddOutcome(status model.Status)
	Count(status model.Status) int64
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
}
