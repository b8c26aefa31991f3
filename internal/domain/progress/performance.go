package progress

import (
	"sort"
	"time"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/types"
)

// TrendWindow is the look-back of Trend30d.
const TrendWindow = 30 * 24 * time.Hour

// CompareMode determines how performance samples are compared.
type CompareMode int

const (
	HigherIsBetter CompareMode = iota // distances, reps (default)
	LowerIsBetter                     // timed runs
)

// ModeFor returns the compare mode of a metric. Metrics named after a
// timed test type compare lower-is-better.
func ModeFor(metric string) CompareMode {
	if t, err := types.ParseTestType(metric); err == nil && t.LowerIsBetter() {
		return LowerIsBetter
	}
	return HigherIsBetter
}

func better(mode CompareMode, a, b float64) bool {
	switch mode {
	case LowerIsBetter:
		return a < b
	case HigherIsBetter:
		return a > b
	default:
		return a > b
	}
}

// PersonalRecords returns the best sample per metric. The earliest sample
// keeps the record on equal values. A nil mode uses ModeFor.
func PersonalRecords(samples []model.PerformanceSample, mode func(metric string) CompareMode) map[string]model.PerformanceSample {
	if mode == nil {
		mode = ModeFor
	}
	sorted := chronological(samples)
	out := make(map[string]model.PerformanceSample)
	for _, s := range sorted {
		cur, ok := out[s.Metric]
		if !ok || better(mode(s.Metric), s.Value, cur.Value) {
			out[s.Metric] = s
		}
	}
	return out
}

// TrendStatus summarizes a trend's direction.
type TrendStatus string

const (
	TrendImproved TrendStatus = "improved"
	TrendDeclined TrendStatus = "declined"
	TrendNoChange TrendStatus = "no_change"
)

// Trend is the change of one metric over the trend window.
type Trend struct {
	Metric        string      `json:"metric"`
	Baseline      float64     `json:"baseline"`
	Latest        float64     `json:"latest"`
	ChangePercent float64     `json:"change_percent"`
	Status        TrendStatus `json:"status"`
	// Available is false when no baseline exists at or before the window
	// start, or the baseline is zero.
	Available bool `json:"available"`
}

// Trend30d compares, per metric, the latest sample at or before now with
// the latest sample at or before now minus TrendWindow. Without such a
// baseline the trend reports no change and is marked unavailable.
func Trend30d(samples []model.PerformanceSample, now time.Time) map[string]Trend {
	windowStart := now.Add(-TrendWindow)
	baseline := make(map[string]model.PerformanceSample)
	latest := make(map[string]model.PerformanceSample)
	for _, s := range chronological(samples) {
		if s.Date.After(now) {
			continue
		}
		latest[s.Metric] = s
		if !s.Date.After(windowStart) {
			baseline[s.Metric] = s
		}
	}

	out := make(map[string]Trend, len(latest))
	for metric, l := range latest {
		tr := Trend{Metric: metric, Latest: l.Value, Status: TrendNoChange}
		b, ok := baseline[metric]
		if !ok || b.Value == 0 {
			out[metric] = tr
			continue
		}
		tr.Baseline = b.Value
		tr.Available = true
		tr.ChangePercent = (l.Value - b.Value) / b.Value * 100
		switch {
		case l.Value == b.Value:
			tr.Status = TrendNoChange
		case better(ModeFor(metric), l.Value, b.Value):
			tr.Status = TrendImproved
		default:
			tr.Status = TrendDeclined
		}
		out[metric] = tr
	}
	return out
}

func chronological(samples []model.PerformanceSample) []model.PerformanceSample {
	sorted := append([]model.PerformanceSample(nil), samples...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}
