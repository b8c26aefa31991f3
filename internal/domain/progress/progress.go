// Package progress folds workout records and performance samples into
// longitudinal metrics. Every aggregate is derived from the full record set
// on each call, so deletions and out-of-order inserts always give a
// consistent result.
package progress

import (
	"sort"
	"time"

	"github.com/okian/pulse/internal/domain/model"
)

// civil is a calendar date in the configured location.
type civil struct{ y, m, d int }

func dayOf(t time.Time, loc *time.Location) civil {
	y, m, d := t.In(loc).Date()
	return civil{y, int(m), d}
}

// midnight returns the date at midnight UTC, so day arithmetic ignores DST.
func (c civil) midnight() time.Time { return time.Date(c.y, time.Month(c.m), c.d, 0, 0, 0, 0, time.UTC) }

func (c civil) prev() civil { return dayOf(c.midnight().AddDate(0, 0, -1), time.UTC) }

// Compute derives progress metrics from records as of now.
func Compute(records []model.WorkoutSessionRecord, now time.Time, opts ...Option) model.ProgressMetrics {
	cfg := newConfig(opts)
	out := model.ProgressMetrics{
		TotalWorkouts:     len(records),
		ExerciseBreakdown: map[string]model.ExerciseStats{},
		WeeklyProgress:    []model.WeekBucket{},
		RecentSessions:    []model.WorkoutSessionRecord{},
	}
	if len(records) == 0 {
		return out
	}

	sorted := append([]model.WorkoutSessionRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var formSum float64
	days := make(map[civil]bool)
	for _, r := range sorted {
		out.TotalReps += r.Reps
		formSum += r.FormScore
		if r.FormScore > out.BestFormScore {
			out.BestFormScore = r.FormScore
		}
		days[dayOf(r.Date, cfg.loc)] = true
	}
	out.AverageFormScore = formSum / float64(len(sorted))
	out.CurrentStreak, out.LongestStreak = streaks(days, dayOf(now, cfg.loc))
	out.WeeklyProgress = weekly(sorted, cfg.loc)
	out.ExerciseBreakdown = breakdown(sorted)

	n := min(cfg.recent, len(sorted))
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		out.RecentSessions = append(out.RecentSessions, sorted[i])
	}
	return out
}

// streaks returns the run of active days ending today or yesterday and the
// longest run ever observed.
func streaks(days map[civil]bool, today civil) (current, longest int) {
	start := today
	if !days[start] {
		start = today.prev()
	}
	for d := start; days[d]; d = d.prev() {
		current++
	}

	ordered := make([]time.Time, 0, len(days))
	for d := range days {
		ordered = append(ordered, d.midnight())
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })
	run := 0
	for i, d := range ordered {
		if i > 0 && ordered[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return current, longest
}

type weekKey struct{ year, week int }

// weekly buckets records by ISO week, newest week first.
func weekly(records []model.WorkoutSessionRecord, loc *time.Location) []model.WeekBucket {
	buckets := make(map[weekKey]*model.WeekBucket)
	forms := make(map[weekKey]float64)
	for _, r := range records {
		local := r.Date.In(loc)
		y, w := local.ISOWeek()
		k := weekKey{y, w}
		b := buckets[k]
		if b == nil {
			b = &model.WeekBucket{Year: y, Week: w, Start: weekStart(local)}
			buckets[k] = b
		}
		b.Workouts++
		b.TotalReps += r.Reps
		forms[k] += r.FormScore
	}

	out := make([]model.WeekBucket, 0, len(buckets))
	for k, b := range buckets {
		b.MeanFormScore = forms[k] / float64(b.Workouts)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Week > out[j].Week
	})
	return out
}

// weekStart returns the Monday of t's ISO week as a calendar date.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := dayOf(t, t.Location()).midnight()
	return d.AddDate(0, 0, -offset)
}

// breakdown groups chronologically sorted records by exercise type.
func breakdown(records []model.WorkoutSessionRecord) map[string]model.ExerciseStats {
	first := make(map[string]float64)
	last := make(map[string]float64)
	sums := make(map[string]float64)
	out := make(map[string]model.ExerciseStats)
	for _, r := range records {
		s, seen := out[r.ExerciseType]
		if !seen {
			first[r.ExerciseType] = r.FormScore
		}
		last[r.ExerciseType] = r.FormScore
		sums[r.ExerciseType] += r.FormScore
		s.Count++
		s.TotalReps += r.Reps
		if r.FormScore > s.BestForm {
			s.BestForm = r.FormScore
		}
		out[r.ExerciseType] = s
	}
	for k, s := range out {
		s.AverageForm = sums[k] / float64(s.Count)
		s.Improvement = last[k] - first[k]
		out[k] = s
	}
	return out
}
