// Package behavior keeps the bounded, time-ordered log of task outcome
// events that feeds the ranking engine's statistical estimates. Each
// record freezes the context a task was completed or deferred in; the
// log is a FIFO capped at Capacity so predictions stay biased toward
// recent behavior.
package behavior

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/papapumpkin/orrery/internal/store"
	"github.com/papapumpkin/orrery/internal/task"
)

// Capacity is the hard ceiling on retained records. Oldest records are
// evicted first once the ceiling is exceeded.
const Capacity = 1000

// Record is one immutable outcome snapshot.
type Record struct {
	Timestamp        time.Time        `json:"ts"`
	Hour             int              `json:"hour"`
	Weekday          time.Weekday     `json:"weekday"`
	Weekend          bool             `json:"weekend"`
	Energy           task.EnergyLevel `json:"energy"`
	Kind             task.Kind        `json:"kind"`
	EstimatedMinutes int              `json:"estimated_minutes"`
	SubtaskCount     int              `json:"subtask_count"`
	DependencyCount  int              `json:"dependency_count"`
	DeferCount       int              `json:"defer_count"`
	DaysSinceCreated int              `json:"days_since_created"`
	CompletedToday   int              `json:"completed_today"`
	DeferredToday    int              `json:"deferred_today"`
	Completed        bool             `json:"completed"`
	DeferReason      string           `json:"defer_reason,omitempty"`
	MinutesToDo      int              `json:"minutes_to_complete,omitempty"`
}

// Dataset is the mutex-guarded bounded outcome log. The zero value is
// not usable; call New or Load.
type Dataset struct {
	mu      sync.RWMutex
	records []Record
}

// New creates an empty dataset.
func New() *Dataset {
	return &Dataset{}
}

// Load restores a dataset from the persistence provider. A missing or
// corrupt blob yields an empty dataset and no error: ranking must always
// produce an answer even with no history. The returned bool reports
// whether the stored blob was usable, so callers can log the fallback.
func Load(ctx context.Context, p store.Provider) (*Dataset, bool) {
	d := New()
	if p == nil {
		return d, true
	}
	data, err := p.Load(ctx, store.KeyBehavior)
	if err != nil || data == nil {
		return d, err == nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return d, false
	}
	if len(records) > Capacity {
		records = records[len(records)-Capacity:]
	}
	d.records = records
	return d, true
}

// Persist writes the current records through the provider. Callers are
// expected to run this off the hot path and treat failure as a logged
// no-op.
func (d *Dataset) Persist(ctx context.Context, p store.Provider) error {
	if p == nil {
		return nil
	}
	d.mu.RLock()
	data, err := json.Marshal(d.records)
	d.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("behavior: marshal records: %w", err)
	}
	if err := p.Save(ctx, store.KeyBehavior, data); err != nil {
		return fmt.Errorf("behavior: save records: %w", err)
	}
	return nil
}

// Append adds a record, evicting the oldest once Capacity is exceeded.
func (d *Dataset) Append(r Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = append(d.records, r)
	if len(d.records) > Capacity {
		d.records = d.records[len(d.records)-Capacity:]
	}
}

// Len returns the number of retained records.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Records returns a copy of the retained records, oldest first.
func (d *Dataset) Records() []Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// CompletionRateForHour returns the fraction of records at the given
// hour that were completions, and the sample count for that hour. With
// no samples the rate is the neutral 0.5.
func (d *Dataset) CompletionRateForHour(hour int) (rate float64, samples int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var completed int
	for _, r := range d.records {
		if r.Hour != hour {
			continue
		}
		samples++
		if r.Completed {
			completed++
		}
	}
	if samples == 0 {
		return 0.5, 0
	}
	return float64(completed) / float64(samples), samples
}

// CompletionRateForKind returns the completion fraction for records of
// the given task kind, neutral 0.5 with no samples.
func (d *Dataset) CompletionRateForKind(kind task.Kind) (rate float64, samples int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var completed int
	for _, r := range d.records {
		if r.Kind != kind {
			continue
		}
		samples++
		if r.Completed {
			completed++
		}
	}
	if samples == 0 {
		return 0.5, 0
	}
	return float64(completed) / float64(samples), samples
}

// CountSince returns how many completions and defers were recorded at
// or after the cutoff.
func (d *Dataset) CountSince(cutoff time.Time) (completed, deferred int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, r := range d.records {
		if r.Timestamp.Before(cutoff) {
			continue
		}
		if r.Completed {
			completed++
		} else {
			deferred++
		}
	}
	return completed, deferred
}

// CountOn returns how many completions and defers fall on the same
// calendar day as now, in now's location.
func (d *Dataset) CountOn(now time.Time) (completed, deferred int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	y, m, day := now.Date()
	for _, r := range d.records {
		ry, rm, rd := r.Timestamp.In(now.Location()).Date()
		if ry != y || rm != m || rd != day {
			continue
		}
		if r.Completed {
			completed++
		} else {
			deferred++
		}
	}
	return completed, deferred
}

// HourStat is an aggregate for one hour of the day.
type HourStat struct {
	Hour    int     `json:"hour"`
	Rate    float64 `json:"rate"`
	Samples int     `json:"samples"`
}

// BestHours returns up to n hours ranked by completion rate, highest
// first, considering only hours with at least minSamples records. Ties
// break toward the earlier hour.
func (d *Dataset) BestHours(n, minSamples int) []HourStat {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var totals, completed [24]int
	for _, r := range d.records {
		if r.Hour < 0 || r.Hour > 23 {
			continue
		}
		totals[r.Hour]++
		if r.Completed {
			completed[r.Hour]++
		}
	}

	var stats []HourStat
	for h := 0; h < 24; h++ {
		if totals[h] < minSamples || totals[h] == 0 {
			continue
		}
		stats = append(stats, HourStat{
			Hour:    h,
			Rate:    float64(completed[h]) / float64(totals[h]),
			Samples: totals[h],
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Rate > stats[j].Rate
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// OverallCompletionRate returns completions / total across the whole
// log, and the total count. Neutral 0.5 when empty.
func (d *Dataset) OverallCompletionRate() (rate float64, total int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var completed int
	for _, r := range d.records {
		if r.Completed {
			completed++
		}
	}
	total = len(d.records)
	if total == 0 {
		return 0.5, 0
	}
	return float64(completed) / float64(total), total
}
