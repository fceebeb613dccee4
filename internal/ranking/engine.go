// Package ranking converts behavioral history and current context into
// energy estimates, per-task completion probabilities, and priority
// scores used to order the task list. It owns the behavior dataset and
// the personal context store, and treats the dependency graph and the
// calendar as read-only collaborators.
package ranking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/papapumpkin/orrery/internal/behavior"
	"github.com/papapumpkin/orrery/internal/calendar"
	"github.com/papapumpkin/orrery/internal/knowledge"
	"github.com/papapumpkin/orrery/internal/store"
	"github.com/papapumpkin/orrery/internal/task"
	"github.com/papapumpkin/orrery/internal/telemetry"
)

// ActionabilityChecker is the slice of the dependency graph engine the
// ranker consumes. It is a plain read: the two engines never share a
// lock.
type ActionabilityChecker interface {
	IsActionable(id task.ID) bool
}

// Options configures an Engine. Zero fields get working defaults: no
// calendar, no persistence, no telemetry, wall-clock time, default
// weights.
type Options struct {
	Dataset   *behavior.Dataset
	Knowledge *knowledge.Store
	Graph     ActionabilityChecker
	Calendar  calendar.Provider
	Store     store.Provider
	Telemetry *telemetry.Emitter
	Now       func() time.Time
	Weights   *Weights
}

// Engine is the context and ranking engine. All methods are safe for
// concurrent use; recording operations are serialized through the
// underlying dataset and knowledge store, and persistence runs in the
// background so callers never wait on a write.
type Engine struct {
	data  *behavior.Dataset
	know  *knowledge.Store
	graph ActionabilityChecker
	cal   calendar.Provider
	blobs store.Provider
	telem *telemetry.Emitter
	now   func() time.Time

	mu      sync.RWMutex // guards weights for hot reload
	weights Weights

	saves sync.WaitGroup // tracked for tests and clean shutdown
}

// New creates an engine from options, loading the dataset and knowledge
// store from persistence when they are not supplied. Load failures fall
// back to empty state and are recorded in telemetry, never surfaced:
// ranking must always produce an answer.
func New(ctx context.Context, o Options) *Engine {
	e := &Engine{
		data:    o.Dataset,
		know:    o.Knowledge,
		graph:   o.Graph,
		cal:     o.Calendar,
		blobs:   o.Store,
		telem:   o.Telemetry,
		now:     o.Now,
		weights: DefaultWeights(),
	}
	if o.Weights != nil {
		e.weights = *o.Weights
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.data == nil {
		var ok bool
		e.data, ok = behavior.Load(ctx, e.blobs)
		if !ok {
			e.telem.Record(telemetry.KindLoadFailed, "", map[string]string{"blob": store.KeyBehavior})
		}
	}
	if e.know == nil {
		var ok bool
		e.know, ok = knowledge.Load(ctx, e.blobs)
		if !ok {
			e.telem.Record(telemetry.KindLoadFailed, "", map[string]string{"blob": store.KeyKnowledge})
		}
	}
	return e
}

// Weights returns the current tuning values.
func (e *Engine) Weights() Weights {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weights
}

// SetWeights swaps the tuning values, e.g. on config hot reload.
func (e *Engine) SetWeights(w Weights) {
	e.mu.Lock()
	e.weights = w
	e.mu.Unlock()
}

// CurrentContext computes a fresh user context snapshot.
func (e *Engine) CurrentContext(ctx context.Context) UserContext {
	w := e.Weights()
	now := e.now()

	recentCompleted, recentDeferred := e.data.CountSince(now.Add(-recentWindow))
	completedToday, deferredToday := e.data.CountOn(now)
	energy := e.PredictEnergy(now)

	return UserContext{
		Now:             now,
		Hour:            now.Hour(),
		Weekday:         now.Weekday(),
		Weekend:         now.Weekday() == time.Saturday || now.Weekday() == time.Sunday,
		RecentCompleted: recentCompleted,
		RecentDeferred:  recentDeferred,
		CompletedToday:  completedToday,
		DeferredToday:   deferredToday,
		Energy:          energy,
		Productivity:    productivityLevel(w, energy, recentCompleted, recentDeferred),
		Calendar:        calendar.Snapshot(ctx, e.cal, now),
	}
}

// PredictEnergy estimates the user's energy at the given time on a
// 0–100 scale.
func (e *Engine) PredictEnergy(at time.Time) float64 {
	w := e.Weights()
	rate, samples := e.data.CompletionRateForHour(at.Hour())
	return predictEnergy(w, at.Hour(), rate, samples)
}

// CompletionProbability estimates the chance the task gets done if
// started under the given context.
func (e *Engine) CompletionProbability(f task.Facts, uc UserContext) float64 {
	w := e.Weights()
	kindRate, _ := e.data.CompletionRateForKind(f.Kind)
	hourRate, _ := e.data.CompletionRateForHour(uc.Hour)
	return completionProbability(w, f, uc, kindRate, hourRate)
}

// RankTasks scores every actionable task against one context snapshot
// and returns them ordered by priority, highest first. Tasks with
// unresolved blockers are excluded: the presentation layer lists them
// separately as blocked. Ordering is stable, so equal scores keep their
// input order.
func (e *Engine) RankTasks(ctx context.Context, tasks []task.Facts) []RankedTask {
	w := e.Weights()
	uc := e.CurrentContext(ctx)

	ranked := make([]RankedTask, 0, len(tasks))
	for _, f := range tasks {
		if e.graph != nil && !e.graph.IsActionable(f.ID) {
			continue
		}
		kindRate, _ := e.data.CompletionRateForKind(f.Kind)
		hourRate, _ := e.data.CompletionRateForHour(uc.Hour)
		prob := completionProbability(w, f, uc, kindRate, hourRate)
		ranked = append(ranked, RankedTask{
			Task:        f,
			Probability: prob,
			Score:       priorityScore(w, f, uc, prob),
			Reasons:     reasons(w, f, uc, prob),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	e.telem.Record(telemetry.KindRank, "", map[string]any{
		"tasks":  len(tasks),
		"ranked": len(ranked),
		"energy": uc.Energy,
		"level":  uc.Productivity,
	})
	return ranked
}

// ShouldNotify reports whether a proactive nudge for the task is worth
// sending right now. Busy calendar, low productivity, or a fatigued day
// all veto; otherwise the bar is a better-than-even completion chance.
func (e *Engine) ShouldNotify(ctx context.Context, f task.Facts) bool {
	w := e.Weights()
	uc := e.CurrentContext(ctx)

	allow := true
	var gate string
	switch {
	case uc.Calendar.Busy:
		allow, gate = false, "busy"
	case uc.Productivity == LevelLow:
		allow, gate = false, "low_productivity"
	case uc.CompletedToday+uc.DeferredToday > w.FatigueCap:
		allow, gate = false, "fatigued"
	default:
		allow = e.CompletionProbability(f, uc) > w.NotifyThreshold
		if !allow {
			gate = "low_probability"
		}
	}

	e.telem.Record(telemetry.KindNotifyGate, f.ID.String(), map[string]any{
		"allow": allow, "gate": gate,
	})
	return allow
}

// RecordCompletion logs a completed task outcome, learns personal
// context from it, and persists both stores in the background.
func (e *Engine) RecordCompletion(ctx context.Context, f task.Facts, timeToComplete *time.Duration) {
	uc := e.CurrentContext(ctx)
	r := e.buildRecord(f, uc)
	r.Completed = true
	if timeToComplete != nil {
		r.MinutesToDo = int(timeToComplete.Minutes())
	}
	e.data.Append(r)

	vendors := e.know.LearnFromCompletion(f, uc.Now)
	if len(vendors) > 0 {
		e.telem.Record(telemetry.KindContextLearned, f.ID.String(), map[string]any{"vendors": vendors})
	}
	e.telem.Record(telemetry.KindCompleted, f.ID.String(), nil)

	e.persistAsync(store.KeyBehavior)
	e.persistAsync(store.KeyKnowledge)
}

// RecordDefer logs a deferred task outcome with an optional reason and
// persists the dataset in the background.
func (e *Engine) RecordDefer(ctx context.Context, f task.Facts, reason string) {
	uc := e.CurrentContext(ctx)
	r := e.buildRecord(f, uc)
	r.DeferReason = reason
	e.data.Append(r)

	e.telem.Record(telemetry.KindDeferred, f.ID.String(), map[string]string{"reason": reason})
	e.persistAsync(store.KeyBehavior)
}

// PersonalContext returns every learned entry, highest confidence
// first.
func (e *Engine) PersonalContext() []knowledge.Entry {
	return e.know.Entries()
}

// UpdatePersonalContext stores a user edit and persists in the
// background.
func (e *Engine) UpdatePersonalContext(entry knowledge.Entry) {
	e.know.Put(entry)
	e.persistAsync(store.KeyKnowledge)
}

// DeletePersonalContext removes an entry and persists in the
// background.
func (e *Engine) DeletePersonalContext(category, key string) {
	e.know.Delete(category, key)
	e.persistAsync(store.KeyKnowledge)
}

// Statistics summarizes the engine's accumulated history.
type Statistics struct {
	TotalRecordings       int                 `json:"total_recordings"`
	OverallCompletionRate float64             `json:"overall_completion_rate"`
	BestHours             []behavior.HourStat `json:"best_hours"`
	PersonalContextCount  int                 `json:"personal_context_count"`
}

// bestHoursShown caps the statistics output; bestHoursMinSamples keeps
// one-off flukes out of the list.
const (
	bestHoursShown      = 3
	bestHoursMinSamples = 2
)

// GetStatistics returns aggregate figures for the stats surface.
func (e *Engine) GetStatistics() Statistics {
	rate, total := e.data.OverallCompletionRate()
	return Statistics{
		TotalRecordings:       total,
		OverallCompletionRate: rate,
		BestHours:             e.data.BestHours(bestHoursShown, bestHoursMinSamples),
		PersonalContextCount:  e.know.Len(),
	}
}

// Flush blocks until background persistence settles. Used by tests and
// shutdown paths; normal callers never need it.
func (e *Engine) Flush() {
	e.saves.Wait()
}

// buildRecord freezes the behavioral features for one outcome event.
func (e *Engine) buildRecord(f task.Facts, uc UserContext) behavior.Record {
	return behavior.Record{
		Timestamp:        uc.Now,
		Hour:             uc.Hour,
		Weekday:          uc.Weekday,
		Weekend:          uc.Weekend,
		Energy:           f.Energy,
		Kind:             f.Kind,
		EstimatedMinutes: f.EstimatedMinutes,
		SubtaskCount:     f.SubtaskCount,
		DependencyCount:  f.DependencyCount,
		DeferCount:       f.DeferCount,
		DaysSinceCreated: f.DaysOld(uc.Now),
		CompletedToday:   uc.CompletedToday,
		DeferredToday:    uc.DeferredToday,
	}
}

// persistAsync saves one store in the background. Failures are logged
// to telemetry and otherwise swallowed: the caller's operation already
// succeeded in memory.
func (e *Engine) persistAsync(key string) {
	if e.blobs == nil {
		return
	}
	e.saves.Add(1)
	go func() {
		defer e.saves.Done()
		ctx := context.Background()
		var err error
		switch key {
		case store.KeyBehavior:
			err = e.data.Persist(ctx, e.blobs)
		case store.KeyKnowledge:
			err = e.know.Persist(ctx, e.blobs)
		}
		if err != nil {
			e.telem.Record(telemetry.KindSaveFailed, "", map[string]string{
				"blob": key, "error": err.Error(),
			})
		}
	}()
}
