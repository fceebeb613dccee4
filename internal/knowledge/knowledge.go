// Package knowledge is the small learned-fact base the ranking engine
// builds from completed tasks: which vendors the user deals with and
// when they prefer to do each kind of task. Facts carry a confidence
// that only ever grows from repeated observation; user edits are pinned
// and never silently overwritten by inference.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/papapumpkin/orrery/internal/store"
)

// Entry categories.
const (
	CategoryVendor = "vendor"
	CategoryTiming = "timing"
)

// Confidence tuning. New inferred entries start at half confidence and
// gain a step per repeat observation, capped at certainty.
const (
	initialConfidence = 0.5
	confidenceStep    = 0.1
	maxConfidence     = 1.0
)

// Entry is one learned fact.
type Entry struct {
	Category    string    `json:"category"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Confidence  float64   `json:"confidence"`
	Occurrences int       `json:"occurrences"`
	LastSeen    time.Time `json:"last_seen"`
	UserEdited  bool      `json:"user_edited"`
}

// Store is the mutex-guarded personal context base. Entries are keyed
// by (category, key).
type Store struct {
	mu      sync.RWMutex
	entries map[entryKey]Entry
}

type entryKey struct {
	category string
	key      string
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[entryKey]Entry)}
}

// Load restores the store from the persistence provider. Missing or
// corrupt blobs yield an empty store; the bool reports whether the
// stored blob was usable.
func Load(ctx context.Context, p store.Provider) (*Store, bool) {
	s := New()
	if p == nil {
		return s, true
	}
	data, err := p.Load(ctx, store.KeyKnowledge)
	if err != nil || data == nil {
		return s, err == nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return s, false
	}
	for _, e := range entries {
		s.entries[entryKey{e.Category, e.Key}] = e
	}
	return s, true
}

// Persist writes the entries through the provider, sorted for a stable
// blob. Failure handling is the caller's concern.
func (s *Store) Persist(ctx context.Context, p store.Provider) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(s.Entries())
	if err != nil {
		return fmt.Errorf("knowledge: marshal entries: %w", err)
	}
	if err := p.Save(ctx, store.KeyKnowledge, data); err != nil {
		return fmt.Errorf("knowledge: save entries: %w", err)
	}
	return nil
}

// Observe records an inferred sighting of a fact. A new fact starts at
// half confidence with one occurrence. A repeat sighting bumps
// confidence by one step (capped), increments occurrences, and refreshes
// LastSeen. User-edited entries keep their value and edited flag;
// inference never downgrades or overwrites an edit.
func (s *Store) Observe(category, key, value string, at time.Time) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := entryKey{category, key}
	e, ok := s.entries[k]
	if !ok {
		e = Entry{
			Category:    category,
			Key:         key,
			Value:       value,
			Confidence:  initialConfidence,
			Occurrences: 1,
			LastSeen:    at,
		}
		s.entries[k] = e
		return e
	}

	e.Confidence = min(e.Confidence+confidenceStep, maxConfidence)
	e.Occurrences++
	e.LastSeen = at
	if !e.UserEdited {
		e.Value = value
	}
	s.entries[k] = e
	return e
}

// Put stores an explicit user edit. The entry keeps its occurrence
// history if it already existed and is marked edited, which pins its
// value against future inference.
func (s *Store) Put(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := entryKey{e.Category, e.Key}
	if prev, ok := s.entries[k]; ok && e.Occurrences == 0 {
		e.Occurrences = prev.Occurrences
	}
	if e.Occurrences == 0 {
		e.Occurrences = 1
	}
	e.UserEdited = true
	s.entries[k] = e
}

// Delete removes the entry for (category, key). Deleting an absent
// entry is a no-op.
func (s *Store) Delete(category, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, entryKey{category, key})
}

// Get returns the entry for (category, key) and whether it exists.
func (s *Store) Get(category, key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryKey{category, key}]
	return e, ok
}

// Entries returns all entries sorted by confidence descending, with
// (category, key) as a deterministic tiebreak.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Len returns the entry count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
