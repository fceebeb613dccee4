// Package task defines the small task-feature projection the engines
// operate on. The full task record (notes, subtasks, attachments) lives
// in the persistence layer; the graph and ranking engines only ever see
// an opaque ID plus the facts below.
package task

import (
	"time"

	"github.com/google/uuid"
)

// ID uniquely identifies a task. IDs are random 128-bit UUIDs so the
// engines can treat them as opaque values with no ordering semantics.
type ID = uuid.UUID

// NewID returns a fresh random task ID.
func NewID() ID {
	return uuid.New()
}

// EnergyLevel is the effort class a task demands of the user.
type EnergyLevel string

// Recognized energy levels. Input outside this set is treated as medium.
const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// Norm maps the energy level onto [0, 1] for comparison against the
// user's current normalized energy. Unknown levels read as medium.
func (e EnergyLevel) Norm() float64 {
	switch e {
	case EnergyLow:
		return 0.3
	case EnergyHigh:
		return 0.9
	default:
		return 0.6
	}
}

// Kind distinguishes tasks the user must do from tasks they want to do.
type Kind string

// The two task kinds. Obligations carry deadlines and guilt; aspirational
// tasks are the ones that quietly starve without a good moment.
const (
	KindObligation   Kind = "obligation"
	KindAspirational Kind = "aspirational"
)

// Facts is the read-only projection of a task used for scoring. Counts
// reflect the task's state at the moment the projection was taken.
type Facts struct {
	ID               ID          `json:"id"`
	Title            string      `json:"title"`
	RawInput         string      `json:"raw_input,omitempty"`
	Energy           EnergyLevel `json:"energy"`
	Kind             Kind        `json:"kind"`
	EstimatedMinutes int         `json:"estimated_minutes"`
	SubtaskCount     int         `json:"subtask_count"`
	DependencyCount  int         `json:"dependency_count"`
	DeferCount       int         `json:"defer_count"`
	CreatedAt        time.Time   `json:"created_at"`
	Deadline         *time.Time  `json:"deadline,omitempty"`
}

// DaysOld returns whole days elapsed since the task was created,
// never negative.
func (f Facts) DaysOld(now time.Time) int {
	if f.CreatedAt.IsZero() || now.Before(f.CreatedAt) {
		return 0
	}
	return int(now.Sub(f.CreatedAt).Hours() / 24)
}

// Quick reports whether the task is a five-minute-or-less item.
func (f Facts) Quick() bool {
	return f.EstimatedMinutes > 0 && f.EstimatedMinutes <= 5
}
