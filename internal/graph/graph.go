// Package graph maintains the blocking-dependency relationships between
// tasks. It guarantees the relation stays acyclic, answers actionability
// queries, and cascades unblocking when a task completes.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/papapumpkin/orrery/internal/task"
)

// ErrCycle is returned when adding a dependency would create a cycle.
var ErrCycle = errors.New("cycle detected")

// Engine owns the dependency graph. It keeps two mirrored adjacency maps
// that are only ever mutated together under the engine's lock:
//
//	blockedBy: task → set of tasks that must complete first
//	blocks:    task → set of tasks waiting on it
//
// Missing keys read as empty sets. The invariant
// blocker ∈ blockedBy[blocked] ⟺ blocked ∈ blocks[blocker] holds at
// every point a caller can observe.
type Engine struct {
	mu        sync.RWMutex
	blockedBy map[task.ID]map[task.ID]bool
	blocks    map[task.ID]map[task.ID]bool
}

// New creates an empty dependency graph engine.
func New() *Engine {
	return &Engine{
		blockedBy: make(map[task.ID]map[task.ID]bool),
		blocks:    make(map[task.ID]map[task.ID]bool),
	}
}

// AddDependency records that blocked cannot start until blocker
// completes. Returns ErrCycle (and changes nothing) if the edge would
// let a task reach itself through the blocks relation; a self-edge is
// the one-node case of that.
func (e *Engine) AddDependency(blocker, blocked task.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if blocker == blocked {
		return fmt.Errorf("%w: task %s cannot block itself", ErrCycle, blocker)
	}
	// If blocker is already downstream of blocked, closing the edge
	// blocker→blocked would complete a loop.
	if e.reachable(blocked, blocker) {
		return fmt.Errorf("%w: %s already depends on %s", ErrCycle, blocker, blocked)
	}

	if e.blockedBy[blocked] == nil {
		e.blockedBy[blocked] = make(map[task.ID]bool)
	}
	if e.blocks[blocker] == nil {
		e.blocks[blocker] = make(map[task.ID]bool)
	}
	e.blockedBy[blocked][blocker] = true
	e.blocks[blocker][blocked] = true
	return nil
}

// RemoveDependency deletes the edge if present. Removing an absent edge
// is a no-op.
func (e *Engine) RemoveDependency(blocker, blocked task.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.blockedBy[blocked], blocker)
	if len(e.blockedBy[blocked]) == 0 {
		delete(e.blockedBy, blocked)
	}
	delete(e.blocks[blocker], blocked)
	if len(e.blocks[blocker]) == 0 {
		delete(e.blocks, blocker)
	}
}

// Blockers returns the tasks currently blocking id. The result is a
// copy; callers may mutate it freely. Unknown tasks yield an empty set.
func (e *Engine) Blockers(id task.ID) []task.ID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return sortedIDs(e.blockedBy[id])
}

// Blocked returns the tasks that id currently blocks.
func (e *Engine) Blocked(id task.ID) []task.ID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return sortedIDs(e.blocks[id])
}

// IsActionable reports whether id has no outstanding blockers.
func (e *Engine) IsActionable(id task.ID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.blockedBy[id]) == 0
}

// DependencyCount returns how many blockers id currently has.
func (e *Engine) DependencyCount(id task.ID) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.blockedBy[id])
}

// CompleteTask removes id from the graph entirely and returns the tasks
// that became actionable because id was their last remaining blocker.
// The cascade is atomic: either all of id's edges are gone or none are,
// as observed by any other caller.
func (e *Engine) CompleteTask(id task.ID) []task.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	var freed []task.ID
	for dependent := range e.blocks[id] {
		delete(e.blockedBy[dependent], id)
		if len(e.blockedBy[dependent]) == 0 {
			delete(e.blockedBy, dependent)
			freed = append(freed, dependent)
		}
	}
	delete(e.blocks, id)

	// Drop the completed task's own blocker entries so it no longer
	// appears on either side of the relation.
	for blocker := range e.blockedBy[id] {
		delete(e.blocks[blocker], id)
		if len(e.blocks[blocker]) == 0 {
			delete(e.blocks, blocker)
		}
	}
	delete(e.blockedBy, id)

	sort.Slice(freed, func(i, j int) bool {
		return freed[i].String() < freed[j].String()
	})
	return freed
}

// Len returns the number of tasks that currently appear on either side
// of the blocking relation.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[task.ID]bool, len(e.blockedBy)+len(e.blocks))
	for id := range e.blockedBy {
		seen[id] = true
	}
	for id := range e.blocks {
		seen[id] = true
	}
	return len(seen)
}

// Snapshot returns every edge as (blocker, blocked) pairs, sorted for
// deterministic output. Used by presentation glue and tests.
func (e *Engine) Snapshot() []Edge {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var edges []Edge
	for blocker, set := range e.blocks {
		for blocked := range set {
			edges = append(edges, Edge{Blocker: blocker, Blocked: blocked})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Blocker != edges[j].Blocker {
			return edges[i].Blocker.String() < edges[j].Blocker.String()
		}
		return edges[i].Blocked.String() < edges[j].Blocked.String()
	})
	return edges
}

// Edge is one directed blocking relation.
type Edge struct {
	Blocker task.ID `json:"blocker"`
	Blocked task.ID `json:"blocked"`
}

// reachable reports whether dst can be reached from src by following
// blocks edges. Callers must hold the lock.
func (e *Engine) reachable(src, dst task.ID) bool {
	visited := make(map[task.ID]bool)
	stack := []task.ID{src}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range e.blocks[cur] {
			if next == dst {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

func sortedIDs(set map[task.ID]bool) []task.ID {
	ids := make([]task.ID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
