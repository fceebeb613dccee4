package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/orrery/internal/config"
	"github.com/papapumpkin/orrery/internal/graph"
	"github.com/papapumpkin/orrery/internal/ranking"
	"github.com/papapumpkin/orrery/internal/store"
	"github.com/papapumpkin/orrery/internal/task"
	"github.com/papapumpkin/orrery/internal/telemetry"
)

// session wires the engines together for one CLI invocation: open the
// store, rebuild the dependency graph from persisted edges, and stand
// up the ranking engine over them.
type session struct {
	cfg    config.Config
	blobs  store.Provider
	graph  *graph.Engine
	engine *ranking.Engine
	telem  *telemetry.Emitter
	tasks  []task.Facts

	closers []func() error
}

// openSession builds a session from config. A broken or missing store
// degrades to in-memory state so every command still works.
func openSession(ctx context.Context) (*session, error) {
	s := &session{cfg: config.Load()}

	if s.cfg.TelemetryPath != "" {
		em, err := telemetry.NewEmitter(s.cfg.TelemetryPath)
		if err == nil {
			s.telem = em
			s.closers = append(s.closers, em.Close)
		}
	}

	s.blobs = s.openStore(ctx)
	s.graph = graph.New()
	s.restoreEdges(ctx)
	s.restoreTasks(ctx)

	s.engine = ranking.New(ctx, ranking.Options{
		Graph:     s.graph,
		Store:     s.blobs,
		Telemetry: s.telem,
		Weights:   &s.cfg.Weights,
	})
	config.Watch(func(cfg config.Config) {
		s.engine.SetWeights(cfg.Weights)
	})
	return s, nil
}

// openStore prefers MySQL when a DSN is configured, then SQLite at the
// configured path, then plain memory.
func (s *session) openStore(ctx context.Context) store.Provider {
	if s.cfg.MySQLDSN != "" {
		if m, err := store.OpenMySQL(ctx, s.cfg.MySQLDSN); err == nil {
			s.closers = append(s.closers, m.Close)
			return m
		}
	}
	if s.cfg.StorePath != "" {
		if err := os.MkdirAll(filepath.Dir(s.cfg.StorePath), 0o755); err == nil {
			if db, err := store.OpenSQLite(ctx, s.cfg.StorePath); err == nil {
				s.closers = append(s.closers, db.Close)
				return db
			}
		}
	}
	return store.NewMemory()
}

// restoreEdges replays persisted dependency edges into a fresh graph.
// Edges that no longer satisfy the acyclicity check are dropped.
func (s *session) restoreEdges(ctx context.Context) {
	data, err := s.blobs.Load(ctx, store.KeyEdges)
	if err != nil || data == nil {
		return
	}
	var edges []graph.Edge
	if err := json.Unmarshal(data, &edges); err != nil {
		return
	}
	for _, e := range edges {
		_ = s.graph.AddDependency(e.Blocker, e.Blocked)
	}
}

func (s *session) restoreTasks(ctx context.Context) {
	data, err := s.blobs.Load(ctx, store.KeyTasks)
	if err != nil || data == nil {
		return
	}
	_ = json.Unmarshal(data, &s.tasks)
}

// saveState persists the task list and the graph's edge set.
func (s *session) saveState(ctx context.Context) error {
	data, err := json.Marshal(s.tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := s.blobs.Save(ctx, store.KeyTasks, data); err != nil {
		return err
	}
	edges, err := json.Marshal(s.graph.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal edges: %w", err)
	}
	return s.blobs.Save(ctx, store.KeyEdges, edges)
}

// close flushes background saves and releases resources.
func (s *session) close() {
	s.engine.Flush()
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// find resolves a task reference: an exact ID, an ID prefix, or a
// case-insensitive title substring. Ambiguous references are an error.
func (s *session) find(ref string) (task.Facts, error) {
	var matches []task.Facts
	lower := strings.ToLower(ref)
	for _, t := range s.tasks {
		id := t.ID.String()
		if id == ref {
			return t, nil
		}
		if strings.HasPrefix(id, ref) || strings.Contains(strings.ToLower(t.Title), lower) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return task.Facts{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		var titles []string
		for _, m := range matches {
			titles = append(titles, fmt.Sprintf("%s (%s)", m.Title, shortID(m.ID)))
		}
		return task.Facts{}, fmt.Errorf("ambiguous task %q: %s", ref, strings.Join(titles, ", "))
	}
}

// remove drops a task from the in-memory list by ID.
func (s *session) remove(id task.ID) {
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// update replaces a task in the in-memory list by ID.
func (s *session) update(f task.Facts) {
	for i, t := range s.tasks {
		if t.ID == f.ID {
			s.tasks[i] = f
			return
		}
	}
}

func shortID(id task.ID) string {
	return id.String()[:8]
}
