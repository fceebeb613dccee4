// Package store provides the opaque blob persistence boundary used to
// keep the behavior dataset, personal context, and task list between
// sessions. The engines treat a Provider as an external collaborator:
// a load miss is nil bytes, and callers are expected to swallow errors
// and fall back to defaults rather than propagate them.
package store

import (
	"context"
	"sync"
)

// Well-known blob keys.
const (
	KeyBehavior  = "behavior.dataset"
	KeyKnowledge = "knowledge.entries"
	KeyTasks     = "tasks"
	KeyEdges     = "graph.edges"
)

// Provider persists opaque blobs by key.
type Provider interface {
	// Load returns the blob for key, or nil bytes and no error when the
	// key has never been saved.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save durably stores the blob under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error
}

// Memory is an in-process Provider used by tests and as the fallback
// when no database is configured. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Load returns a copy of the stored blob, or nil if absent.
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save stores a copy of the blob under key.
func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	return nil
}
