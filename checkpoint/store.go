// Package checkpoint persists workflow run snapshots so runs can be
// cancelled, resumed and driven across process boundaries.
package checkpoint

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Status describes where a checkpointed run stands.
type Status string

const (
	StatusRunning       Status = "running"
	StatusAwaitingInput Status = "awaiting_input"
	StatusCompleted     Status = "completed"
)

// ErrNotFound is returned by Load when no checkpoint exists for the run.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is one persisted snapshot: the full workflow state plus the
// last-completed node, which is sufficient to resume the run.
type Checkpoint struct {
	RunID     string         `json:"run_id"`
	State     map[string]any `json:"state"`
	LastNode  string         `json:"last_node"`
	Status    Status         `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store persists checkpoints keyed by run identifier. Save overwrites any
// previous snapshot for the same run; concurrent runs never share a key.
type Store interface {
	Save(ctx context.Context, cp *Checkpoint) error
	Load(ctx context.Context, runID string) (*Checkpoint, error)
	Delete(ctx context.Context, runID string) error
}

// MemoryStore keeps checkpoints in process memory. It is the default for
// tests and single-process hosts.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Checkpoint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Checkpoint)}
}

// Save stores a snapshot copy of the checkpoint so later state mutations by
// the running workflow cannot corrupt it.
func (m *MemoryStore) Save(_ context.Context, cp *Checkpoint) error {
	if cp == nil || cp.RunID == "" {
		return errors.New("checkpoint requires a run id")
	}
	snap := *cp
	snap.State = make(map[string]any, len(cp.State))
	for k, v := range cp.State {
		snap.State[k] = v
	}
	m.mu.Lock()
	m.runs[cp.RunID] = &snap
	m.mu.Unlock()
	return nil
}

// Load returns the snapshot for the run, or ErrNotFound.
func (m *MemoryStore) Load(_ context.Context, runID string) (*Checkpoint, error) {
	m.mu.RLock()
	cp, ok := m.runs[runID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := *cp
	out.State = make(map[string]any, len(cp.State))
	for k, v := range cp.State {
		out.State[k] = v
	}
	return &out, nil
}

// Delete removes the snapshot for the run. Deleting an unknown run is not
// an error.
func (m *MemoryStore) Delete(_ context.Context, runID string) error {
	m.mu.Lock()
	delete(m.runs, runID)
	m.mu.Unlock()
	return nil
}
