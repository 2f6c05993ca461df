// internal/store/memory.go
//
// In-memory implementation of Documents and History.
// Characteristics:
//   - Documents are kept JSON-encoded so Load decodes exactly like the file backend.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/robalobadob/numberguess/internal/persist"
)

// Memory is a map-backed Documents and History.
type Memory struct {
	mu     sync.RWMutex    // guards docs and rounds
	docs   map[Name][]byte // keyed by document name
	rounds []RoundRecord   // oldest first
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[Name][]byte)}
}

func (m *Memory) Load(ctx context.Context, name Name, dst any) (persist.Source, error) {
	if err := name.check(); err != nil {
		return persist.SourceDefault, err
	}
	m.mu.RLock()
	data, ok := m.docs[name]
	m.mu.RUnlock()
	if !ok {
		return persist.SourceDefault, nil
	}
	if err := persist.DecodeInto(data, dst, json.Unmarshal); err != nil {
		return persist.SourceDefault, nil
	}
	return persist.SourceStored, nil
}

func (m *Memory) Save(ctx context.Context, name Name, v any) error {
	if err := name.check(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = data
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) RecordRound(ctx context.Context, r RoundRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, r)
	return nil
}

func (m *Memory) RecentRounds(ctx context.Context, limit int) ([]RoundRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	if limit > len(m.rounds) {
		limit = len(m.rounds)
	}
	out := make([]RoundRecord, 0, limit)
	for i := len(m.rounds) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.rounds[i])
	}
	return out, nil
}
