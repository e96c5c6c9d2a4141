package store

import (
	"context"
	"sync"

	"github.com/tessellate-ai/agentools/chatmodel"
	"github.com/tessellate-ai/agentools/pkg/llms"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]llms.Message
}

// NewMemoryStore returns a process-local MessageStore.
func NewMemoryStore() MessageStore {
	return &inMemory{}
}

func (m *inMemory) Messages(ctx context.Context) []llms.Message {
	runID := chatmodel.GetRunID(ctx)
	if runID == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil
	}
	return m.storage[runID]
}

func (m *inMemory) Add(ctx context.Context, msgs ...llms.Message) error {
	runID := chatmodel.GetRunID(ctx)
	if runID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]llms.Message)
	}
	m.storage[runID] = append(m.storage[runID], msgs...)
	return nil
}

func (m *inMemory) Reset(ctx context.Context) error {
	runID := chatmodel.GetRunID(ctx)
	if runID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, runID)
	}
	return nil
}
