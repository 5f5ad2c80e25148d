package snapshot

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Documents live only as long as the
// process; useful for a single-instance deployment and for tests.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]Document),
		now:  time.Now,
	}
}

func (m *Memory) Put(_ context.Context, doc Document) error {
	payload := make([]byte, len(doc.Payload))
	copy(payload, doc.Payload)
	doc.Payload = payload
	doc.UpdatedAt = m.now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.Path()] = doc
	return nil
}

func (m *Memory) Get(_ context.Context, seasonID string, kind Kind) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[Path(seasonID, kind)]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
