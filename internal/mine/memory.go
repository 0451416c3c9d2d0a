package mine

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process mine. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]any
}

// NewMemory creates an empty in-memory mine
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]any),
	}
}

// Set stores the value a minion published for function
func (m *Memory) Set(id, function string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	funcs, ok := m.data[id]
	if !ok {
		funcs = make(map[string]any)
		m.data[id] = funcs
	}
	funcs[function] = value
}

// Minions returns the known minion identities, sorted
func (m *Memory) Minions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get implements Mine. Minions that never published function are omitted.
func (m *Memory) Get(ctx context.Context, target, function string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]any)
	for id, funcs := range m.data {
		if !Match(target, id) {
			continue
		}
		if v, ok := funcs[function]; ok {
			result[id] = v
		}
	}
	return result, nil
}
