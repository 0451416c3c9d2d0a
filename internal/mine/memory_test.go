package mine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGet(t *testing.T) {
	m := NewMemory()
	m.Set("web1", "grains.item", map[string]any{"roles": []any{"web"}})
	m.Set("web2", "grains.item", map[string]any{"roles": []any{"db"}})
	m.Set("web2", "network.ip_addrs", []any{"10.0.0.2"})

	ctx := context.Background()

	got, err := m.Get(ctx, "*", "grains.item")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.Get(ctx, "web2", "network.ip_addrs")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"web2": []any{"10.0.0.2"}}, got)

	got, err = m.Get(ctx, "web1", "network.ip_addrs")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryMinions(t *testing.T) {
	m := NewMemory()
	m.Set("b", "grains.item", map[string]any{})
	m.Set("a", "grains.item", map[string]any{})
	m.Set("a", "network.ip_addrs", []any{"10.0.0.1"})

	assert.Equal(t, []string{"a", "b"}, m.Minions())
}

func TestMemoryConcurrentReaders(t *testing.T) {
	m := NewMemory()
	m.Set("web1", "grains.item", map[string]any{"roles": []any{"web"}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := m.Get(context.Background(), "*", "grains.item")
				assert.NoError(t, err)
				assert.Contains(t, got, "web1")
			}
		}()
	}
	m.Set("web2", "grains.item", map[string]any{})
	wg.Wait()
}

func TestMemoryGetCanceled(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Get(ctx, "*", "grains.item")
	assert.ErrorIs(t, err, context.Canceled)
}
