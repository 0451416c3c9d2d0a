package mine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Snapshot is the YAML layout of a mine dump:
//
//	minions:
//	  web1:
//	    grains.item:
//	      roles: [web]
//	    network.ip_addrs: [10.0.0.7]
type Snapshot struct {
	Minions map[string]map[string]any `yaml:"minions"`
}

// LoadFile reads a YAML mine snapshot into a Memory mine
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mine snapshot: %w", err)
	}
	return Parse(data)
}

// Parse builds a Memory mine from YAML snapshot data
func Parse(data []byte) (*Memory, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse mine snapshot: %w", err)
	}

	m := NewMemory()
	for id, funcs := range snap.Minions {
		if id == "" {
			return nil, fmt.Errorf("parse mine snapshot: empty minion id")
		}
		for function, value := range funcs {
			m.Set(id, function, value)
		}
	}
	return m, nil
}

// Reload replaces the mine's contents with a freshly read snapshot.
// On error the current contents are kept.
func (m *Memory) Reload(path string) error {
	fresh, err := LoadFile(path)
	if err != nil {
		return err
	}

	fresh.mu.RLock()
	data := fresh.data
	fresh.mu.RUnlock()

	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}
