package publish

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"tuto-go/internal/tuto"
)

// MemoryPublisher keeps published bundles in memory. Safe for concurrent use.
type MemoryPublisher struct {
	mu      sync.RWMutex
	bundles map[string][]byte
}

var _ tuto.Publisher = (*MemoryPublisher)(nil)

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{bundles: make(map[string][]byte)}
}

func (m *MemoryPublisher) Put(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[name] = data
	return nil
}

// Get returns a published bundle.
func (m *MemoryPublisher) Get(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.bundles[name]
	return data, ok
}

// Names returns the published bundle names, sorted.
func (m *MemoryPublisher) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.bundles))
	for name := range m.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateSetup always succeeds.
func (m *MemoryPublisher) ValidateSetup() error {
	return nil
}
