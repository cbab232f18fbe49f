package sink

import (
	"sync"

	"github.com/logtape-go/logtape/core"
)

// Memory captures records in memory for test assertions.
type Memory struct {
	mu      sync.RWMutex
	records []core.Record
}

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Emit stores a deep-enough copy of record (the Properties map is
// cloned so a caller mutating it afterward can't corrupt history).
func (m *Memory) Emit(record *core.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *record
	if record.Properties != nil {
		cp.Properties = make(map[string]any, len(record.Properties))
		for k, v := range record.Properties {
			cp.Properties[k] = v
		}
	}
	m.records = append(m.records, cp)
}

// Close satisfies core.SyncReleaser.
func (m *Memory) Close() error { return nil }

// Records returns a copy of every captured record, in emit order.
func (m *Memory) Records() []core.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Find returns every captured record matching predicate.
func (m *Memory) Find(predicate func(*core.Record) bool) []core.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.Record
	for i := range m.records {
		if predicate(&m.records[i]) {
			out = append(out, m.records[i])
		}
	}
	return out
}

// Clear discards every captured record.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = m.records[:0]
}

// Count returns the number of captured records.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
