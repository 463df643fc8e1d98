// Package event carries file edit observations from the watcher core to
// consumers via a bounded pub/sub bus.
package event

import (
	"context"
	"sync"
	"time"
)

// SourceUser tags observations that originate from user edits on disk.
const SourceUser = "user"

// Observation describes one logical file change: the coalesced result of a
// burst of raw filesystem events. Immutable once constructed.
type Observation struct {
	Path       string    `json:"path"`
	PrevExist  bool      `json:"prev_exist"`
	OldContent string    `json:"old_content"`
	NewContent string    `json:"new_content"`
	Diff       string    `json:"diff"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observed_at"`
}

// Sink receives every emitted observation, in emission order.
type Sink interface {
	Append(ctx context.Context, observation Observation) error
}

// MemorySink collects observations for tests.
type MemorySink struct {
	mu           sync.Mutex
	observations []Observation
	err          error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (sink *MemorySink) Append(_ context.Context, observation Observation) error {
	if sink == nil {
		return nil
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.observations = append(sink.observations, observation)
	return sink.err
}

func (sink *MemorySink) Observations() []Observation {
	if sink == nil {
		return nil
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	out := make([]Observation, len(sink.observations))
	copy(out, sink.observations)
	return out
}

func (sink *MemorySink) SetError(err error) {
	if sink == nil {
		return
	}
	sink.mu.Lock()
	sink.err = err
	sink.mu.Unlock()
}
