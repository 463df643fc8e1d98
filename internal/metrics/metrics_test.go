package metrics

import (
	"strings"
	"testing"
)

func TestRegistryCounters(t *testing.T) {
	registry := &Registry{}
	registry.IncRawEvents()
	registry.IncRawEvents()
	registry.IncObservations()
	registry.IncRenamesCorrelated()

	snapshot := registry.Snapshot()
	if snapshot.RawEvents != 2 {
		t.Fatalf("expected 2 raw events, got %d", snapshot.RawEvents)
	}
	if snapshot.Observations != 1 {
		t.Fatalf("expected 1 observation, got %d", snapshot.Observations)
	}
	if snapshot.RenamesCorrelated != 1 {
		t.Fatalf("expected 1 rename, got %d", snapshot.RenamesCorrelated)
	}
	if snapshot.DeletionsFinalized != 0 {
		t.Fatalf("expected 0 deletions, got %d", snapshot.DeletionsFinalized)
	}
}

func TestWritePrometheus(t *testing.T) {
	registry := &Registry{}
	registry.IncObservations()
	registry.IncReadFailures()

	builder := &strings.Builder{}
	if err := registry.WritePrometheus(builder); err != nil {
		t.Fatalf("write prometheus: %v", err)
	}
	output := builder.String()

	if !strings.Contains(output, "editwatch_observations_total 1") {
		t.Fatalf("missing observations counter:\n%s", output)
	}
	if !strings.Contains(output, "editwatch_read_failures_total 1") {
		t.Fatalf("missing read failures counter:\n%s", output)
	}
	if !strings.Contains(output, "# TYPE editwatch_raw_events_total counter") {
		t.Fatalf("missing type line:\n%s", output)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var registry *Registry
	registry.IncRawEvents()
	registry.IncBusDropped()
	if snapshot := registry.Snapshot(); snapshot != (Snapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snapshot)
	}
	if err := registry.WritePrometheus(&strings.Builder{}); err != nil {
		t.Fatalf("nil registry write: %v", err)
	}
}
