// Package metrics tracks watcher counters and renders them in the
// Prometheus text exposition format.
package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

type Registry struct {
	rawEvents          atomic.Int64
	eventsCoalesced    atomic.Int64
	observations       atomic.Int64
	renamesCorrelated  atomic.Int64
	deletionsFinalized atomic.Int64
	readFailures       atomic.Int64
	busDropped         atomic.Int64
	watchErrors        atomic.Int64
}

var Default = &Registry{}

func (r *Registry) IncRawEvents() {
	if r == nil {
		return
	}
	r.rawEvents.Add(1)
}

func (r *Registry) IncEventsCoalesced() {
	if r == nil {
		return
	}
	r.eventsCoalesced.Add(1)
}

func (r *Registry) IncObservations() {
	if r == nil {
		return
	}
	r.observations.Add(1)
}

func (r *Registry) IncRenamesCorrelated() {
	if r == nil {
		return
	}
	r.renamesCorrelated.Add(1)
}

func (r *Registry) IncDeletionsFinalized() {
	if r == nil {
		return
	}
	r.deletionsFinalized.Add(1)
}

func (r *Registry) IncReadFailures() {
	if r == nil {
		return
	}
	r.readFailures.Add(1)
}

func (r *Registry) IncBusDropped() {
	if r == nil {
		return
	}
	r.busDropped.Add(1)
}

func (r *Registry) IncWatchErrors() {
	if r == nil {
		return
	}
	r.watchErrors.Add(1)
}

// Snapshot holds a point-in-time copy of every counter.
type Snapshot struct {
	RawEvents          int64
	EventsCoalesced    int64
	Observations       int64
	RenamesCorrelated  int64
	DeletionsFinalized int64
	ReadFailures       int64
	BusDropped         int64
	WatchErrors        int64
}

func (r *Registry) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		RawEvents:          r.rawEvents.Load(),
		EventsCoalesced:    r.eventsCoalesced.Load(),
		Observations:       r.observations.Load(),
		RenamesCorrelated:  r.renamesCorrelated.Load(),
		DeletionsFinalized: r.deletionsFinalized.Load(),
		ReadFailures:       r.readFailures.Load(),
		BusDropped:         r.busDropped.Load(),
		WatchErrors:        r.watchErrors.Load(),
	}
}

func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}
	snapshot := r.Snapshot()

	writeCounter(writer, "editwatch_raw_events_total", "Raw filesystem notifications received", snapshot.RawEvents)
	writeCounter(writer, "editwatch_events_coalesced_total", "Raw events superseded inside a debounce window", snapshot.EventsCoalesced)
	writeCounter(writer, "editwatch_observations_total", "File edit observations emitted", snapshot.Observations)
	writeCounter(writer, "editwatch_renames_correlated_total", "Delete/create pairs correlated as renames", snapshot.RenamesCorrelated)
	writeCounter(writer, "editwatch_deletions_finalized_total", "Deletions finalized after the rename window", snapshot.DeletionsFinalized)
	writeCounter(writer, "editwatch_read_failures_total", "File reads that resolved to empty content", snapshot.ReadFailures)
	writeCounter(writer, "editwatch_bus_dropped_total", "Observations dropped by slow bus subscribers", snapshot.BusDropped)
	writeCounter(writer, "editwatch_watch_errors_total", "Errors reported by the notification source", snapshot.WatchErrors)
	return nil
}

func writeCounter(writer io.Writer, metric, help string, value int64) {
	fmt.Fprintf(writer, "# HELP %s %s\n", metric, help)
	fmt.Fprintf(writer, "# TYPE %s counter\n", metric)
	fmt.Fprintf(writer, "%s %d\n", metric, value)
}
