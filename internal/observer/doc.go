// Package observer turns raw filesystem notifications into coalesced file
// edit observations.
//
// It owns the per-path state: the content cache seeded at construction, the
// debounce timers that fold event bursts into one commit, and the recent
// delete table that distinguishes an atomic rename from a real delete plus
// create. All tables are guarded by a single mutex; timer callbacks re-check
// their pending marks under that mutex so a cancelled task that already
// started firing degrades to a no-op.
package observer
