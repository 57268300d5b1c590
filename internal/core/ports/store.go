package ports

import "go.trai.ch/patterneta/internal/core/domain"

// DurationStore holds computed pattern durations and persists them.
type DurationStore interface {
	// Load replaces the in-memory cache with the persisted one.
	// Failures are logged and leave an empty cache.
	Load()

	// Save rewrites the persisted cache atomically. Failures are logged.
	Save()

	// Get returns the duration of pattern at speed unless the entry is stale or missing.
	Get(pattern domain.PatternKey, speed int) (float64, bool)

	// Put merges one computed duration into the record of pattern.
	Put(pattern domain.PatternKey, speed int, seconds float64)

	// PutModTime records the file modification time the record was computed from.
	PutModTime(pattern domain.PatternKey, mtime domain.ModTime)

	// Merge merges a batch of durations and an optional freshness marker into the record of pattern.
	// A call with no durations leaves the cache untouched.
	Merge(pattern domain.PatternKey, durations map[int]float64, mtime *domain.ModTime)

	// Missing returns the speeds that still need computing for pattern.
	// Every speed is missing when the record is absent or older than current.
	Missing(pattern domain.PatternKey, speeds []int, current domain.ModTime) []int

	// Remember records where a pattern was last seen so freshness checks can stat it.
	Remember(file domain.PatternFile)

	// Clear empties the cache and persists the empty state.
	Clear()

	// Len returns the number of cached patterns.
	Len() int

	// Snapshot returns a deep copy of the cache.
	Snapshot() domain.Cache
}
