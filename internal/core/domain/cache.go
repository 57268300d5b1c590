package domain

import "maps"

// CacheRecord holds the computed durations of one pattern and its freshness marker.
type CacheRecord struct {
	// Durations maps a speed to the estimated duration in seconds.
	Durations map[int]float64
	// ModTime is the pattern file modification time at computation time.
	// Nil for legacy entries written without one.
	ModTime *ModTime
}

// NewCacheRecord creates an empty record.
func NewCacheRecord() *CacheRecord {
	return &CacheRecord{Durations: make(map[int]float64)}
}

// Clone returns a deep copy of the record.
func (r *CacheRecord) Clone() *CacheRecord {
	c := &CacheRecord{Durations: maps.Clone(r.Durations)}
	if c.Durations == nil {
		c.Durations = make(map[int]float64)
	}
	if r.ModTime != nil {
		mt := *r.ModTime
		c.ModTime = &mt
	}
	return c
}

// StaleAt reports whether a file with the given current modification time is newer than the record.
func (r *CacheRecord) StaleAt(current ModTime) bool {
	return r.ModTime != nil && current > *r.ModTime
}

// Cache maps pattern keys to their records.
type Cache map[PatternKey]*CacheRecord

// Clone returns a deep copy of the cache.
func (c Cache) Clone() Cache {
	out := make(Cache, len(c))
	for k, r := range c {
		out[k] = r.Clone()
	}
	return out
}
