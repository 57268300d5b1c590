// Package domain contains the core types of the pattern duration cache.
package domain

import (
	"path/filepath"
	"time"
)

// PatternKey identifies a pattern in the cache by its file name.
// Patterns with the same name in different subdirectories share a key.
type PatternKey string

// KeyFor returns the cache key for the pattern file at path.
func KeyFor(path string) PatternKey {
	return PatternKey(filepath.Base(path))
}

// String returns the key as a plain string.
func (k PatternKey) String() string {
	return string(k)
}

// Coordinate is one polar point of a pattern: an angle in radians and a radius.
type Coordinate struct {
	Theta float64
	Rho   float64
}

// PatternFile is a discovered pattern file.
type PatternFile struct {
	Key  PatternKey
	Path string
}

// ModTime is a file modification time expressed as Unix seconds with a fractional part.
// This is the representation stored in the durable cache.
type ModTime float64

// ModTimeOf converts a time.Time into a ModTime.
func ModTimeOf(t time.Time) ModTime {
	return ModTime(float64(t.UnixNano()) / float64(time.Second))
}
