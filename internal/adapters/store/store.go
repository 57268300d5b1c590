// Package store implements the persisted pattern duration cache.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DurationStore = (*Store)(nil)

// ModTimer reports the current modification time of a pattern file.
type ModTimer interface {
	ModTime(path string) (domain.ModTime, error)
}

// Store implements ports.DurationStore backed by a single cache file.
//
// mu guards the in-memory cache and path index. saveMu serializes file rewrites so a
// later Save always persists a later snapshot. No method holding mu calls another
// method that takes it.
type Store struct {
	path        string
	patternsDir string
	codec       Codec
	files       ModTimer
	logger      ports.Logger

	mu    sync.RWMutex
	cache domain.Cache
	paths map[domain.PatternKey]string

	saveMu      sync.Mutex
	lastWritten uint64
	hasWritten  bool
}

// New creates a Store persisting to path. Patterns without a remembered location are
// looked up directly under patternsDir when checking freshness.
func New(path, patternsDir string, files ModTimer, logger ports.Logger) *Store {
	return &Store{
		path:        path,
		patternsDir: patternsDir,
		codec:       CodecFor(path),
		files:       files,
		logger:      logger,
		cache:       make(domain.Cache),
		paths:       make(map[domain.PatternKey]string),
	}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory cache with the persisted one.
func (s *Store) Load() {
	cache, err := s.read()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Error(err)
		s.cache = make(domain.Cache)
		return
	}
	s.cache = cache
}

func (s *Store) read() (domain.Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(domain.Cache), nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", s.path)
	}

	w, err := s.codec.Decode(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheDecodeFailed.Error()), "path", s.path)
	}

	cache, err := fromWire(w)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheDecodeFailed.Error()), "path", s.path)
	}
	return cache, nil
}

// Save rewrites the cache file atomically. Failures are logged.
func (s *Store) Save() {
	if err := s.flush(); err != nil {
		s.logger.Error(err)
	}
}

func (s *Store) flush() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := s.codec.Encode(toWire(s.cache))
	s.mu.RUnlock()
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheEncodeFailed.Error())
	}

	sum := xxhash.Sum64(data)
	if s.hasWritten && sum == s.lastWritten {
		if _, statErr := os.Stat(s.path); statErr == nil {
			return nil
		}
	}

	if err := atomicWriteFile(s.path, data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", s.path)
	}

	s.lastWritten = sum
	s.hasWritten = true
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "duration-cache-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Get returns the cached duration unless the pattern file changed after it was computed.
// Entries without a freshness marker, or whose file cannot be stat'ed, are returned as-is.
func (s *Store) Get(pattern domain.PatternKey, speed int) (float64, bool) {
	s.mu.RLock()
	rec, ok := s.cache[pattern]
	var seconds float64
	var stored *domain.ModTime
	if ok {
		seconds, ok = rec.Durations[speed]
		if rec.ModTime != nil {
			mt := *rec.ModTime
			stored = &mt
		}
	}
	path := s.locate(pattern)
	s.mu.RUnlock()

	if !ok {
		return 0, false
	}

	if stored != nil {
		current, err := s.files.ModTime(path)
		if err == nil && current > *stored {
			return 0, false
		}
	}

	return seconds, true
}

// locate returns the last known path of pattern. Callers must hold mu.
func (s *Store) locate(pattern domain.PatternKey) string {
	if p, ok := s.paths[pattern]; ok {
		return p
	}
	return filepath.Join(s.patternsDir, string(pattern))
}

// Put merges one duration into the record of pattern.
func (s *Store) Put(pattern domain.PatternKey, speed int, seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(pattern).Durations[speed] = seconds
}

// PutModTime records the modification time the record of pattern was computed from.
// It does nothing for patterns with no computed durations.
func (s *Store) PutModTime(pattern domain.PatternKey, mtime domain.ModTime) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.cache[pattern]
	if !ok {
		return
	}
	rec.ModTime = &mtime
}

// Merge merges durations and, when given, the freshness marker into the record of pattern.
// Durations computed from an older version of the file are dropped first.
func (s *Store) Merge(pattern domain.PatternKey, durations map[int]float64, mtime *domain.ModTime) {
	if len(durations) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.record(pattern)
	if mtime != nil && rec.StaleAt(*mtime) {
		clear(rec.Durations)
	}
	for speed, seconds := range durations {
		rec.Durations[speed] = seconds
	}
	if mtime != nil {
		mt := *mtime
		rec.ModTime = &mt
	}
}

// record returns the record of pattern, creating it. Callers must hold mu for writing.
func (s *Store) record(pattern domain.PatternKey) *domain.CacheRecord {
	rec, ok := s.cache[pattern]
	if !ok {
		rec = domain.NewCacheRecord()
		s.cache[pattern] = rec
	}
	return rec
}

// Missing returns the speeds that still need computing for pattern.
func (s *Store) Missing(pattern domain.PatternKey, speeds []int, current domain.ModTime) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.cache[pattern]
	if !ok || rec.StaleAt(current) {
		return slices.Clone(speeds)
	}

	var missing []int
	for _, speed := range speeds {
		if _, cached := rec.Durations[speed]; !cached {
			missing = append(missing, speed)
		}
	}
	return missing
}

// Remember records where pattern was last discovered.
func (s *Store) Remember(file domain.PatternFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paths[file.Key] = file.Path
}

// Clear empties the cache and persists the empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cache = make(domain.Cache)
	s.mu.Unlock()

	s.Save()
}

// Len returns the number of cached patterns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.cache)
}

// Snapshot returns a deep copy of the cache.
func (s *Store) Snapshot() domain.Cache {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cache.Clone()
}
