package app

import (
	"context"
	"sync"

	"go.trai.ch/patterneta/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
	"go.trai.ch/patterneta/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Service is the control and status surface of the duration cache.
// It is constructed once per configuration and shared by reference.
type Service struct {
	store         ports.DurationStore
	sched         *scheduler.Scheduler
	logger        ports.Logger
	patternsDir   string
	defaultSpeeds []int
	newWatcher    func() (ports.Watcher, error)

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	watcher ports.Watcher
	wg      sync.WaitGroup
}

// NewService creates a Service. newWatcher may be nil to disable watching.
func NewService(
	store ports.DurationStore,
	sched *scheduler.Scheduler,
	logger ports.Logger,
	patternsDir string,
	defaultSpeeds []int,
	newWatcher func() (ports.Watcher, error),
) *Service {
	return &Service{
		store:         store,
		sched:         sched,
		logger:        logger,
		patternsDir:   patternsDir,
		defaultSpeeds: defaultSpeeds,
		newWatcher:    newWatcher,
	}
}

// Open binds the service lifetime to ctx and loads the persisted cache.
func (s *Service) Open(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.store.Load()
}

// Start opens the service, kicks off a full computation for the default speeds
// and starts watching the patterns directory when a watcher is configured.
func (s *Service) Start(ctx context.Context) error {
	s.Open(ctx)
	s.StartFullComputation(s.defaultSpeeds)

	if s.newWatcher == nil {
		return nil
	}
	return s.watch()
}

func (s *Service) lifetime() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Service) watch() error {
	w, err := s.newWatcher()
	if err != nil {
		return err
	}

	ctx := s.lifetime()
	if err := w.Start(ctx, s.patternsDir); err != nil {
		_ = w.Stop()
		return zerr.With(err, "dir", s.patternsDir)
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		for _, path := range paths {
			s.NotifyNewPattern(path, s.defaultSpeeds)
		}
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for event := range w.Events() {
			if event.Operation == ports.OpCreate || event.Operation == ports.OpWrite {
				debouncer.Add(event.Path)
			}
		}
		debouncer.Flush()
		debouncer.Stop()
	}()

	s.logger.Info("watching " + s.patternsDir + " for new patterns")
	return nil
}

// GetDuration returns the formatted duration of pattern at speed.
// It reports false when the value is missing or stale.
func (s *Service) GetDuration(pattern domain.PatternKey, speed int) (string, bool) {
	seconds, ok := s.store.Get(pattern, speed)
	if !ok {
		return "", false
	}
	return domain.FormatDuration(seconds), true
}

// Status returns a consistent snapshot of the scheduler and cache.
func (s *Service) Status() domain.Status {
	state := s.sched.State()
	return domain.Status{
		Running:     state.Running(),
		Paused:      state.Paused(),
		Total:       state.Total,
		Completed:   state.Completed,
		CacheSize:   s.store.Len(),
		RunID:       state.RunID,
		LastOutcome: state.LastOutcome,
	}
}

// Snapshot returns a copy of every cached record.
func (s *Service) Snapshot() domain.Cache {
	return s.store.Snapshot()
}

// ClearCache empties and persists the cache. The progress counters of an active run are left alone.
func (s *Service) ClearCache() {
	s.store.Clear()
	s.sched.ResetProgress()
	s.logger.Info("pattern duration cache cleared")
}

// StartFullComputation starts a background run over every pattern. Empty speeds use the defaults.
func (s *Service) StartFullComputation(speeds []int) bool {
	if len(speeds) == 0 {
		speeds = s.defaultSpeeds
	}
	return s.sched.Start(s.lifetime(), speeds)
}

// Pause pauses the active run.
func (s *Service) Pause() bool {
	return s.sched.Pause()
}

// Resume resumes a paused run.
func (s *Service) Resume() bool {
	return s.sched.Resume()
}

// Stop stops the active run.
func (s *Service) Stop() bool {
	return s.sched.Stop()
}

// NotifyNewPattern computes every requested speed of the pattern at path in the background.
// Empty speeds use the defaults.
func (s *Service) NotifyNewPattern(path string, speeds []int) bool {
	if len(speeds) == 0 {
		speeds = s.defaultSpeeds
	}
	return s.sched.CalculateOne(s.lifetime(), path, speeds)
}

// Wait blocks until the background calculations launched so far have finished.
func (s *Service) Wait() {
	s.sched.Wait()
}

// Shutdown stops the watcher, hands pattern changes still inside the debounce window
// to the scheduler, stops the active run and waits for all background work.
func (s *Service) Shutdown() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		if err := w.Stop(); err != nil {
			s.logger.Error(err)
		}
	}
	s.wg.Wait()
	s.sched.Close()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
}
