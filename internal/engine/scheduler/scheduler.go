// Package scheduler runs background pattern duration calculations in batches.
package scheduler

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
	"go.trai.ch/patterneta/internal/engine/geometry"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// MinBatchSize is the smallest number of patterns dispatched per batch.
const MinBatchSize = 10

// Scheduler owns the lifecycle of full calculation runs and single-pattern calculations.
//
// Run state is guarded by mu. The store has its own lock and is never called with mu held.
type Scheduler struct {
	store       ports.DurationStore
	source      ports.PatternSource
	machine     ports.MachineState
	telemetry   ports.Telemetry
	logger      ports.Logger
	patternsDir string

	mu     sync.Mutex
	state  domain.RunState
	stop   bool
	wake   chan struct{}
	closed bool

	wg sync.WaitGroup
}

// New creates a Scheduler computing durations for the patterns under patternsDir.
func New(
	store ports.DurationStore,
	source ports.PatternSource,
	machine ports.MachineState,
	telemetry ports.Telemetry,
	logger ports.Logger,
	patternsDir string,
) *Scheduler {
	return &Scheduler{
		store:       store,
		source:      source,
		machine:     machine,
		telemetry:   telemetry,
		logger:      logger,
		patternsDir: patternsDir,
		state:       domain.RunState{Phase: domain.PhaseIdle},
	}
}

// BatchSize returns the number of patterns dispatched per batch for a run of n patterns.
func BatchSize(n int) int {
	return max(MinBatchSize, n/10)
}

// NormalizeSpeeds returns the distinct positive speeds in ascending order.
// An empty request yields the default speed.
func NormalizeSpeeds(speeds []int) ([]int, error) {
	if len(speeds) == 0 {
		return []int{domain.DefaultSpeed}, nil
	}

	out := make([]int, 0, len(speeds))
	for _, speed := range speeds {
		if speed <= 0 {
			return nil, zerr.With(domain.ErrInvalidSpeed, "speed", speed)
		}
		out = append(out, speed)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// State returns a snapshot of the run state.
func (s *Scheduler) State() domain.RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches a full calculation run for speeds and returns immediately.
// It returns false when a run is already active or the request is invalid.
func (s *Scheduler) Start(ctx context.Context, speeds []int) bool {
	speeds, err := NormalizeSpeeds(speeds)
	if err != nil {
		s.logger.Error(err)
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Error(domain.ErrSchedulerClosed)
		return false
	}
	if s.state.Running() {
		s.mu.Unlock()
		s.logger.Info("pattern duration calculation already in progress")
		return false
	}

	runID := uuid.NewString()
	s.state = domain.RunState{
		RunID:       runID,
		Phase:       domain.PhaseRunning,
		LastOutcome: s.state.LastOutcome,
	}
	s.stop = false
	s.wake = nil
	s.wg.Add(1)
	s.mu.Unlock()

	go s.execute(ctx, runID, speeds)
	return true
}

// Pause holds the active run before its next batch. The batch in flight completes.
func (s *Scheduler) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != domain.PhaseRunning {
		return false
	}
	s.state.Phase = domain.PhasePaused
	s.wake = make(chan struct{})
	s.logger.Info("pattern duration calculation paused")
	return true
}

// Resume releases a paused run.
func (s *Scheduler) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != domain.PhasePaused {
		return false
	}
	s.state.Phase = domain.PhaseRunning
	s.signal()
	s.logger.Info("pattern duration calculation resumed")
	return true
}

// Stop asks the active run to end. No further batch starts and results still in flight are discarded.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Running() {
		return false
	}
	s.stop = true
	s.state.Phase = domain.PhaseStopping
	s.signal()
	s.logger.Info("pattern duration calculation stop requested")
	return true
}

// signal wakes a run waiting on pause. Callers must hold mu.
func (s *Scheduler) signal() {
	if s.wake != nil {
		close(s.wake)
		s.wake = nil
	}
}

// ResetProgress zeroes the progress counters when no run is active.
func (s *Scheduler) ResetProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Running() {
		s.state.Total = 0
		s.state.Completed = 0
	}
}

// Wait blocks until every goroutine launched by the scheduler has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close stops the active run, rejects new work and waits for background work to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Stop()
	s.wg.Wait()
}

// stopRequested reports whether the run should wind down.
func (s *Scheduler) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop
}

// awaitBatch blocks while the run is paused. It reports false when the run must end instead.
func (s *Scheduler) awaitBatch(ctx context.Context) bool {
	for {
		if ctx.Err() != nil {
			return false
		}

		s.mu.Lock()
		if s.stop {
			s.mu.Unlock()
			return false
		}
		if s.state.Phase != domain.PhasePaused {
			s.mu.Unlock()
			return true
		}
		wake := s.wake
		s.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return false
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, runID string, speeds []int) {
	defer s.wg.Done()

	ctx, vertex := s.telemetry.Record(ctx, "compute durations "+runID)
	outcome := domain.OutcomeFailed
	var runErr error

	defer func() {
		if r := recover(); r != nil {
			outcome = domain.OutcomeFailed
			runErr = zerr.With(zerr.With(domain.ErrRunFailed, "run_id", runID), "panic", fmt.Sprint(r))
			s.logger.Error(runErr)
		}

		s.store.Save()
		vertex.Complete(runErr)
		s.finish(outcome)
	}()

	outcome, runErr = s.run(ctx, speeds, vertex)
}

func (s *Scheduler) finish(outcome domain.RunOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Phase = domain.PhaseIdle
	s.state.LastOutcome = outcome
	s.stop = false
	s.signal()
}

// workItem is a discovered pattern and the speeds it still needs.
type workItem struct {
	file   domain.PatternFile
	speeds []int
}

// itemResult is the outcome of computing one work item.
type itemResult struct {
	key       domain.PatternKey
	durations map[int]float64
	mtime     *domain.ModTime
}

func (s *Scheduler) run(ctx context.Context, speeds []int, vertex ports.Vertex) (domain.RunOutcome, error) {
	snapshot := s.machine.Snapshot()
	cal := snapshot.Calibration
	if !cal.Valid() {
		err := zerr.With(domain.ErrInvalidCalibration, "table", string(cal.Model))
		s.logger.Error(err)
		return domain.OutcomeFailed, err
	}

	s.logger.Info(fmt.Sprintf(
		"starting pattern duration calculation: table=%s x_steps_per_mm=%g y_steps_per_mm=%g gear_ratio=%g",
		cal.Model, cal.XStepsPerUnit, cal.YStepsPerUnit, cal.GearRatio,
	))

	work, ok := s.discover(ctx, speeds)
	if !ok {
		return s.cancelled(ctx)
	}

	s.mu.Lock()
	s.state.Total = len(work)
	s.state.Completed = 0
	s.mu.Unlock()

	workers := max(1, snapshot.Workers)
	batchSize := BatchSize(len(work))
	s.logger.Info(fmt.Sprintf("found %d patterns to calculate using %d workers", len(work), workers))

	if len(work) == 0 {
		vertex.Cached()
	}

	completed := 0
	for start := 0; start < len(work); start += batchSize {
		if !s.awaitBatch(ctx) {
			return s.cancelled(ctx)
		}

		batch := work[start:min(start+batchSize, len(work))]
		completed += s.runBatch(ctx, batch, cal, workers)

		if s.stopRequested(ctx) {
			return s.cancelled(ctx)
		}

		s.store.Save()
		progress := fmt.Sprintf("calculated durations for %d/%d patterns", completed, len(work))
		s.logger.Info(progress)
		vertex.Log(domain.LogLevelInfo, progress)
	}

	s.logger.Info("pattern duration calculation complete")
	return domain.OutcomeCompleted, nil
}

func (s *Scheduler) cancelled(ctx context.Context) (domain.RunOutcome, error) {
	s.logger.Info("pattern duration calculation stopped")
	if err := ctx.Err(); err != nil {
		return domain.OutcomeCancelled, zerr.Wrap(err, domain.ErrRunStopped.Error())
	}
	return domain.OutcomeCancelled, domain.ErrRunStopped
}

// discover lists the patterns needing work. It reports false when the run was stopped meanwhile.
func (s *Scheduler) discover(ctx context.Context, speeds []int) ([]workItem, bool) {
	var work []workItem
	for file, err := range s.source.Discover(ctx, s.patternsDir) {
		if s.stopRequested(ctx) {
			return nil, false
		}
		if err != nil {
			s.logger.Error(err)
			continue
		}

		s.store.Remember(file)

		current, err := s.source.ModTime(file.Path)
		if err != nil {
			current = 0
		}
		if missing := s.store.Missing(file.Key, speeds, current); len(missing) > 0 {
			work = append(work, workItem{file: file, speeds: missing})
		}
	}
	return work, !s.stopRequested(ctx)
}

// runBatch computes batch with at most workers items in flight and merges the results.
// Results arriving after a stop are dropped. It returns the number of merged items.
func (s *Scheduler) runBatch(ctx context.Context, batch []workItem, cal domain.Calibration, workers int) int {
	results := make(chan itemResult, len(batch))

	go func() {
		var g errgroup.Group
		g.SetLimit(workers)
		for _, item := range batch {
			if s.stopRequested(ctx) {
				break
			}
			g.Go(func() error {
				results <- s.compute(item, cal)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	merged := 0
	for res := range results {
		if s.stopRequested(ctx) {
			continue
		}
		s.store.Merge(res.key, res.durations, res.mtime)
		merged++

		s.mu.Lock()
		s.state.Completed++
		s.mu.Unlock()
	}
	return merged
}

// compute reads one pattern and estimates it at the item's speeds.
// Unreadable patterns yield no durations.
func (s *Scheduler) compute(item workItem, cal domain.Calibration) (res itemResult) {
	res.key = item.file.Key
	defer func() {
		if r := recover(); r != nil {
			err := zerr.With(zerr.With(domain.ErrRunFailed, "pattern", item.file.Path), "panic", fmt.Sprint(r))
			s.logger.Error(err)
			res.durations = nil
		}
	}()

	coords, err := s.source.ReadCoordinates(item.file.Path)
	if err != nil {
		s.logger.Error(err)
		return res
	}
	res.durations = geometry.Durations(coords, cal, item.speeds)

	if mt, err := s.source.ModTime(item.file.Path); err == nil {
		res.mtime = &mt
	}
	return res
}

// CalculateOne computes every speed for the pattern at path in the background and saves once.
// It returns false when the request is invalid or the scheduler is shut down.
func (s *Scheduler) CalculateOne(ctx context.Context, path string, speeds []int) bool {
	speeds, err := NormalizeSpeeds(speeds)
	if err != nil {
		s.logger.Error(err)
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Error(zerr.With(domain.ErrSchedulerClosed, "pattern", path))
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		file := domain.PatternFile{Key: domain.KeyFor(path), Path: path}
		_, vertex := s.telemetry.Record(ctx, "compute "+file.Key.String())
		s.logger.Info("calculating duration for new pattern: " + file.Key.String())

		cal := s.machine.Snapshot().Calibration
		if !cal.Valid() {
			err := zerr.With(domain.ErrInvalidCalibration, "pattern", file.Key.String())
			s.logger.Error(err)
			vertex.Complete(err)
			return
		}
		if err := ctx.Err(); err != nil {
			vertex.Complete(err)
			return
		}

		s.store.Remember(file)
		res := s.compute(workItem{file: file, speeds: speeds}, cal)
		s.store.Merge(res.key, res.durations, res.mtime)
		s.store.Save()

		s.logger.Info("completed duration calculation for " + file.Key.String())
		vertex.Complete(nil)
	}()
	return true
}
