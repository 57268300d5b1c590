package scheduler_test

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patterneta/internal/adapters/store"
	"go.trai.ch/patterneta/internal/adapters/telemetry"
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports/mocks"
	"go.trai.ch/patterneta/internal/engine/geometry"
	"go.trai.ch/patterneta/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

var (
	testCoords = []domain.Coordinate{{Theta: 0, Rho: 0}, {Theta: 1.5, Rho: 0.5}, {Theta: 3, Rho: 1}}

	testCalibration = domain.Calibration{
		Model:         domain.TableDuneWeaver,
		XStepsPerUnit: 200,
		YStepsPerUnit: 287,
		GearRatio:     10,
	}
)

const testMTime domain.ModTime = 100

// fakeSource serves in-memory patterns. While a gate is set, reads block until it is closed.
type fakeSource struct {
	mu          sync.Mutex
	files       []domain.PatternFile
	mtimes      map[string]domain.ModTime
	gate        chan struct{}
	reads       []string
	panicOnWalk bool
}

func newFakeSource(n int) *fakeSource {
	f := &fakeSource{mtimes: make(map[string]domain.ModTime)}
	for i := range n {
		path := fmt.Sprintf("/patterns/p%02d.thr", i)
		f.files = append(f.files, domain.PatternFile{Key: domain.KeyFor(path), Path: path})
		f.mtimes[path] = testMTime
	}
	return f
}

func (f *fakeSource) Discover(_ context.Context, _ string) iter.Seq2[domain.PatternFile, error] {
	return func(yield func(domain.PatternFile, error) bool) {
		f.mu.Lock()
		files := slices.Clone(f.files)
		explode := f.panicOnWalk
		f.mu.Unlock()

		if explode {
			panic("walk exploded")
		}
		for _, file := range files {
			if !yield(file, nil) {
				return
			}
		}
	}
}

func (f *fakeSource) ReadCoordinates(path string) ([]domain.Coordinate, error) {
	f.mu.Lock()
	f.reads = append(f.reads, path)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return testCoords, nil
}

func (f *fakeSource) ModTime(path string) (domain.ModTime, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mt, ok := f.mtimes[path]
	if !ok {
		return 0, os.ErrNotExist
	}
	return mt, nil
}

func (f *fakeSource) setGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = gate
}

func (f *fakeSource) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reads)
}

// countingStore counts saves of a real store.
type countingStore struct {
	*store.Store
	saves atomic.Int32
}

func (c *countingStore) Save() {
	c.saves.Add(1)
	c.Store.Save()
}

type harness struct {
	source *fakeSource
	store  *countingStore
	sched  *scheduler.Scheduler
}

func newHarness(t *testing.T, patterns, workers int, cal domain.Calibration) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	machine := mocks.NewMockMachineState(ctrl)
	machine.EXPECT().Snapshot().Return(domain.MachineSnapshot{Calibration: cal, Workers: workers}).AnyTimes()

	source := newFakeSource(patterns)
	st := &countingStore{Store: store.New(filepath.Join(t.TempDir(), "cache.json"), "/patterns", source, logger)}

	return &harness{
		source: source,
		store:  st,
		sched:  scheduler.New(st, source, machine, telemetry.NoOp{}, logger, "/patterns"),
	}
}

func TestScheduler_RunComputesEveryPattern(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3, 2, testCalibration)

		require.True(t, h.sched.Start(t.Context(), []int{150, 100}))
		h.sched.Wait()

		state := h.sched.State()
		assert.Equal(t, domain.PhaseIdle, state.Phase)
		assert.Equal(t, domain.OutcomeCompleted, state.LastOutcome)
		assert.Equal(t, 3, state.Total)
		assert.Equal(t, 3, state.Completed)
		assert.NotEmpty(t, state.RunID)

		want := geometry.Durations(testCoords, testCalibration, []int{100, 150})
		snap := h.store.Snapshot()
		require.Len(t, snap, 3)
		for _, rec := range snap {
			assert.Equal(t, want, rec.Durations)
			require.NotNil(t, rec.ModTime)
			assert.Equal(t, testMTime, *rec.ModTime)
		}

		// One batch save plus the final save.
		assert.Equal(t, int32(2), h.store.saves.Load())
	})
}

func TestScheduler_SecondRunFindsNothingToDo(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 12, 4, testCalibration)

		require.True(t, h.sched.Start(t.Context(), nil))
		h.sched.Wait()
		first := h.store.Snapshot()
		reads := h.source.readCount()
		assert.Equal(t, 12, reads)

		require.True(t, h.sched.Start(t.Context(), nil))
		h.sched.Wait()

		state := h.sched.State()
		assert.Equal(t, domain.OutcomeCompleted, state.LastOutcome)
		assert.Equal(t, 0, state.Total)
		assert.Equal(t, reads, h.source.readCount())
		assert.Equal(t, first, h.store.Snapshot())
	})
}

func TestScheduler_OnlyMissingSpeedsAreComputed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 2, 1, testCalibration)
		fresh := testMTime
		h.store.Merge("p00.thr", map[int]float64{100: 1}, &fresh)
		stale := testMTime - 1
		h.store.Merge("p01.thr", map[int]float64{100: 1}, &stale)

		require.True(t, h.sched.Start(t.Context(), []int{100, 150}))
		h.sched.Wait()

		want := geometry.Durations(testCoords, testCalibration, []int{100, 150})
		snap := h.store.Snapshot()
		assert.Equal(t, map[int]float64{100: 1, 150: want[150]}, snap["p00.thr"].Durations)
		assert.Equal(t, want, snap["p01.thr"].Durations, "stale records are recomputed")
	})
}

func TestScheduler_StartWhileRunningIsNoop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 5, 1, testCalibration)
		gate := make(chan struct{})
		h.source.setGate(gate)

		require.True(t, h.sched.Start(t.Context(), nil))
		synctest.Wait()
		runID := h.sched.State().RunID

		assert.False(t, h.sched.Start(t.Context(), nil))
		assert.Equal(t, runID, h.sched.State().RunID)

		h.source.setGate(nil)
		close(gate)
		h.sched.Wait()

		assert.Equal(t, domain.OutcomeCompleted, h.sched.State().LastOutcome)
		assert.Equal(t, 5, h.source.readCount())
	})
}

func TestScheduler_PauseHoldsNextBatch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 25, 2, testCalibration)
		gate := make(chan struct{})
		h.source.setGate(gate)

		require.True(t, h.sched.Start(t.Context(), nil))
		synctest.Wait()

		require.True(t, h.sched.Pause())
		assert.False(t, h.sched.Pause())
		assert.True(t, h.sched.State().Paused())

		h.source.setGate(nil)
		close(gate)
		synctest.Wait()

		state := h.sched.State()
		assert.Equal(t, domain.PhasePaused, state.Phase)
		assert.Equal(t, 25, state.Total)
		assert.Equal(t, 10, state.Completed, "the batch in flight completes")
		assert.Equal(t, 10, h.source.readCount(), "no new batch starts while paused")

		require.True(t, h.sched.Resume())
		assert.False(t, h.sched.Resume())
		h.sched.Wait()

		state = h.sched.State()
		assert.Equal(t, domain.OutcomeCompleted, state.LastOutcome)
		assert.Equal(t, 25, state.Completed)
		assert.Equal(t, 25, h.store.Len())
		assert.Equal(t, int32(4), h.store.saves.Load())
	})
}

func TestScheduler_StopDiscardsInFlightResults(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 25, 2, testCalibration)
		gate := make(chan struct{})
		h.source.setGate(gate)

		require.True(t, h.sched.Start(t.Context(), nil))
		synctest.Wait()

		require.True(t, h.sched.Stop())
		assert.Equal(t, domain.PhaseStopping, h.sched.State().Phase)
		assert.False(t, h.sched.Pause())

		h.source.setGate(nil)
		close(gate)
		h.sched.Wait()

		state := h.sched.State()
		assert.Equal(t, domain.PhaseIdle, state.Phase)
		assert.Equal(t, domain.OutcomeCancelled, state.LastOutcome)
		assert.Equal(t, 0, state.Completed)
		assert.Equal(t, 0, h.store.Len())
		assert.Less(t, h.source.readCount(), 10)
		assert.Equal(t, int32(1), h.store.saves.Load(), "only the final save runs")

		assert.False(t, h.sched.Stop())
		require.True(t, h.sched.Start(t.Context(), nil), "a new run can start after stop")
		h.sched.Wait()
		assert.Equal(t, 25, h.store.Len())
	})
}

func TestScheduler_StopWhilePaused(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 25, 2, testCalibration)
		gate := make(chan struct{})
		h.source.setGate(gate)

		require.True(t, h.sched.Start(t.Context(), nil))
		synctest.Wait()
		require.True(t, h.sched.Pause())
		h.source.setGate(nil)
		close(gate)
		synctest.Wait()

		require.True(t, h.sched.Stop())
		h.sched.Wait()

		state := h.sched.State()
		assert.Equal(t, domain.OutcomeCancelled, state.LastOutcome)
		assert.Equal(t, 10, h.store.Len(), "merged results survive the stop")
		assert.Equal(t, 10, h.source.readCount())
	})
}

func TestScheduler_ContextCancellation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 25, 2, testCalibration)
		gate := make(chan struct{})
		h.source.setGate(gate)

		ctx, cancel := context.WithCancel(t.Context())
		require.True(t, h.sched.Start(ctx, nil))
		synctest.Wait()
		cancel()

		h.source.setGate(nil)
		close(gate)
		h.sched.Wait()

		assert.Equal(t, domain.OutcomeCancelled, h.sched.State().LastOutcome)
		assert.Equal(t, 0, h.store.Len())
	})
}

func TestScheduler_PanicEndsRunAsFailed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 3, 1, testCalibration)
		h.source.panicOnWalk = true

		require.True(t, h.sched.Start(t.Context(), nil))
		h.sched.Wait()

		state := h.sched.State()
		assert.Equal(t, domain.PhaseIdle, state.Phase)
		assert.Equal(t, domain.OutcomeFailed, state.LastOutcome)
		assert.Equal(t, int32(1), h.store.saves.Load())

		h.source.mu.Lock()
		h.source.panicOnWalk = false
		h.source.mu.Unlock()

		require.True(t, h.sched.Start(t.Context(), nil))
		h.sched.Wait()
		assert.Equal(t, domain.OutcomeCompleted, h.sched.State().LastOutcome)
	})
}

func TestScheduler_InvalidCalibrationFails(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cal := testCalibration
		cal.GearRatio = 0
		h := newHarness(t, 3, 1, cal)

		require.True(t, h.sched.Start(t.Context(), nil))
		h.sched.Wait()

		assert.Equal(t, domain.OutcomeFailed, h.sched.State().LastOutcome)
		assert.Equal(t, 0, h.source.readCount())
	})
}

func TestScheduler_IdleControlsAreRejected(t *testing.T) {
	h := newHarness(t, 0, 1, testCalibration)

	assert.False(t, h.sched.Pause())
	assert.False(t, h.sched.Resume())
	assert.False(t, h.sched.Stop())
	assert.False(t, h.sched.Start(t.Context(), []int{100, -1}))
	assert.False(t, h.sched.State().Running())
}

func TestScheduler_CalculateOneRecomputesEverySpeed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 1, 1, testCalibration)
		h.store.Put("p00.thr", 100, 1)

		require.True(t, h.sched.CalculateOne(t.Context(), "/patterns/p00.thr", []int{100, 150}))
		h.sched.Wait()

		rec := h.store.Snapshot()["p00.thr"]
		require.NotNil(t, rec)
		assert.Equal(t, geometry.Durations(testCoords, testCalibration, []int{100, 150}), rec.Durations)
		require.NotNil(t, rec.ModTime)
		assert.Equal(t, testMTime, *rec.ModTime)
		assert.Equal(t, int32(1), h.store.saves.Load())
		assert.False(t, h.sched.State().Running(), "single calculations do not touch run state")
	})
}

func TestScheduler_CloseRejectsNewWork(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 25, 2, testCalibration)
		gate := make(chan struct{})
		h.source.setGate(gate)

		require.True(t, h.sched.Start(t.Context(), nil))
		synctest.Wait()

		go func() {
			synctest.Wait()
			h.source.setGate(nil)
			close(gate)
		}()
		h.sched.Close()

		assert.Equal(t, domain.OutcomeCancelled, h.sched.State().LastOutcome)
		assert.False(t, h.sched.Start(t.Context(), nil))
		assert.False(t, h.sched.CalculateOne(t.Context(), "/patterns/p00.thr", nil))
	})
}

func TestBatchSize(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 10},
		{5, 10},
		{99, 10},
		{100, 10},
		{250, 25},
		{1000, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scheduler.BatchSize(tt.n), "n=%d", tt.n)
	}
}

func TestNormalizeSpeeds(t *testing.T) {
	got, err := scheduler.NormalizeSpeeds(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{domain.DefaultSpeed}, got)

	got, err = scheduler.NormalizeSpeeds([]int{200, 100, 200})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200}, got)

	_, err = scheduler.NormalizeSpeeds([]int{100, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrInvalidSpeed.Error())
}
