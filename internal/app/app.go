// Package app implements the application layer for patterneta.
package app

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/patterneta/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/patterneta/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/patterneta/internal/adapters/store"   //nolint:depguard // Wired in app layer
	"go.trai.ch/patterneta/internal/adapters/tui"     //nolint:depguard // Wired in app layer
	"go.trai.ch/patterneta/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
	"go.trai.ch/patterneta/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// ProgressInterval is how often Serve logs the progress of an active run.
var ProgressInterval = 30 * time.Second

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	telemetry    ports.Telemetry
	watchers     watcher.Factory
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	telemetry ports.Telemetry,
	watchers watcher.Factory,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		telemetry:    telemetry,
		watchers:     watchers,
	}
}

// WithTeaOptions sets options for the interactive progress view.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// Build loads the configuration at configPath and assembles a Service for it.
func (a *App) Build(configPath string) (*Service, ports.Settings, error) {
	settings, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, ports.Settings{}, zerr.Wrap(err, "failed to load configuration")
	}

	source := fs.NewSource(fs.NewWalker(), settings.Extension)
	cache := store.New(settings.CacheFile, settings.PatternsDir, source, a.logger)
	machine := config.NewMachine(settings.Machine)
	sched := scheduler.New(cache, source, machine, a.telemetry, a.logger, settings.PatternsDir)

	var newWatcher func() (ports.Watcher, error)
	if settings.Watch && a.watchers != nil {
		newWatcher = func() (ports.Watcher, error) {
			return a.watchers(settings.Extension)
		}
	}

	return NewService(cache, sched, a.logger, settings.PatternsDir, settings.DefaultSpeeds, newWatcher), settings, nil
}

// Serve runs the duration service until ctx is cancelled.
func (a *App) Serve(ctx context.Context, configPath string) error {
	svc, settings, err := a.Build(configPath)
	if err != nil {
		return err
	}

	if err := svc.Start(ctx); err != nil {
		svc.Shutdown()
		return err
	}
	a.logger.Info("serving pattern durations from " + settings.PatternsDir)

	ticker := time.NewTicker(ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			svc.Shutdown()
			return nil
		case <-ticker.C:
			if status := svc.Status(); status.Running {
				a.logger.Info(fmt.Sprintf("calculated %d/%d patterns, %d cached",
					status.Completed, status.Total, status.CacheSize))
			}
		}
	}
}

// ComputeOptions configuration for the Compute method.
type ComputeOptions struct {
	// Speeds to compute. Empty means the configured default speeds.
	Speeds []int
	// Interactive shows a progress view with pause, resume and stop keys while the run is active.
	Interactive bool
}

// Compute runs one full computation in the foreground and returns the final status.
// Cancelling ctx stops the run; results merged so far are kept.
func (a *App) Compute(ctx context.Context, configPath string, opts ComputeOptions) (domain.Status, error) {
	svc, _, err := a.Build(configPath)
	if err != nil {
		return domain.Status{}, err
	}
	svc.Open(ctx)
	defer svc.Shutdown()

	if !svc.StartFullComputation(opts.Speeds) {
		return domain.Status{}, zerr.With(domain.ErrRunFailed, "speeds", opts.Speeds)
	}

	if opts.Interactive {
		programOpts := append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)
		if _, err := tea.NewProgram(tui.NewModel(svc), programOpts...).Run(); err != nil && ctx.Err() == nil {
			svc.Stop()
			svc.Wait()
			return svc.Status(), zerr.Wrap(err, "progress view failed")
		}
	}

	waitOrStop(ctx, svc)

	status := svc.Status()
	if status.LastOutcome == domain.OutcomeFailed {
		return status, zerr.With(domain.ErrRunFailed, "run_id", status.RunID)
	}
	return status, nil
}

func waitOrStop(ctx context.Context, svc *Service) {
	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		svc.Stop()
		<-done
	}
}

// DurationOptions configuration for the Duration method.
type DurationOptions struct {
	Speed int
	// Compute calculates a missing or stale duration instead of reporting it absent.
	Compute bool
}

// Duration returns the formatted duration of a pattern given by file name or path.
func (a *App) Duration(ctx context.Context, configPath, pattern string, opts DurationOptions) (string, bool, error) {
	svc, settings, err := a.Build(configPath)
	if err != nil {
		return "", false, err
	}
	svc.Open(ctx)
	defer svc.Shutdown()

	speed := opts.Speed
	if speed == 0 {
		speed = domain.DefaultSpeed
		if len(settings.DefaultSpeeds) > 0 {
			speed = settings.DefaultSpeeds[0]
		}
	}
	if speed < 0 {
		return "", false, zerr.With(domain.ErrInvalidSpeed, "speed", speed)
	}

	key := domain.KeyFor(pattern)
	if formatted, ok := svc.GetDuration(key, speed); ok || !opts.Compute {
		return formatted, ok, nil
	}

	path := resolvePattern(settings.PatternsDir, pattern)
	if !svc.NotifyNewPattern(path, []int{speed}) {
		return "", false, zerr.With(domain.ErrRunFailed, "pattern", pattern)
	}
	waitOrStop(ctx, svc)

	formatted, ok := svc.GetDuration(key, speed)
	return formatted, ok, nil
}

// resolvePattern returns pattern when it names an existing file, or its location in dir.
func resolvePattern(dir, pattern string) string {
	if _, err := os.Stat(pattern); err == nil {
		return pattern
	}
	return filepath.Join(dir, pattern)
}

// Entry is one cached pattern duration.
type Entry struct {
	Pattern domain.PatternKey
	Speed   int
	Seconds float64
}

// List returns every cached duration ordered by pattern and speed.
func (a *App) List(ctx context.Context, configPath string) ([]Entry, error) {
	svc, _, err := a.Build(configPath)
	if err != nil {
		return nil, err
	}
	svc.Open(ctx)
	defer svc.Shutdown()

	var entries []Entry
	for key, rec := range svc.Snapshot() {
		for speed, seconds := range rec.Durations {
			entries = append(entries, Entry{Pattern: key, Speed: speed, Seconds: seconds})
		}
	}
	slices.SortFunc(entries, func(x, y Entry) int {
		return cmp.Or(cmp.Compare(x.Pattern, y.Pattern), cmp.Compare(x.Speed, y.Speed))
	})
	return entries, nil
}

// Clear empties the persisted cache.
func (a *App) Clear(ctx context.Context, configPath string) error {
	svc, _, err := a.Build(configPath)
	if err != nil {
		return err
	}
	svc.Open(ctx)
	defer svc.Shutdown()

	svc.ClearCache()
	return nil
}
