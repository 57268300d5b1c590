// Package config provides the configuration loader for patterneta.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Defaults applied to settings the configuration file leaves out.
const (
	DefaultWorkers       = 2
	DefaultXStepsPerUnit = 200
	DefaultYStepsPerUnit = 287
	DefaultGearRatio     = 10
)

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	logger ports.Logger
}

// NewLoader creates a new FileConfigLoader.
func NewLoader(logger ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{logger: logger}
}

// Load reads the configuration from path. A missing file yields the defaults.
func (l *FileConfigLoader) Load(path string) (ports.Settings, error) {
	settings, found, err := Load(path)
	if err != nil {
		return ports.Settings{}, err
	}
	if !found {
		l.logger.Info("no configuration at " + path + ", using defaults")
	}
	return settings, nil
}

// Load reads a configuration file from path and resolves it into settings.
// Relative directories in the file are resolved against the file's directory.
// The boolean reports whether the file existed.
func Load(path string) (ports.Settings, bool, error) {
	var cfg Configfile

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s, resolveErr := resolve(&cfg, filepath.Dir(path))
		return s, false, resolveErr
	case err != nil:
		return ports.Settings{}, false, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ports.Settings{}, true, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	s, err := resolve(&cfg, filepath.Dir(path))
	if err != nil {
		return ports.Settings{}, true, zerr.With(err, "path", path)
	}
	return s, true, nil
}

// Defaults returns the settings used when no configuration file exists, rooted at base.
func Defaults(base string) ports.Settings {
	s, _ := resolve(&Configfile{}, base)
	return s
}

func resolve(cfg *Configfile, base string) (ports.Settings, error) {
	s := ports.Settings{
		PatternsDir:   relativeTo(base, valueOr(cfg.PatternsDir, domain.DefaultPatternsDir)),
		CacheFile:     relativeTo(base, valueOr(cfg.CacheFile, domain.DefaultCacheFile)),
		Extension:     normalizeExtension(valueOr(cfg.Extension, domain.DefaultPatternExtension)),
		DefaultSpeeds: slices.Clone(cfg.DefaultSpeeds),
		Watch:         cfg.Watch,
	}

	if len(s.DefaultSpeeds) == 0 {
		s.DefaultSpeeds = []int{domain.DefaultSpeed}
	}
	for _, speed := range s.DefaultSpeeds {
		if speed <= 0 {
			return ports.Settings{}, zerr.With(domain.ErrInvalidSpeed, "speed", speed)
		}
	}
	slices.Sort(s.DefaultSpeeds)
	s.DefaultSpeeds = slices.Compact(s.DefaultSpeeds)

	s.Machine.Workers = DefaultWorkers
	if cfg.Workers != nil {
		if *cfg.Workers < 1 {
			return ports.Settings{}, zerr.With(domain.ErrInvalidWorkerCount, "workers", *cfg.Workers)
		}
		s.Machine.Workers = *cfg.Workers
	}

	model := domain.TableModel(valueOr(cfg.Table.Type, string(domain.TableDuneWeaver)))
	if model != domain.TableDuneWeaver && model != domain.TableDuneWeaverMini {
		return ports.Settings{}, zerr.With(domain.ErrInvalidCalibration, "table", string(model))
	}
	s.Machine.Calibration = domain.Calibration{
		Model:         model,
		XStepsPerUnit: floatOr(cfg.Table.XStepsPerUnit, DefaultXStepsPerUnit),
		YStepsPerUnit: floatOr(cfg.Table.YStepsPerUnit, DefaultYStepsPerUnit),
		GearRatio:     floatOr(cfg.Table.GearRatio, DefaultGearRatio),
	}
	if !s.Machine.Calibration.Valid() {
		err := zerr.With(domain.ErrInvalidCalibration, "x_steps_per_mm", s.Machine.Calibration.XStepsPerUnit)
		err = zerr.With(err, "y_steps_per_mm", s.Machine.Calibration.YStepsPerUnit)
		return ports.Settings{}, zerr.With(err, "gear_ratio", s.Machine.Calibration.GearRatio)
	}

	return s, nil
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func relativeTo(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func normalizeExtension(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
