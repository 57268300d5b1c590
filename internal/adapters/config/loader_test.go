package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patterneta/internal/adapters/config"
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), domain.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeConfig(t, `
patterns_dir: ./my-patterns
cache_file: /var/lib/patterneta/cache.cbor
extension: thr
default_speeds: [150, 100, 150]
workers: 4
watch: true
table:
  type: dune_weaver_mini
  x_steps_per_mm: 180
  y_steps_per_mm: 546
  gear_ratio: 6.25
`)

	s, found, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, found)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "my-patterns"), s.PatternsDir)
	assert.Equal(t, "/var/lib/patterneta/cache.cbor", s.CacheFile)
	assert.Equal(t, ".thr", s.Extension)
	assert.Equal(t, []int{100, 150}, s.DefaultSpeeds)
	assert.True(t, s.Watch)
	assert.Equal(t, domain.MachineSnapshot{
		Calibration: domain.Calibration{
			Model:         domain.TableDuneWeaverMini,
			XStepsPerUnit: 180,
			YStepsPerUnit: 546,
			GearRatio:     6.25,
		},
		Workers: 4,
	}, s.Machine)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	s, found, err := config.Load(filepath.Join(dir, domain.DefaultConfigFile))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, config.Defaults(dir), s)
	assert.Equal(t, filepath.Join(dir, domain.DefaultPatternsDir), s.PatternsDir)
	assert.Equal(t, filepath.Join(dir, domain.DefaultCacheFile), s.CacheFile)
	assert.Equal(t, []int{domain.DefaultSpeed}, s.DefaultSpeeds)
	assert.Equal(t, config.DefaultWorkers, s.Machine.Workers)
	assert.Equal(t, domain.TableDuneWeaver, s.Machine.Calibration.Model)
	assert.True(t, s.Machine.Calibration.Valid())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"malformed yaml", "workers: [", domain.ErrConfigParseFailed},
		{"zero workers", "workers: 0", domain.ErrInvalidWorkerCount},
		{"negative speed", "default_speeds: [100, -5]", domain.ErrInvalidSpeed},
		{"zero gear ratio", "table:\n  gear_ratio: 0", domain.ErrInvalidCalibration},
		{"negative steps", "table:\n  y_steps_per_mm: -1", domain.ErrInvalidCalibration},
		{"unknown table", "table:\n  type: sisyphus", domain.ErrInvalidCalibration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr.Error())
		})
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	dir := t.TempDir()

	_, _, err := config.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrConfigReadFailed.Error())
}

func TestFileConfigLoader_LogsDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).Times(1)

	loader := config.NewLoader(logger)
	s, err := loader.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, s.DefaultSpeeds)
}

func TestFileConfigLoader_FoundFileIsQuiet(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	loader := config.NewLoader(logger)
	s, err := loader.Load(writeConfig(t, "workers: 3"))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Machine.Workers)
}

func TestMachine_Update(t *testing.T) {
	initial := domain.MachineSnapshot{Workers: 1}
	m := config.NewMachine(initial)
	assert.Equal(t, initial, m.Snapshot())

	next := domain.MachineSnapshot{
		Calibration: domain.Calibration{Model: domain.TableDuneWeaver, XStepsPerUnit: 1, YStepsPerUnit: 1, GearRatio: 1},
		Workers:     8,
	}
	m.Update(next)
	assert.Equal(t, next, m.Snapshot())
}
