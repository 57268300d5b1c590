package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patterneta/internal/adapters/config"
	"go.trai.ch/patterneta/internal/adapters/logger"
	"go.trai.ch/patterneta/internal/adapters/telemetry"
	"go.trai.ch/patterneta/internal/adapters/watcher"
	"go.trai.ch/patterneta/internal/app"
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
)

func components(logOut *bytes.Buffer) ComponentProvider {
	return func(context.Context) (*app.Components, error) {
		log := logger.New()
		log.SetOutput(logOut)
		factory := func(extension string) (ports.Watcher, error) {
			return watcher.NewWatcher(extension, log)
		}
		return &app.Components{
			App:       app.New(config.NewLoader(log), log, telemetry.NoOp{}, factory),
			Logger:    log,
			Telemetry: telemetry.NoOp{},
		}, nil
	}
}

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	patterns := filepath.Join(dir, "patterns")
	require.NoError(t, os.MkdirAll(patterns, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(patterns, "wave.thr"), []byte("0 0\n3.14 1\n6.28 0.5\n"), 0o600))

	configPath := filepath.Join(dir, domain.DefaultConfigFile)
	require.NoError(t, os.WriteFile(configPath, []byte("default_speeds: [100, 200]\n"), 0o600))
	return configPath
}

func TestRun(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	configPath := writeWorkspace(t)
	invalidPath := writeInvalidConfig(t)

	tests := []struct {
		name         string
		args         []string
		expectedExit int
		stdout       string
	}{
		{
			name:         "compute with valid config",
			args:         []string{"compute", "-c", configPath},
			expectedExit: 0,
			stdout:       "1/1 patterns calculated, 1 cached (completed)\n",
		},
		{
			name:         "unknown command",
			args:         []string{"bogus"},
			expectedExit: 1,
		},
		{
			name:         "missing duration",
			args:         []string{"duration", "nope.thr", "-c", configPath},
			expectedExit: 0,
			stdout:       "unknown\n",
		},
		{
			name:         "invalid config",
			args:         []string{"list", "-c", invalidPath},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := new(bytes.Buffer)
			stderr := new(bytes.Buffer)
			logs := new(bytes.Buffer)

			exitCode := run(context.Background(), tt.args, stdout, stderr, components(logs))
			assert.Equal(t, tt.expectedExit, exitCode)
			if tt.stdout != "" {
				assert.Equal(t, tt.stdout, stdout.String())
			}
			if tt.expectedExit != 0 {
				assert.Contains(t, logs.String(), "Error:")
			}
		})
	}
}

func writeInvalidConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), domain.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("workers: 0\n"), 0o600))
	return path
}

func TestRun_JSONLogs(t *testing.T) {
	logs := new(bytes.Buffer)

	exitCode := run(context.Background(), []string{"list", "--json", "-c", writeInvalidConfig(t)},
		new(bytes.Buffer), new(bytes.Buffer), components(logs))
	require.Equal(t, 1, exitCode)

	var line map[string]any
	lines := bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n"))
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &line))
	assert.Equal(t, "operation failed", line["msg"])
	assert.Contains(t, line["error"], domain.ErrInvalidWorkerCount.Error())
}

func TestRun_ProviderError(t *testing.T) {
	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"list"}, new(bytes.Buffer), stderr,
		func(context.Context) (*app.Components, error) {
			return nil, errors.New("wiring failed")
		})

	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "Error: wiring failed\n", stderr.String())
}
