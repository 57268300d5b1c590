package progrock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patterneta/internal/adapters/telemetry/progrock"
	"go.trai.ch/patterneta/internal/core/domain"
)

func TestRecorder_Integration(t *testing.T) {
	recorder := progrock.New()
	ctx := context.Background()

	_, run := recorder.Record(ctx, "compute durations")
	_, err := run.Stdout().Write([]byte("discovered 3 patterns\n"))
	require.NoError(t, err)
	run.Log(domain.LogLevelInfo, "batch 1/1")
	run.Log(domain.LogLevelWarn, "skipped unreadable pattern")

	_, cached := recorder.Record(ctx, "compute durations")
	cached.Cached()
	cached.Complete(nil)

	run.Complete(errors.New("stopped"))

	assert.NoError(t, recorder.Close())
}
