package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/patterneta/internal/adapters/telemetry"
	"go.trai.ch/patterneta/internal/core/domain"
)

type ctxKey struct{}

func TestNoOp(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")

	got, v := telemetry.NoOp{}.Record(ctx, "anything")
	assert.Equal(t, ctx, got)

	n, err := v.Stdout().Write([]byte("discarded"))
	assert.NoError(t, err)
	assert.Equal(t, 9, n)

	v.Log(domain.LogLevelError, "ignored")
	v.Cached()
	v.Complete(nil)
	assert.NoError(t, telemetry.NoOp{}.Close())
}
