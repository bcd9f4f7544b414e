package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_PerVenueIndependence(t *testing.T) {
	l := New(1, 1)
	assert.True(t, l.Allow("okx"))
	assert.False(t, l.Allow("okx"))
	assert.True(t, l.Allow("gate"), "gate must have its own bucket, unaffected by okx")
}

func TestLimiter_WaitRespectsContextCancellation(t *testing.T) {
	l := New(0.001, 1)
	l.Allow("okx")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "okx")
	require.Error(t, err)
}

func TestSleepBetweenChunks_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SleepBetweenChunks(ctx)
	require.Error(t, err)
}
