package breaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New("test-venue")
	failing := func() (any, error) { return nil, errors.New("boom") }

	for i := 0; i < 3; i++ {
		_, err := b.Execute(failing)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Execute(func() (any, error) { return "ok", nil })
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreaker_StaysClosedOnSuccess(t *testing.T) {
	b := New("test-venue")
	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (any, error) { return "ok", nil })
		require.NoError(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
