package rate

import (
	"testing"
	"time"

	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_MissingRaw(t *testing.T) {
	c := New()
	_, err := c.Get("upbit", 0, time.Now())
	require.ErrorIs(t, err, ErrMissingUSDKRW)
}

func TestCache_MemoisesWithinTTLOnEqualRaw(t *testing.T) {
	c := NewWithTTL(30 * time.Second)
	base := time.Now()

	first, err := c.Get("upbit", 1400.0, base)
	require.NoError(t, err)
	assert.Equal(t, 1400.0, first)

	second, err := c.Get("upbit", 1400.0, base.Add(10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCache_RefreshesWhenRawChanges(t *testing.T) {
	c := NewWithTTL(30 * time.Second)
	base := time.Now()

	_, err := c.Get("upbit", 1400.0, base)
	require.NoError(t, err)

	got, err := c.Get("upbit", 1405.0, base.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1405.0, got)
}

func TestCache_RefreshesAfterTTLEvenIfRawUnchanged(t *testing.T) {
	c := NewWithTTL(30 * time.Second)
	base := time.Now()

	first, err := c.Get("upbit", 1400.0, base)
	require.NoError(t, err)

	second, err := c.Get("upbit", 1400.0, base.Add(31*time.Second))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, c.recs["upbit"].timestamp.Equal(base.Add(31*time.Second)))
}

func TestExtractUSDKRW_PrefersAskOverMark(t *testing.T) {
	q := quote.Quote{HasAsk: true, Ask: 1400, HasMark: true, Mark: 1390}
	v, ok := ExtractUSDKRW(q)
	require.True(t, ok)
	assert.Equal(t, 1400.0, v)
}

func TestExtractUSDKRW_FallsBackToMark(t *testing.T) {
	q := quote.Quote{HasMark: true, Mark: 1390}
	v, ok := ExtractUSDKRW(q)
	require.True(t, ok)
	assert.Equal(t, 1390.0, v)
}

func TestExtractUSDKRW_AbsentWhenNeitherSet(t *testing.T) {
	q := quote.Quote{}
	_, ok := ExtractUSDKRW(q)
	assert.False(t, ok)
}
