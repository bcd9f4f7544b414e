package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuturesByID(t *testing.T) {
	v, ok := FuturesByID("hyper")
	require.True(t, ok)
	assert.Equal(t, Hyperliquid, v)

	_, ok = FuturesByID("bogus")
	assert.False(t, ok)
}

func TestFeeConstantsMatchOriginal(t *testing.T) {
	assert.Equal(t, 0.0005, Upbit.TakerFee)
	assert.Equal(t, 0.0004, Bithumb.TakerFee)
	assert.Equal(t, 0.0005, OKX.TakerFee)
	assert.Equal(t, 0.0005, Gate.TakerFee)
	assert.Equal(t, 0.00035, Hyperliquid.TakerFee)
}
