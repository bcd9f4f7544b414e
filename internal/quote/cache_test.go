package quote

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_FieldMergeNeverClobbers(t *testing.T) {
	c := New()
	now := time.Now()

	c.Update("BTC", Delta{HasBid: true, Bid: 100, Timestamp: now})
	c.Update("BTC", Delta{HasAsk: true, Ask: 101, Timestamp: now.Add(time.Second)})
	c.Update("BTC", Delta{HasFunding: true, FundingRate: 0.0001, Timestamp: now.Add(2 * time.Second)})

	q, ok := c.Get("BTC")
	require.True(t, ok)
	assert.True(t, q.HasBid)
	assert.True(t, q.HasAsk)
	assert.True(t, q.HasFunding)
	assert.Equal(t, 100.0, q.Bid)
	assert.Equal(t, 101.0, q.Ask)
	assert.InDelta(t, 0.0001, q.FundingRate, 1e-12)
}

func TestCache_InvisibleWithoutBidOrAsk(t *testing.T) {
	c := New()
	c.Update("ETH", Delta{HasFunding: true, FundingRate: 0.0002, Timestamp: time.Now()})

	q, ok := c.Get("ETH")
	require.True(t, ok)
	assert.False(t, q.Visible())
}

func TestCache_SnapshotIsIndependentCopy(t *testing.T) {
	c := New()
	c.Update("BTC", Delta{HasBid: true, Bid: 100, Timestamp: time.Now()})

	snap := c.Snapshot()
	c.Update("BTC", Delta{HasBid: true, Bid: 200, Timestamp: time.Now()})

	assert.Equal(t, 100.0, snap["BTC"].Bid)
	q, _ := c.Get("BTC")
	assert.Equal(t, 200.0, q.Bid)
}

func TestCache_ConcurrentWritesAndReads(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Update("BTC", Delta{HasBid: true, Bid: float64(n), Timestamp: time.Now()})
			_ = c.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
