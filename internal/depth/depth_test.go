package depth

import (
	"testing"

	"gemmy/internal/book"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insert(t *testing.T, b *book.Book, side book.Side, price, qty uint64) {
	t.Helper()
	require.NoError(t, b.Side(side).Insert(&book.LimitOrder{ID: uuid.New(), Side: side, Price: price, Quantity: qty}))
}

func TestProject_BestPricesAndLastTrade(t *testing.T) {
	b := book.NewBook()
	insert(t, b, book.Bid, 99, 10)
	insert(t, b, book.Ask, 101, 10)
	b.RecordTrade(100)

	snap := Project(b, P, 0)
	assert.Equal(t, uint64(99), snap.MaxBid)
	assert.True(t, snap.HasMaxBid)
	assert.Equal(t, uint64(101), snap.MinAsk)
	assert.True(t, snap.HasMinAsk)
	assert.Equal(t, uint64(100), snap.LastTradePrice)
	assert.True(t, snap.HasLastTrade)
}

func TestProject_EmptyBookHasNoBestPricesOrTrade(t *testing.T) {
	b := book.NewBook()
	snap := Project(b, P, 0)
	assert.False(t, snap.HasMaxBid)
	assert.False(t, snap.HasMinAsk)
	assert.False(t, snap.HasLastTrade)
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
}

func TestProject_BucketsContiguousLevelsAtP10(t *testing.T) {
	b := book.NewBook()
	insert(t, b, book.Bid, 101, 5)
	insert(t, b, book.Bid, 105, 5)
	insert(t, b, book.Bid, 109, 5)
	insert(t, b, book.Bid, 91, 5)

	snap := Project(b, P10, 0)
	require.Len(t, snap.Bids, 2)
	assert.Equal(t, Level{Price: 100, Quantity: 15}, snap.Bids[0], "101,105,109 all floor to the 100 bucket and stay best-first")
	assert.Equal(t, Level{Price: 90, Quantity: 5}, snap.Bids[1])
}

func TestProject_RespectsMaxLevels(t *testing.T) {
	b := book.NewBook()
	insert(t, b, book.Ask, 100, 1)
	insert(t, b, book.Ask, 200, 1)
	insert(t, b, book.Ask, 300, 1)

	snap := Project(b, P, 2)
	assert.Len(t, snap.Asks, 2)
	assert.Equal(t, uint64(100), snap.Asks[0].Price)
	assert.Equal(t, uint64(200), snap.Asks[1].Price)
}

func TestProject_SubUnitGranularityCollapsesToWholeUnit(t *testing.T) {
	b := book.NewBook()
	insert(t, b, book.Bid, 100, 3)
	insert(t, b, book.Bid, 101, 4)

	p00 := Project(b, P00, 0)
	p := Project(b, P, 0)
	assert.Equal(t, p.Bids, p00.Bids, "P00/P0 have no sub-unit price to bucket at, so they collapse to P's width of 1")
}
