package book

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSide_BestPrice_BidsDescendingAsksAscending(t *testing.T) {
	bids := NewBookSide(Bid)
	require.NoError(t, bids.Insert(&LimitOrder{ID: uuid.New(), Side: Bid, Price: 99, Quantity: 1}))
	require.NoError(t, bids.Insert(&LimitOrder{ID: uuid.New(), Side: Bid, Price: 101, Quantity: 1}))
	require.NoError(t, bids.Insert(&LimitOrder{ID: uuid.New(), Side: Bid, Price: 100, Quantity: 1}))
	best, ok := bids.BestPrice()
	assert.True(t, ok)
	assert.Equal(t, uint64(101), best, "best bid is the highest resting price")

	asks := NewBookSide(Ask)
	require.NoError(t, asks.Insert(&LimitOrder{ID: uuid.New(), Side: Ask, Price: 105, Quantity: 1}))
	require.NoError(t, asks.Insert(&LimitOrder{ID: uuid.New(), Side: Ask, Price: 102, Quantity: 1}))
	require.NoError(t, asks.Insert(&LimitOrder{ID: uuid.New(), Side: Ask, Price: 103, Quantity: 1}))
	best, ok = asks.BestPrice()
	assert.True(t, ok)
	assert.Equal(t, uint64(102), best, "best ask is the lowest resting price")
}

func TestBookSide_Insert_DuplicateID(t *testing.T) {
	side := NewBookSide(Bid)
	id := uuid.New()
	require.NoError(t, side.Insert(&LimitOrder{ID: id, Side: Bid, Price: 100, Quantity: 1}))
	err := side.Insert(&LimitOrder{ID: id, Side: Bid, Price: 101, Quantity: 1})
	assert.ErrorIs(t, err, ErrDuplicateOrderID)
}

func TestBookSide_Remove_DropsEmptyLevel(t *testing.T) {
	side := NewBookSide(Bid)
	id := uuid.New()
	require.NoError(t, side.Insert(&LimitOrder{ID: id, Side: Bid, Price: 100, Quantity: 1}))
	require.NoError(t, side.Remove(id))

	_, ok := side.BestPrice()
	assert.False(t, ok, "removing the only order at a level drops the level entirely")
	assert.Equal(t, 0, side.Len())

	err := side.Remove(id)
	assert.ErrorIs(t, err, ErrUnknownOrderID)
}

func TestBookSide_Shrink_PreservesQueuePosition(t *testing.T) {
	side := NewBookSide(Bid)
	first := uuid.New()
	second := uuid.New()
	require.NoError(t, side.Insert(&LimitOrder{ID: first, Side: Bid, Price: 100, Quantity: 10}))
	require.NoError(t, side.Insert(&LimitOrder{ID: second, Side: Bid, Price: 100, Quantity: 10}))

	require.NoError(t, side.Shrink(first, 4))

	order, ok := side.Peek(first)
	require.True(t, ok)
	assert.Equal(t, uint64(4), order.Quantity)

	fills, filled := side.FillAgainst(Ask, nil, 4)
	assert.Equal(t, uint64(4), filled)
	require.Len(t, fills, 1)
	assert.Equal(t, first, fills[0].MakerID, "shrunk order keeps head-of-queue priority")
}

func TestBookSide_FillAgainst_RespectsLimitPrice(t *testing.T) {
	asks := NewBookSide(Ask)
	cheap := uuid.New()
	expensive := uuid.New()
	require.NoError(t, asks.Insert(&LimitOrder{ID: cheap, Side: Ask, Price: 100, Quantity: 10}))
	require.NoError(t, asks.Insert(&LimitOrder{ID: expensive, Side: Ask, Price: 105, Quantity: 10}))

	limit := uint64(100)
	fills, filled := asks.FillAgainst(Bid, &limit, 20)
	assert.Equal(t, uint64(10), filled, "a bid limited to 100 cannot take the level resting at 105")
	require.Len(t, fills, 1)
	assert.Equal(t, cheap, fills[0].MakerID)
}

func TestBookSide_FillAgainst_MarketOrderIgnoresLimit(t *testing.T) {
	asks := NewBookSide(Ask)
	require.NoError(t, asks.Insert(&LimitOrder{ID: uuid.New(), Side: Ask, Price: 100, Quantity: 10}))
	require.NoError(t, asks.Insert(&LimitOrder{ID: uuid.New(), Side: Ask, Price: 105, Quantity: 10}))

	fills, filled := asks.FillAgainst(Bid, nil, 20)
	assert.Equal(t, uint64(20), filled)
	assert.Len(t, fills, 2)
	assert.Equal(t, 0, asks.Len())
}
