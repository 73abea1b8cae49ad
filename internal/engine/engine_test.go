package engine

import (
	"testing"

	"gemmy/internal/book"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limit(id uuid.UUID, side book.Side, price, qty uint64) LimitOp {
	return LimitOp{Order: book.LimitOrder{ID: id, Side: side, Price: price, Quantity: qty}}
}

func market(id uuid.UUID, side book.Side, qty uint64) MarketOp {
	return MarketOp{Order: book.MarketOrder{ID: id, Side: side, Quantity: qty}}
}

func TestExecute_LimitRestsWithNoCross(t *testing.T) {
	e := New()
	id := uuid.New()
	result := e.Execute(limit(id, book.Bid, 100, 10))

	executed, ok := result.(Executed)
	require.True(t, ok)
	created, ok := executed.Fill.(Created)
	require.True(t, ok)
	assert.Equal(t, id, created.Order.ID)

	best, ok := e.BestBid()
	assert.True(t, ok)
	assert.Equal(t, uint64(100), best)
}

func TestExecute_LimitCrossesAndFills(t *testing.T) {
	e := New()
	makerID := uuid.New()
	takerID := uuid.New()

	require.IsType(t, Executed{}, e.Execute(limit(makerID, book.Ask, 100, 10)))
	result := e.Execute(limit(takerID, book.Bid, 100, 10))

	executed := result.(Executed)
	filled, ok := executed.Fill.(Filled)
	require.True(t, ok)
	require.Len(t, filled.Fills, 1)
	assert.Equal(t, makerID, filled.Fills[0].MakerID)
	assert.Equal(t, takerID, filled.Fills[0].TakerID)
	assert.Equal(t, uint64(100), filled.Fills[0].Price, "fill price is always the maker's resting price")

	price, ok := e.LastTradePrice()
	assert.True(t, ok)
	assert.Equal(t, uint64(100), price)
}

func TestExecute_LimitPartiallyFilledRestsResidual(t *testing.T) {
	e := New()
	makerID := uuid.New()
	takerID := uuid.New()

	e.Execute(limit(makerID, book.Ask, 100, 5))
	result := e.Execute(limit(takerID, book.Bid, 100, 10))

	partial, ok := result.(Executed).Fill.(PartiallyFilled)
	require.True(t, ok)
	assert.True(t, partial.HasCreated)
	assert.Equal(t, uint64(5), partial.Order.Quantity, "residual rests at the taker's limit price")
	assert.Equal(t, uint64(100), partial.Order.Price)
}

func TestExecute_MarketOrderNeverRestsResidual(t *testing.T) {
	e := New()
	makerID := uuid.New()
	takerID := uuid.New()

	e.Execute(limit(makerID, book.Ask, 100, 5))
	result := e.Execute(market(takerID, book.Bid, 10))

	partial, ok := result.(Executed).Fill.(PartiallyFilled)
	require.True(t, ok)
	assert.False(t, partial.HasCreated, "market residual is discarded, never rested")

	_, ok = e.BestBid()
	assert.False(t, ok)
}

func TestExecute_MarketOrderRejectedWithNoLiquidity(t *testing.T) {
	e := New()
	result := e.Execute(market(uuid.New(), book.Bid, 10))
	rejected, ok := result.(Rejected)
	require.True(t, ok)
	assert.Equal(t, NoLiquidity, rejected.Reason)
}

func TestExecute_DuplicateOrderIDRejected(t *testing.T) {
	e := New()
	id := uuid.New()
	e.Execute(limit(id, book.Bid, 100, 10))
	result := e.Execute(limit(id, book.Bid, 101, 5))
	rejected, ok := result.(Rejected)
	require.True(t, ok)
	assert.Equal(t, DuplicateOrderId, rejected.Reason)
}

func TestExecute_DuplicateOrderIDRejectedAcrossSides(t *testing.T) {
	e := New()
	id := uuid.New()
	e.Execute(limit(id, book.Bid, 100, 10))
	result := e.Execute(limit(id, book.Ask, 101, 5))
	rejected, ok := result.(Rejected)
	require.True(t, ok)
	assert.Equal(t, DuplicateOrderId, rejected.Reason)
}

func TestExecute_InvalidOrderRejectsZeroPriceOrQuantity(t *testing.T) {
	e := New()
	assert.Equal(t, Rejected{Reason: InvalidOrder}, e.Execute(limit(uuid.New(), book.Bid, 0, 10)))
	assert.Equal(t, Rejected{Reason: InvalidOrder}, e.Execute(limit(uuid.New(), book.Bid, 100, 0)))
	assert.Equal(t, Rejected{Reason: InvalidOrder}, e.Execute(market(uuid.New(), book.Bid, 0)))
}

func TestExecute_CancelUnknownOrderRejected(t *testing.T) {
	e := New()
	result := e.Execute(CancelOp{ID: uuid.New(), Side: book.Bid})
	rejected, ok := result.(Rejected)
	require.True(t, ok)
	assert.Equal(t, UnknownOrderId, rejected.Reason)
}

func TestExecute_CancelWrongSideRejectedAsInvalid(t *testing.T) {
	e := New()
	id := uuid.New()
	e.Execute(limit(id, book.Bid, 100, 10))
	result := e.Execute(CancelOp{ID: id, Side: book.Ask})
	rejected, ok := result.(Rejected)
	require.True(t, ok)
	assert.Equal(t, InvalidOrder, rejected.Reason, "a real id on the wrong side is a client error, not an unknown id")
}

func TestExecute_CancelIsInverseOfCreate(t *testing.T) {
	e := New()
	id := uuid.New()
	e.Execute(limit(id, book.Bid, 100, 10))
	result := e.Execute(CancelOp{ID: id, Side: book.Bid})
	cancelled, ok := result.(Executed).Fill.(Cancelled)
	require.True(t, ok)
	assert.Equal(t, id, cancelled.ID)

	_, ok = e.BestBid()
	assert.False(t, ok, "cancelling the only resting order empties the book")
}

func TestExecute_ModifyShrinkPreservesQueuePosition(t *testing.T) {
	e := New()
	first := uuid.New()
	second := uuid.New()
	e.Execute(limit(first, book.Bid, 100, 10))
	e.Execute(limit(second, book.Bid, 100, 10))

	result := e.Execute(ModifyOp{ID: first, Side: book.Bid, NewPrice: 100, NewQuantity: 4})
	modified, ok := result.(Executed).Fill.(Modified)
	require.True(t, ok)
	assert.Equal(t, first, modified.ID)

	// A crossing sell for 4 should match the shrunk order first: it kept
	// its head-of-queue position despite the size decrease.
	fillResult := e.Execute(market(uuid.New(), book.Ask, 4))
	filled := fillResult.(Executed).Fill.(Filled)
	require.Len(t, filled.Fills, 1)
	assert.Equal(t, first, filled.Fills[0].MakerID)
}

func TestExecute_ModifySizeIncreaseLosesTimePriority(t *testing.T) {
	e := New()
	first := uuid.New()
	second := uuid.New()
	e.Execute(limit(first, book.Bid, 100, 10))
	e.Execute(limit(second, book.Bid, 100, 10))

	e.Execute(ModifyOp{ID: first, Side: book.Bid, NewPrice: 100, NewQuantity: 20})

	fillResult := e.Execute(market(uuid.New(), book.Ask, 10))
	filled := fillResult.(Executed).Fill.(Filled)
	require.Len(t, filled.Fills, 1)
	assert.Equal(t, second, filled.Fills[0].MakerID, "a same-price size increase loses time priority to the untouched order")
}

func TestExecute_ModifyUnknownOrderRejected(t *testing.T) {
	e := New()
	result := e.Execute(ModifyOp{ID: uuid.New(), Side: book.Bid, NewPrice: 100, NewQuantity: 1})
	rejected, ok := result.(Rejected)
	require.True(t, ok)
	assert.Equal(t, UnknownOrderId, rejected.Reason)
}

func TestExecute_NeverLeavesBookCrossed(t *testing.T) {
	e := New()
	e.Execute(limit(uuid.New(), book.Bid, 100, 10))
	e.Execute(limit(uuid.New(), book.Ask, 100, 5))

	var crossed bool
	e.View(func(b *book.Book) { crossed = b.Crossed() })
	assert.False(t, crossed)
}
