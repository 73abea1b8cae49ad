package rfq

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

func TestEvaluate_CompleteFillComputesVWAP(t *testing.T) {
	b := book.NewBook()
	insert(t, b, book.Ask, 100, 5)
	insert(t, b, book.Ask, 102, 5)

	result := Evaluate(b, 10, book.Bid)
	fill, ok := result.(CompleteFill)
	require.True(t, ok)
	assert.Equal(t, uint64(10), fill.Quantity)
	assert.Equal(t, uint64((100*5+102*5)/10), fill.VWAP)
}

func TestEvaluate_PartialFillWhenOppositeExhausts(t *testing.T) {
	b := book.NewBook()
	insert(t, b, book.Ask, 100, 5)

	result := Evaluate(b, 10, book.Bid)
	partial, ok := result.(PartialFill)
	require.True(t, ok)
	assert.Equal(t, uint64(5), partial.Quantity)
	assert.Equal(t, uint64(100), partial.VWAP)
}

func TestEvaluate_ConvertLimitWhenOppositeEmptyButSameSideRests(t *testing.T) {
	b := book.NewBook()
	insert(t, b, book.Bid, 95, 5)

	result := Evaluate(b, 10, book.Bid)
	convert, ok := result.(ConvertLimit)
	require.True(t, ok)
	assert.Equal(t, uint64(95), convert.BestSamePrice)
}

func TestEvaluate_NotPossibleWhenBookEmpty(t *testing.T) {
	b := book.NewBook()
	result := Evaluate(b, 10, book.Bid)
	assert.IsType(t, NotPossible{}, result)
}

func TestEvaluate_DoesNotMutateBook(t *testing.T) {
	b := book.NewBook()
	insert(t, b, book.Ask, 100, 5)
	Evaluate(b, 5, book.Bid)

	best, ok := b.BestAsk()
	assert.True(t, ok)
	assert.Equal(t, uint64(100), best, "RFQ evaluation is read-only")
	assert.Equal(t, 1, b.Asks.Len())
}
