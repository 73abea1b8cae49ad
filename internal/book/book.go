package book

// Book is both sides of the order book for one instrument plus the last
// traded price. Cross-invariant: BestBid() < BestAsk() whenever both
// sides are non-empty; the matching engine must never leave the book in
// a state where that does not hold (see engine.Execute).
type Book struct {
	Bids *BookSide
	Asks *BookSide

	lastTradePrice uint64
	hasTraded      bool
}

// NewBook builds an empty book.
func NewBook() *Book {
	return &Book{
		Bids: NewBookSide(Bid),
		Asks: NewBookSide(Ask),
	}
}

// Side returns the BookSide for the given side.
func (b *Book) Side(side Side) *BookSide {
	if side == Bid {
		return b.Bids
	}
	return b.Asks
}

// BestBid returns the highest resting bid price, or (0, false) if none.
func (b *Book) BestBid() (uint64, bool) { return b.Bids.BestPrice() }

// BestAsk returns the lowest resting ask price, or (0, false) if none.
func (b *Book) BestAsk() (uint64, bool) { return b.Asks.BestPrice() }

// LastTradePrice returns the price of the most recent fill and whether
// any trade has occurred yet.
func (b *Book) LastTradePrice() (uint64, bool) { return b.lastTradePrice, b.hasTraded }

// RecordTrade sets the last trade price. Called by the matching engine
// after every fill, in fill order, so the final call of a multi-fill
// match wins, matching the "most recent emitted FillRecord" invariant.
func (b *Book) RecordTrade(price uint64) {
	b.lastTradePrice = price
	b.hasTraded = true
}

// Crossed reports whether the book is left in an invalid crossed state
// (best bid >= best ask), for use in invariant assertions/tests. A
// correctly implemented matching engine never lets this observe true
// after an Execute call returns.
func (b *Book) Crossed() bool {
	bid, bidOk := b.BestBid()
	ask, askOk := b.BestAsk()
	if !bidOk || !askOk {
		return false
	}
	return bid >= ask
}
