// Package rfq answers request-for-quote queries: given a hypothetical
// market order, it walks the opposite side of the book without mutating
// it and reports what that order would have done (spec §4.5).
package rfq

import "gemmy/internal/book"

// Result is the sealed sum type Evaluate returns.
type Result interface {
	rfqResult()
}

// CompleteFill means the opposite side can fully absorb the requested
// quantity. VWAP is the volume-weighted average price of the walk.
type CompleteFill struct {
	VWAP     uint64
	Quantity uint64
}

// PartialFill means the opposite side exhausts before the requested
// quantity is filled. VWAP covers only the filled portion.
type PartialFill struct {
	VWAP     uint64
	Quantity uint64
}

// ConvertLimit means the opposite side is empty but the same side has
// resting liquidity; the caller is advised to place a limit order
// instead. BestSamePrice is that side's best price.
type ConvertLimit struct {
	BestSamePrice uint64
}

// NotPossible means both sides are empty; there is nothing to quote.
type NotPossible struct{}

func (CompleteFill) rfqResult() {}
func (PartialFill) rfqResult()  {}
func (ConvertLimit) rfqResult() {}
func (NotPossible) rfqResult()  {}

// Evaluate prices a hypothetical market order of the given quantity and
// taker side against b, without mutating anything. Callers should take a
// read lock around Evaluate (see engine.Engine.View) so the walk
// observes one consistent snapshot.
func Evaluate(b *book.Book, quantity uint64, takerSide book.Side) Result {
	opposite := b.Side(takerSide.Opposite())

	var filled uint64
	var notional uint64 // sum of price*qty; safe for realistic order sizes

	opposite.Levels(func(lvl *book.PriceLevel) bool {
		if filled >= quantity {
			return false
		}
		remaining := quantity - filled
		take := lvl.Quantity()
		if take > remaining {
			take = remaining
		}
		filled += take
		notional += lvl.Price * take
		return filled < quantity
	})

	if filled == 0 {
		same := b.Side(takerSide)
		if best, ok := same.BestPrice(); ok {
			return ConvertLimit{BestSamePrice: best}
		}
		return NotPossible{}
	}

	vwap := notional / filled
	if filled >= quantity {
		return CompleteFill{VWAP: vwap, Quantity: quantity}
	}
	return PartialFill{VWAP: vwap, Quantity: filled}
}
