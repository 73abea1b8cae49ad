// Package book implements the order book's value types and per-side
// data structures: LimitOrder/MarketOrder, the per-price-level FIFO
// queue, and the ordered price->level map for one side of the book.
package book

import (
	"github.com/google/uuid"
)

// OrderID is a 128-bit opaque identifier, unique across the lifetime of
// the process. Generated by the caller (the wire dispatcher, or a test),
// never by the book itself except when a Modify reuses the id it was
// given (see the engine package).
type OrderID = uuid.UUID

// Side is which side of the book an order rests on or takes from.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "Bid"
	}
	return "Ask"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// LimitOrder rests on its side at its price until filled, cancelled, or
// modified away. Price and Quantity are both required to be nonzero;
// callers validate this before it reaches the book (see engine.Execute).
type LimitOrder struct {
	ID       OrderID
	Side     Side
	Price    uint64
	Quantity uint64
}

// MarketOrder never rests: it is consumed synchronously within a single
// matching step and any residual quantity is discarded.
type MarketOrder struct {
	ID       OrderID
	Side     Side
	Quantity uint64
}
