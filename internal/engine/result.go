package engine

import "gemmy/internal/book"

// RejectReason is the taxonomy of recoverable rejections from spec §7.
// All four are returned as values inside Rejected, never panicked.
type RejectReason int

const (
	UnknownOrderId RejectReason = iota
	DuplicateOrderId
	NoLiquidity
	InvalidOrder
)

func (r RejectReason) String() string {
	switch r {
	case UnknownOrderId:
		return "UnknownOrderId"
	case DuplicateOrderId:
		return "DuplicateOrderId"
	case NoLiquidity:
		return "NoLiquidity"
	case InvalidOrder:
		return "InvalidOrder"
	default:
		return "Unknown"
	}
}

// FillRecord is one maker/taker match produced during a matching walk.
// Price is always the maker's (resting) price, never the taker's limit.
type FillRecord struct {
	TakerID  book.OrderID
	MakerID  book.OrderID
	Side     book.Side // the taker's side
	Price    uint64
	Quantity uint64
}

// ExecutionResult is the sealed sum type every Execute call returns:
// either the operation was accepted (Executed) or it was rejected with
// the book left unchanged (Rejected).
type ExecutionResult interface {
	executionResult()
}

// Executed wraps the FillResult produced by an accepted operation.
type Executed struct {
	Fill FillResult
}

// Rejected means the book was not mutated; Reason explains why.
type Rejected struct {
	Reason RejectReason
}

func (Executed) executionResult() {}
func (Rejected) executionResult() {}

// FillResult is the sealed sum type describing what an accepted
// operation actually did to the book.
type FillResult interface {
	fillResult()
}

// Created means a limit order rested on the book with no immediate
// fills at all.
type Created struct {
	Order book.LimitOrder
}

// Filled means the taker (limit or market) was fully consumed; Fills is
// in maker-priority (price-time) order.
type Filled struct {
	Fills []FillRecord
}

// PartiallyFilled means the taker was only partly consumed. For a limit
// order, HasCreated is true and Order holds the resting residual at the
// taker's limit price. For a market order the residual is discarded, so
// HasCreated is false (spec §9 Open Question: market partial fills never
// synthesize a resting order or emit its id).
type PartiallyFilled struct {
	Order      book.LimitOrder
	HasCreated bool
	Fills      []FillRecord
}

// Cancelled reports the id of a limit order removed from the book.
type Cancelled struct {
	ID book.OrderID
}

// Modified reports the id of a limit order that had its quantity
// decreased in place, preserving queue position. A modify that changes
// price or increases quantity instead produces whichever of
// Created/Filled/PartiallyFilled the resulting Limit op produces (see
// Engine.Execute's ModifyOp case).
type Modified struct {
	ID book.OrderID
}

func (Created) fillResult()         {}
func (Filled) fillResult()          {}
func (PartiallyFilled) fillResult() {}
func (Cancelled) fillResult()       {}
func (Modified) fillResult()        {}
