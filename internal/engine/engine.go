// Package engine implements the matching engine: the single entry point
// that executes one Operation against a book.Book and returns an
// ExecutionResult, maintaining price-time priority and the book's
// cross-side invariants (spec §4.3, §8).
package engine

import (
	"sync"

	"gemmy/internal/book"
)

// Engine is single-writer: Execute serializes every mutating operation
// behind one exclusive lock (spec §5). Depth/RFQ-style read-only queries
// elsewhere in the repo take the read lock for the full duration of
// their snapshot/walk so they never observe a FillHead transition
// mid-flight.
type Engine struct {
	mu   sync.RWMutex
	book *book.Book
}

// New builds an engine over an empty book.
func New() *Engine {
	return &Engine{book: book.NewBook()}
}

// View runs fn with the read lock held and the live book passed through,
// for read-only queries (depth projection, RFQ) that must observe a
// consistent snapshot. fn must not mutate anything reachable from b.
func (e *Engine) View(fn func(b *book.Book)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.book)
}

// BestBid returns the current best bid price, if any.
func (e *Engine) BestBid() (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.BestBid()
}

// BestAsk returns the current best ask price, if any.
func (e *Engine) BestAsk() (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.BestAsk()
}

// LastTradePrice returns the most recent trade price, if any has
// occurred yet.
func (e *Engine) LastTradePrice() (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.LastTradePrice()
}

// Execute runs one Operation to completion and returns its result.
// Execute never blocks on anything but the internal lock, and never
// yields mid-operation (spec §5: "no suspension points inside
// matching"). Every rejection path is validated before any mutation, so
// a Rejected result always means the book is unchanged (spec §7).
func (e *Engine) Execute(op Operation) ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch o := op.(type) {
	case LimitOp:
		return e.executeLimit(o.Order)
	case MarketOp:
		return e.executeMarket(o.Order)
	case ModifyOp:
		return e.executeModify(o)
	case CancelOp:
		return e.executeCancel(o)
	default:
		return Rejected{Reason: InvalidOrder}
	}
}

func (e *Engine) executeLimit(o book.LimitOrder) ExecutionResult {
	if o.Price == 0 || o.Quantity == 0 {
		return Rejected{Reason: InvalidOrder}
	}
	own := e.book.Side(o.Side)
	if _, exists := own.Peek(o.ID); exists {
		return Rejected{Reason: DuplicateOrderId}
	}
	opp := e.book.Side(o.Side.Opposite())
	if _, exists := opp.Peek(o.ID); exists {
		return Rejected{Reason: DuplicateOrderId}
	}

	limit := o.Price
	fills, filledQty := opp.FillAgainst(o.Side, &limit, o.Quantity)
	records := e.recordFills(o.ID, o.Side, fills)

	residual := o.Quantity - filledQty
	if residual == 0 {
		return Executed{Fill: Filled{Fills: records}}
	}

	rest := book.LimitOrder{ID: o.ID, Side: o.Side, Price: o.Price, Quantity: residual}
	if err := own.Insert(&rest); err != nil {
		// Duplicate was already ruled out above; anything else here is a
		// bug in the id index, not a user error.
		invariantViolation("insert residual %v: %v", o.ID, err)
	}

	if len(records) == 0 {
		return Executed{Fill: Created{Order: rest}}
	}
	return Executed{Fill: PartiallyFilled{Order: rest, HasCreated: true, Fills: records}}
}

func (e *Engine) executeMarket(o book.MarketOrder) ExecutionResult {
	if o.Quantity == 0 {
		return Rejected{Reason: InvalidOrder}
	}
	opp := e.book.Side(o.Side.Opposite())
	if opp.Len() == 0 {
		return Rejected{Reason: NoLiquidity}
	}

	fills, filledQty := opp.FillAgainst(o.Side, nil, o.Quantity)
	records := e.recordFills(o.ID, o.Side, fills)

	if filledQty == o.Quantity {
		return Executed{Fill: Filled{Fills: records}}
	}
	// Opposite side exhausted before the full quantity could be filled;
	// the residual is discarded, never rested (spec §4.3 Market step 3).
	return Executed{Fill: PartiallyFilled{HasCreated: false, Fills: records}}
}

func (e *Engine) executeModify(o ModifyOp) ExecutionResult {
	if o.NewQuantity == 0 {
		return Rejected{Reason: InvalidOrder}
	}
	own := e.book.Side(o.Side)
	current, ok := own.Peek(o.ID)
	if !ok {
		if _, onOpposite := e.book.Side(o.Side.Opposite()).Peek(o.ID); onOpposite {
			return Rejected{Reason: InvalidOrder}
		}
		return Rejected{Reason: UnknownOrderId}
	}

	if o.NewPrice == current.Price && o.NewQuantity <= current.Quantity {
		if err := own.Shrink(o.ID, o.NewQuantity); err != nil {
			invariantViolation("shrink %v: %v", o.ID, err)
		}
		return Executed{Fill: Modified{ID: o.ID}}
	}

	if o.NewPrice == 0 {
		return Rejected{Reason: InvalidOrder}
	}

	// Any other change (reprice, or a same-price size increase) is a
	// cancel-and-resubmit: it loses time priority and may match
	// immediately (spec §4.3, §9). The id is reused deliberately; see
	// DESIGN.md Open Question 1.
	if err := own.Remove(o.ID); err != nil {
		invariantViolation("remove for reprice %v: %v", o.ID, err)
	}
	return e.executeLimit(book.LimitOrder{ID: o.ID, Side: o.Side, Price: o.NewPrice, Quantity: o.NewQuantity})
}

func (e *Engine) executeCancel(o CancelOp) ExecutionResult {
	own := e.book.Side(o.Side)
	err := own.Remove(o.ID)
	if err == nil {
		return Executed{Fill: Cancelled{ID: o.ID}}
	}
	if _, onOpposite := e.book.Side(o.Side.Opposite()).Peek(o.ID); onOpposite {
		return Rejected{Reason: InvalidOrder}
	}
	return Rejected{Reason: UnknownOrderId}
}

// recordFills turns book.Fill values from a matching walk into
// FillRecords attached to takerID/takerSide, and updates last_trade_price
// to the price of the last fill, in walk order (spec §8 invariant 5).
func (e *Engine) recordFills(takerID book.OrderID, takerSide book.Side, fills []book.Fill) []FillRecord {
	if len(fills) == 0 {
		return nil
	}
	records := make([]FillRecord, len(fills))
	for i, f := range fills {
		records[i] = FillRecord{
			TakerID:  takerID,
			MakerID:  f.MakerID,
			Side:     takerSide,
			Price:    f.Price,
			Quantity: f.Quantity,
		}
		e.book.RecordTrade(f.Price)
	}
	return records
}
