package book

import (
	"container/list"
	"errors"

	"github.com/tidwall/btree"
)

var (
	// ErrDuplicateOrderID is returned by Insert when an order with the
	// same id already rests on this side.
	ErrDuplicateOrderID = errors.New("book: duplicate order id")
	// ErrUnknownOrderID is returned by Remove/Shrink when the id does not
	// resolve to a resting order on this side.
	ErrUnknownOrderID = errors.New("book: unknown order id")
)

// handle is the non-owning lookup the id index keeps for a resting
// order: which level it sits on, and its list.Element within that
// level's FIFO queue. The PriceLevel (and, transitively, its list) is
// the sole owner of the LimitOrder; this struct never outlives a Remove.
type handle struct {
	level *PriceLevel
	elem  *list.Element
}

// Fill is one maker's contribution to a taker's match, with the maker's
// price attached so the engine can turn it into a FillRecord without
// reaching back into the book.
type Fill struct {
	MakerID  OrderID
	Price    uint64
	Quantity uint64
}

// levels is the ordered price->PriceLevel map for one side of the book.
type levels = btree.BTreeG[*PriceLevel]

// BookSide is one side (bid or ask) of the order book: an ordered price
// map plus an id index for O(1) lookup of any resting order's handle.
type BookSide struct {
	side   Side
	levels *levels
	index  map[OrderID]handle
}

// NewBookSide builds an empty side. Bids sort highest price first
// (descending), asks sort lowest price first (ascending), so that
// levels.Min() is always "best" for both sides.
func NewBookSide(side Side) *BookSide {
	var less func(a, b *PriceLevel) bool
	if side == Bid {
		less = func(a, b *PriceLevel) bool { return a.Price > b.Price }
	} else {
		less = func(a, b *PriceLevel) bool { return a.Price < b.Price }
	}
	return &BookSide{
		side:   side,
		levels: btree.NewBTreeG(less),
		index:  make(map[OrderID]handle),
	}
}

// Side reports which side this is.
func (bs *BookSide) Side() Side { return bs.side }

// Len is the number of resting orders on this side.
func (bs *BookSide) Len() int { return len(bs.index) }

// BestPrice returns the best resting price (highest bid / lowest ask)
// and true, or (0, false) if the side is empty.
func (bs *BookSide) BestPrice() (uint64, bool) {
	lvl, ok := bs.levels.Min()
	if !ok {
		return 0, false
	}
	return lvl.Price, true
}

// Insert locates or creates the PriceLevel at order.Price, appends the
// order to its tail, and indexes its id. Returns ErrDuplicateOrderID if
// the id already rests anywhere on this side.
func (bs *BookSide) Insert(order *LimitOrder) error {
	if _, exists := bs.index[order.ID]; exists {
		return ErrDuplicateOrderID
	}

	lvl, ok := bs.levels.Get(&PriceLevel{Price: order.Price})
	if !ok {
		lvl = NewPriceLevel(order.Price)
		bs.levels.Set(lvl)
	}

	elem := lvl.Insert(order)
	bs.index[order.ID] = handle{level: lvl, elem: elem}
	return nil
}

// Remove drops the order by id, dropping its level too if it empties.
// Returns ErrUnknownOrderID if absent.
func (bs *BookSide) Remove(id OrderID) error {
	h, ok := bs.index[id]
	if !ok {
		return ErrUnknownOrderID
	}
	delete(bs.index, id)

	empty := h.level.Remove(h.elem)
	if empty {
		bs.levels.Delete(h.level)
	}
	return nil
}

// Shrink performs an in-place quantity decrement for a resting order,
// preserving its queue position. It is the only mutation path that must
// never trigger matching (see the modify-shrink law in spec §8/§9).
// newQuantity must be > 0 and <= the order's current quantity; callers
// validate this (see engine.Execute).
func (bs *BookSide) Shrink(id OrderID, newQuantity uint64) error {
	h, ok := bs.index[id]
	if !ok {
		return ErrUnknownOrderID
	}
	order := h.elem.Value.(*LimitOrder)
	delta := order.Quantity - newQuantity
	order.Quantity = newQuantity
	h.level.quantity -= delta
	return nil
}

// Peek returns the resting order for id without mutating anything, for
// use by RFQ/tests/diagnostics. Returns false if absent.
func (bs *BookSide) Peek(id OrderID) (LimitOrder, bool) {
	h, ok := bs.index[id]
	if !ok {
		return LimitOrder{}, false
	}
	return *h.elem.Value.(*LimitOrder), true
}

// Levels walks the side best-first, calling visit for every resting
// PriceLevel, stopping early if visit returns false. Used by depth
// projection and RFQ, neither of which may mutate the side.
func (bs *BookSide) Levels(visit func(*PriceLevel) bool) {
	bs.levels.Scan(visit)
}

// marketable reports whether a level at lvlPrice is marketable for a
// taker crossing at limit (nil = unbounded / market order) on the given
// taker side. A taking bid crosses asks priced at or below its limit; a
// taking ask crosses bids priced at or above its limit.
func marketable(takerSide Side, limit *uint64, lvlPrice uint64) bool {
	if limit == nil {
		return true
	}
	if takerSide == Bid {
		return lvlPrice <= *limit
	}
	return lvlPrice >= *limit
}

// FillAgainst walks this side (the side opposite the taker) best-first,
// consuming liquidity up to quantity, stopping when quantity reaches
// zero, the best remaining level is no longer marketable against limit,
// or the side is exhausted. limit is the taker's limit price, or nil for
// an unbounded market order. Levels emptied during the walk are removed
// immediately. Returns the fills in maker-priority order and the total
// quantity filled.
func (bs *BookSide) FillAgainst(takerSide Side, limit *uint64, quantity uint64) (fills []Fill, filledQty uint64) {
	for quantity > 0 {
		lvl, ok := bs.levels.Min()
		if !ok {
			break
		}
		if !marketable(takerSide, limit, lvl.Price) {
			break
		}

		levelFills, filled, empty := lvl.FillHead(quantity)
		for _, lf := range levelFills {
			fills = append(fills, Fill{MakerID: lf.OrderID, Price: lvl.Price, Quantity: lf.Quantity})
			if head := lvl.PeekHead(); head != nil && head.ID == lf.OrderID {
				// Partially filled maker: still queued, so it stays indexed.
				continue
			}
			delete(bs.index, lf.OrderID)
		}
		quantity -= filled
		filledQty += filled

		if empty {
			bs.levels.Delete(lvl)
		}
	}
	return fills, filledQty
}
