package book

import "container/list"

// LevelFill records one resting order's contribution to a fill walk
// against a single PriceLevel. The caller (BookSide.FillAgainst, and
// ultimately the matching engine) attaches taker/maker/side/price
// context to turn these into engine.FillRecord values.
type LevelFill struct {
	OrderID  OrderID
	Quantity uint64
}

// PriceLevel is the FIFO queue of resting limit orders at a single
// price, plus their aggregate quantity. Orders are held in a doubly
// linked list so that an order can be removed from the middle of the
// queue in O(1) given a handle (*list.Element), without shifting any
// other order's position — storing plain integer positions would break
// on every removal, which is why BookSide's id index stores *list.Element
// directly rather than an offset.
type PriceLevel struct {
	Price    uint64
	orders   *list.List
	quantity uint64
}

// NewPriceLevel builds an empty level for the given price.
func NewPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		orders: list.New(),
	}
}

// Quantity is the aggregate resting quantity at this level. Invariant:
// always equal to the sum of the quantities of the orders still queued.
func (l *PriceLevel) Quantity() uint64 { return l.quantity }

// Len is the number of resting orders at this level.
func (l *PriceLevel) Len() int { return l.orders.Len() }

// Empty reports whether the level has no resting orders left; the owning
// BookSide removes a level from its price map the instant this is true.
func (l *PriceLevel) Empty() bool { return l.orders.Len() == 0 }

// Insert appends order to the tail of the queue and returns the handle
// the id index should retain for O(1) future removal. It is undefined
// behavior to insert an order whose id already rests at this level; the
// caller (BookSide) is responsible for enforcing id uniqueness. Panics if
// the level's aggregate quantity would overflow uint64.
func (l *PriceLevel) Insert(order *LimitOrder) *list.Element {
	if l.quantity+order.Quantity < l.quantity {
		panic("book: aggregate quantity overflow at price level")
	}
	l.quantity += order.Quantity
	return l.orders.PushBack(order)
}

// Remove drops the order at handle e in O(1). Returns true if the level
// is now empty, in which case the caller must drop the level from the
// owning price map.
func (l *PriceLevel) Remove(e *list.Element) bool {
	order := e.Value.(*LimitOrder)
	l.quantity -= order.Quantity
	l.orders.Remove(e)
	return l.orders.Len() == 0
}

// PeekHead returns the order at the front of the queue without removing
// it, or nil if the level is empty.
func (l *PriceLevel) PeekHead() *LimitOrder {
	front := l.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*LimitOrder)
}

// FillHead consumes from the head of the queue until requested is
// satisfied or the level empties. For each head order: if its quantity
// is <= the remaining requested amount, it is fully removed and recorded
// as a fill of its whole quantity; otherwise its quantity is decremented
// in place (queue position preserved) and the walk stops. Returns the
// fill records in head-to-tail order, the quantity actually filled, and
// whether the level is now empty.
func (l *PriceLevel) FillHead(requested uint64) (fills []LevelFill, filled uint64, empty bool) {
	for requested > 0 {
		front := l.orders.Front()
		if front == nil {
			break
		}
		head := front.Value.(*LimitOrder)

		if head.Quantity <= requested {
			fills = append(fills, LevelFill{OrderID: head.ID, Quantity: head.Quantity})
			filled += head.Quantity
			requested -= head.Quantity
			l.quantity -= head.Quantity
			l.orders.Remove(front)
			continue
		}

		fills = append(fills, LevelFill{OrderID: head.ID, Quantity: requested})
		filled += requested
		head.Quantity -= requested
		l.quantity -= requested
		requested = 0
	}
	return fills, filled, l.orders.Len() == 0
}
