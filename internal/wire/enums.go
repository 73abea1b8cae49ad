// Package wire implements the bit-exact binary message schema and
// length-prefixed framing from spec §6, plus its request/response
// encodings for the OrderDispatcher and StatStream RPC services. This is
// a collaborator boundary (spec §1): the core (internal/book,
// internal/engine, internal/depth, internal/rfq) never imports it.
package wire

import "gemmy/internal/depth"

// OrderSide is the wire encoding of book.Side: Bid=0, Ask=1.
type OrderSide uint8

const (
	SideBid OrderSide = 0
	SideAsk OrderSide = 1
)

// OrderStatus is the wire encoding of an engine.FillResult's kind.
type OrderStatus uint8

const (
	StatusCreated         OrderStatus = 0
	StatusFilled          OrderStatus = 1
	StatusPartiallyFilled OrderStatus = 2
	StatusModified        OrderStatus = 3
	StatusCancelled       OrderStatus = 4
)

// RfqStatus is the wire encoding of an rfq.Result's kind.
type RfqStatus uint8

const (
	RfqCompleteFill RfqStatus = 0
	RfqPartialFill  RfqStatus = 1
	RfqConvertLimit RfqStatus = 2
	RfqNotPossible  RfqStatus = 3
)

// Granularity is the wire encoding of a depth bucket width; the values
// are bit-exact with depth.Granularity (P00=0, P0=1, P=2, P10=3, P100=4),
// so we alias rather than re-declare it.
type Granularity = depth.Granularity

const (
	P00  = depth.P00
	P0   = depth.P0
	P    = depth.P
	P10  = depth.P10
	P100 = depth.P100
)
