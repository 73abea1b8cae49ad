// Package publisher forwards accepted-operation results to an external
// message bus. This is a collaborator (spec §1, §6): the core only ever
// hands over the logical engine.FillResult payload; timestamping and
// transport belong here, never in internal/engine.
package publisher

import (
	"context"

	"gemmy/internal/engine"
)

// EventKind is the tagged message kind spec §6 names for published
// events, one per FillResult variant (Modified and Cancelled share
// CancelModifyOrder, since both remove/alter a resting order without a
// new trade).
type EventKind string

const (
	CreateOrder       EventKind = "CreateOrder"
	FillOrder         EventKind = "FillOrder"
	PartialFillOrder  EventKind = "PartialFillOrder"
	CancelModifyOrder EventKind = "CancelModifyOrder"
)

// KindOf maps a FillResult to its published event kind.
func KindOf(fr engine.FillResult) EventKind {
	switch fr.(type) {
	case engine.Created:
		return CreateOrder
	case engine.Filled:
		return FillOrder
	case engine.PartiallyFilled:
		return PartialFillOrder
	case engine.Cancelled, engine.Modified:
		return CancelModifyOrder
	default:
		return CancelModifyOrder
	}
}

// Event is the logical payload handed to a Publisher. Symbol identifies
// the instrument (the core is single-symbol per process, but the
// publisher boundary carries it since downstream consumers are not).
type Event struct {
	Kind   EventKind
	Symbol string
	Fill   engine.FillResult
}

// NewEvent builds the Event for an accepted operation's result.
func NewEvent(symbol string, fr engine.FillResult) Event {
	return Event{Kind: KindOf(fr), Symbol: symbol, Fill: fr}
}

// Publisher forwards one Event to wherever downstream consumers listen.
// Implementations own timestamping and transport.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}
