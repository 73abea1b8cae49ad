package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"gemmy/internal/engine"

	kafka "github.com/segmentio/kafka-go"
)

// KafkaPublisher forwards events to an external message bus over Kafka.
// It is the concrete "broker address" collaborator spec §6 names but
// deliberately leaves uninterpreted; the core never imports this file.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher dials no connection eagerly (kafka.Writer connects
// lazily on first write); brokerAddr is a single "host:port".
func NewKafkaPublisher(brokerAddr, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokerAddr),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// wireEvent is the JSON shape written to Kafka. It flattens whichever
// FillResult fields are present; the core's sealed FillResult interface
// stays internal, only this loose projection crosses the process
// boundary, matching spec §6's "the core only hands over the logical
// payload; timestamping and transport are the publisher's job".
type wireEvent struct {
	Kind     string             `json:"kind"`
	Symbol   string             `json:"symbol"`
	OrderID  string             `json:"order_id,omitempty"`
	Price    uint64             `json:"price,omitempty"`
	Quantity uint64             `json:"quantity,omitempty"`
	Fills    []wireFillRecord   `json:"fills,omitempty"`
}

type wireFillRecord struct {
	TakerID  string `json:"taker_id"`
	MakerID  string `json:"maker_id"`
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`
}

func toWireFills(fills []engine.FillRecord) []wireFillRecord {
	out := make([]wireFillRecord, len(fills))
	for i, f := range fills {
		out[i] = wireFillRecord{
			TakerID:  f.TakerID.String(),
			MakerID:  f.MakerID.String(),
			Price:    f.Price,
			Quantity: f.Quantity,
		}
	}
	return out
}

func projectWireEvent(evt Event) wireEvent {
	we := wireEvent{Kind: string(evt.Kind), Symbol: evt.Symbol}
	switch fr := evt.Fill.(type) {
	case engine.Created:
		we.OrderID = fr.Order.ID.String()
		we.Price = fr.Order.Price
		we.Quantity = fr.Order.Quantity
	case engine.Filled:
		we.Fills = toWireFills(fr.Fills)
	case engine.PartiallyFilled:
		we.Fills = toWireFills(fr.Fills)
		if fr.HasCreated {
			we.OrderID = fr.Order.ID.String()
			we.Price = fr.Order.Price
			we.Quantity = fr.Order.Quantity
		}
	case engine.Cancelled:
		we.OrderID = fr.ID.String()
	case engine.Modified:
		we.OrderID = fr.ID.String()
	}
	return we
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(projectWireEvent(evt))
	if err != nil {
		return fmt.Errorf("publisher: encode event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Value: payload})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
