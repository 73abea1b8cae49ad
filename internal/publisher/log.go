package publisher

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPublisher publishes events as structured log lines. It is the
// default when no broker address is configured, and the fallback every
// other Publisher implementation can be swapped for in tests.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher builds a Publisher that logs every event via logger.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, evt Event) error {
	p.logger.Info().
		Str("kind", string(evt.Kind)).
		Str("symbol", evt.Symbol).
		Interface("fill", evt.Fill).
		Msg("execution event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
