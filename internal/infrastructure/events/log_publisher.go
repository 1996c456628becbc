package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPublisher writes events to the structured log. Used when no broker is
// configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, eventType string, payload []byte, key string) error {
	p.log.Info().
		Str("event_type", eventType).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("domain event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
