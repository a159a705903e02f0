package kafka

import (
	"context"
	"time"

	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
)

const sourceService = "facetmap"

// Signaler is anything that can be asked to run a refresh cycle.
type Signaler interface {
	Signal(ctx context.Context) error
}

// RefreshPublisher broadcasts refresh requests so every replica bound to the
// same field re-runs its cycle. It satisfies the interaction controller's
// signaler.
type RefreshPublisher struct {
	producer publisher
	field    string
	reason   string
}

func NewRefreshPublisher(p *Producer, field, reason string) *RefreshPublisher {
	return &RefreshPublisher{producer: p, field: field, reason: reason}
}

func (r *RefreshPublisher) Signal(ctx context.Context) error {
	env, err := NewEventEnvelope(EventRefreshRequested, sourceService, RefreshRequestedPayload{
		Field:       r.field,
		Reason:      r.reason,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicPanelRefresh, r.field)
	if err != nil {
		return err
	}
	return r.producer.Publish(ctx, msg)
}

// RefreshHandler signals target for refresh events addressed to field. An
// empty payload field addresses every panel. Other event types are ignored.
func RefreshHandler(target Signaler, field string, logger logging.Logger) MessageHandler {
	return func(ctx context.Context, msg *Message) error {
		env, err := MessageToEventEnvelope(msg)
		if err != nil {
			logger.Warn("Dropping undecodable refresh message", logging.Int64("offset", msg.Offset), logging.Err(err))
			return nil
		}
		if env.EventType != EventRefreshRequested {
			logger.Debug("Ignoring event", logging.String("event_type", env.EventType))
			return nil
		}
		var p RefreshRequestedPayload
		if err := env.DecodePayload(&p); err != nil {
			logger.Warn("Dropping refresh with bad payload", logging.String("event_id", env.EventID), logging.Err(err))
			return nil
		}
		if p.Field != "" && p.Field != field {
			return nil
		}
		logger.Debug("Refresh requested",
			logging.String("event_id", env.EventID),
			logging.String("reason", p.Reason))
		return target.Signal(ctx)
	}
}

//Personal.AI order the ending
