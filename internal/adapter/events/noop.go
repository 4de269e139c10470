package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct {
	logger *zap.Logger
}

func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.Named("events")}
}

func (p *NoopPublisher) Publish(_ context.Context, event domain.ReservationEvent) error {
	p.logger.Debug("event dropped, no brokers configured",
		zap.String("type", string(event.Type)),
		zap.Int64("reservation_id", event.ReservationID))
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
