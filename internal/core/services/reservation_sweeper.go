package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
	"github.com/srgjo27/lodging_booking/internal/core/ports"
	"github.com/srgjo27/lodging_booking/internal/platform/metrics"
)

const sweepBatchSize = 100

// ReservationSweeper cancels pending reservations whose check-in day has
// already passed without the owner answering.
type ReservationSweeper struct {
	reservations ports.ReservationRepository
	events       ports.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewReservationSweeper(reservations ports.ReservationRepository, events ports.EventPublisher, logger *zap.Logger) *ReservationSweeper {
	return &ReservationSweeper{
		reservations: reservations,
		events:       events,
		logger:       logger.Named("sweeper"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReservationSweeper) RunBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.ExpireStalePending(ctx); err != nil {
				s.logger.Error("failed to expire stale reservations", zap.Error(err))
			}
		}
	}
}

// ExpireStalePending processes one batch and returns how many reservations
// were cancelled.
func (s *ReservationSweeper) ExpireStalePending(ctx context.Context) (int, error) {
	today := domain.TruncateDay(s.now())

	ids, err := s.reservations.ListStalePending(ctx, today, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return 0, nil
	}

	s.logger.Debug("found stale pending reservations", zap.Int("count", len(ids)))

	expired := 0
	for _, id := range ids {
		t := domain.TransitionExpire
		updated, err := s.reservations.UpdateStatus(ctx, id, t.From, t.To)
		switch {
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrReservationNotFound):
			// answered or removed since the listing query
			metrics.ReservationTransitions.WithLabelValues(t.Name, outcome(err)).Inc()
			continue
		case err != nil:
			metrics.ReservationTransitions.WithLabelValues(t.Name, outcome(err)).Inc()
			s.logger.Error("failed to expire reservation", zap.Int64("reservation_id", id), zap.Error(err))
			continue
		}

		metrics.ReservationTransitions.WithLabelValues(t.Name, "ok").Inc()
		expired++

		event := domain.NewReservationEvent(domain.EventReservationExpired, updated, 0)
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish reservation event", zap.Int64("reservation_id", id), zap.Error(err))
		}
	}

	s.logger.Info("stale reservations expired", zap.Int("expired", expired), zap.Int("candidates", len(ids)))

	return expired, nil
}
