package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
	"github.com/srgjo27/lodging_booking/internal/core/ports"
	"github.com/srgjo27/lodging_booking/internal/platform/metrics"
)

type SubmitReservationRequest struct {
	ListingID int64  `json:"listing_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ReservationService struct {
	listings     ports.ListingRepository
	reservations ports.ReservationRepository
	tx           ports.Transactor
	locker       ports.ListingLocker
	events       ports.EventPublisher
	logger       *zap.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

func NewReservationService(
	listings ports.ListingRepository,
	reservations ports.ReservationRepository,
	tx ports.Transactor,
	locker ports.ListingLocker,
	events ports.EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		listings:     listings,
		reservations: reservations,
		tx:           tx,
		locker:       locker,
		events:       events,
		logger:       logger.Named("reservations"),
		tracer:       otel.Tracer("lodging_booking/services"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit admits a new pending reservation if the dates are free.
//
// Input is validated before any store access. The overlap check and the
// insert run under the listing's admission lock and inside one transaction
// that row-locks the listing, so two overlapping submissions cannot both pass.
func (s *ReservationService) Submit(ctx context.Context, actor domain.Actor, req SubmitReservationRequest) (*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService.Submit",
		trace.WithAttributes(attribute.Int64("listing.id", req.ListingID)))
	defer span.End()

	reservation, err := s.submit(ctx, actor, req)
	metrics.ReservationAdmissions.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("reservation submitted",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("listing_id", reservation.ListingID),
		zap.Int64("tenant_id", reservation.TenantID),
		zap.Stringer("dates", reservation.Range()),
	)
	s.publish(ctx, domain.EventReservationSubmitted, reservation, actor.ID)

	return reservation, nil
}

func (s *ReservationService) submit(ctx context.Context, actor domain.Actor, req SubmitReservationRequest) (*domain.Reservation, error) {
	if !actor.Valid() {
		return nil, domain.ErrUnauthenticated
	}

	if req.ListingID <= 0 {
		return nil, fmt.Errorf("%w: listing_id must be positive", domain.ErrInvalidInput)
	}

	dates, err := domain.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, req.ListingID)
	if err != nil {
		return nil, s.internal("lock listing", err)
	}
	defer release()

	reservation := &domain.Reservation{
		TenantID:  actor.ID,
		ListingID: req.ListingID,
		StartDate: dates.Start,
		EndDate:   dates.End,
		Status:    domain.ReservationPending,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.listings.GetForUpdate(ctx, req.ListingID)
		if err != nil {
			return err
		}

		taken, err := s.reservations.HasOverlap(ctx, listing.ID, dates)
		if err != nil {
			return err
		}

		if taken {
			return fmt.Errorf("%w: %s", domain.ErrDateConflict, dates)
		}

		now := s.now()
		reservation.TotalPrice = math.Round(float64(dates.Nights())*listing.PricePerNight*100) / 100
		reservation.CreatedAt = now
		reservation.UpdatedAt = now

		return s.reservations.Create(ctx, reservation)
	})
	if err != nil {
		return nil, s.internal("submit reservation", err)
	}

	return reservation, nil
}

func (s *ReservationService) ListForTenant(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error) {
	if !actor.Valid() {
		return nil, domain.ErrUnauthenticated
	}

	reservations, err := s.reservations.ListByTenant(ctx, actor.ID)
	if err != nil {
		return nil, s.internal("list tenant reservations", err)
	}

	return reservations, nil
}

// ListPendingForOwner returns pending reservations on every listing the actor owns.
func (s *ReservationService) ListPendingForOwner(ctx context.Context, actor domain.Actor) ([]domain.OwnerReservation, error) {
	if !actor.Valid() {
		return nil, domain.ErrUnauthenticated
	}

	reservations, err := s.reservations.ListPendingByOwner(ctx, actor.ID)
	if err != nil {
		return nil, s.internal("list owner pending reservations", err)
	}

	return reservations, nil
}

func (s *ReservationService) Confirm(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error) {
	return s.transition(ctx, actor, reservationID, domain.TransitionConfirm, s.requireListingOwner, domain.EventReservationConfirmed)
}

// Reject declines a pending reservation on the owner's behalf.
func (s *ReservationService) Reject(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error) {
	return s.transition(ctx, actor, reservationID, domain.TransitionReject, s.requireListingOwner, domain.EventReservationRejected)
}

// Cancel is the tenant withdrawing a pending or confirmed reservation.
// A cancelled reservation cannot be cancelled again.
func (s *ReservationService) Cancel(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error) {
	return s.transition(ctx, actor, reservationID, domain.TransitionCancel, requireTenant, domain.EventReservationCancelled)
}

type authorizer func(ctx context.Context, actor domain.Actor, reservation *domain.Reservation) error

func requireTenant(_ context.Context, actor domain.Actor, reservation *domain.Reservation) error {
	if reservation.TenantID != actor.ID {
		return fmt.Errorf("%w: only the tenant may do this", domain.ErrForbidden)
	}
	return nil
}

func (s *ReservationService) requireListingOwner(ctx context.Context, actor domain.Actor, reservation *domain.Reservation) error {
	listing, err := s.listings.GetByID(ctx, reservation.ListingID)
	if err != nil {
		return err
	}

	if !listing.IsOwnedBy(actor.ID) {
		return fmt.Errorf("%w: only the listing owner may do this", domain.ErrForbidden)
	}
	return nil
}

// transition loads the reservation, authorizes the actor, checks the current
// status and then applies a compare-and-set update. A concurrent change
// between the check and the update surfaces as ErrInvalidState.
func (s *ReservationService) transition(
	ctx context.Context,
	actor domain.Actor,
	reservationID int64,
	t domain.Transition,
	authorize authorizer,
	event domain.EventType,
) (*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService."+t.Name,
		trace.WithAttributes(attribute.Int64("reservation.id", reservationID)))
	defer span.End()

	updated, err := s.applyTransition(ctx, actor, reservationID, t, authorize)
	metrics.ReservationTransitions.WithLabelValues(t.Name, outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("reservation status changed",
		zap.String("transition", t.Name),
		zap.Int64("reservation_id", updated.ID),
		zap.Int64("actor_id", actor.ID),
		zap.String("status", string(updated.Status)),
	)
	s.publish(ctx, event, updated, actor.ID)

	return updated, nil
}

func (s *ReservationService) applyTransition(
	ctx context.Context,
	actor domain.Actor,
	reservationID int64,
	t domain.Transition,
	authorize authorizer,
) (*domain.Reservation, error) {
	if !actor.Valid() {
		return nil, domain.ErrUnauthenticated
	}

	if reservationID <= 0 {
		return nil, fmt.Errorf("%w: reservation id must be positive", domain.ErrInvalidInput)
	}

	current, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, s.internal("load reservation", err)
	}

	if err := authorize(ctx, actor, current); err != nil {
		return nil, s.internal("authorize "+t.Name, err)
	}

	if !t.Allows(current.Status) {
		return nil, fmt.Errorf("%w: cannot %s a %s reservation", domain.ErrInvalidState, t.Name, current.Status)
	}

	updated, err := s.reservations.UpdateStatus(ctx, reservationID, t.From, t.To)
	if err != nil {
		return nil, s.internal(t.Name+" reservation", err)
	}

	return updated, nil
}

func (s *ReservationService) publish(ctx context.Context, t domain.EventType, reservation *domain.Reservation, actorID int64) {
	if err := s.events.Publish(context.WithoutCancel(ctx), domain.NewReservationEvent(t, reservation, actorID)); err != nil {
		s.logger.Warn("failed to publish reservation event",
			zap.String("type", string(t)),
			zap.Int64("reservation_id", reservation.ID),
			zap.Error(err),
		)
	}
}

// internal passes domain errors through untouched and logs anything else
// before wrapping it with the failing operation.
func (s *ReservationService) internal(op string, err error) error {
	if isDomainError(err) {
		return err
	}
	s.logger.Error("reservation store failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

var domainErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrUnauthenticated,
	domain.ErrForbidden,
	domain.ErrListingNotFound,
	domain.ErrReservationNotFound,
	domain.ErrDateConflict,
	domain.ErrInvalidState,
	domain.ErrBusy,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrReservationNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDateConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	default:
		return "error"
	}
}
