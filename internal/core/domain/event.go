package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventReservationSubmitted EventType = "reservation.submitted"
	EventReservationConfirmed EventType = "reservation.confirmed"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationRejected  EventType = "reservation.rejected"
	EventReservationExpired   EventType = "reservation.expired"
)

type ReservationEvent struct {
	ID            uuid.UUID         `json:"id"`
	Type          EventType         `json:"type"`
	ReservationID int64             `json:"reservation_id"`
	ListingID     int64             `json:"listing_id"`
	TenantID      int64             `json:"tenant_id"`
	ActorID       int64             `json:"actor_id,omitempty"`
	Status        ReservationStatus `json:"status"`
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

func NewReservationEvent(t EventType, r *Reservation, actorID int64) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.New(),
		Type:          t,
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		TenantID:      r.TenantID,
		ActorID:       actorID,
		Status:        r.Status,
		StartDate:     r.StartDate.Format(DateLayout),
		EndDate:       r.EndDate.Format(DateLayout),
		OccurredAt:    time.Now().UTC(),
	}
}
