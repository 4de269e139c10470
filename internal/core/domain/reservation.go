package domain

import (
	"time"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	// ReservationPaid is reserved for a payment flow; nothing transitions into it.
	ReservationPaid ReservationStatus = "paid"
)

// ActiveStatuses are the statuses that occupy a listing's calendar.
var ActiveStatuses = []ReservationStatus{ReservationPending, ReservationConfirmed}

func (s ReservationStatus) IsActive() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled, ReservationPaid:
		return true
	}
	return false
}

type Reservation struct {
	ID         int64
	TenantID   int64
	ListingID  int64
	StartDate  time.Time
	EndDate    time.Time
	TotalPrice float64
	Status     ReservationStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r *Reservation) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// OwnerReservation is a reservation as seen by the listing owner.
type OwnerReservation struct {
	Reservation
	ListingName string
}

// Transition describes a compare-and-set status change.
type Transition struct {
	Name string
	From []ReservationStatus
	To   ReservationStatus
}

var (
	TransitionConfirm = Transition{Name: "confirm", From: []ReservationStatus{ReservationPending}, To: ReservationConfirmed}
	TransitionReject  = Transition{Name: "reject", From: []ReservationStatus{ReservationPending}, To: ReservationCancelled}
	TransitionCancel  = Transition{Name: "cancel", From: ActiveStatuses, To: ReservationCancelled}
	TransitionExpire  = Transition{Name: "expire", From: []ReservationStatus{ReservationPending}, To: ReservationCancelled}
)

// Allows reports whether the transition may start from s.
func (t Transition) Allows(s ReservationStatus) bool {
	for _, from := range t.From {
		if from == s {
			return true
		}
	}
	return false
}
