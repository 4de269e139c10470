package ports

import (
	"context"
	"time"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, listingID int64) (*domain.Listing, error)
	// GetForUpdate row-locks the listing until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, listingID int64) (*domain.Listing, error)
	Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	// Update overwrites the mutable fields of an existing listing.
	Update(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, listingID int64) error
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, reservationID int64) (*domain.Reservation, error)
	HasOverlap(ctx context.Context, listingID int64, dates domain.DateRange) (bool, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]domain.Reservation, error)
	ListPendingByOwner(ctx context.Context, ownerID int64) ([]domain.OwnerReservation, error)
	// UpdateStatus moves the reservation to `to` only if its current status is one of `from`.
	UpdateStatus(ctx context.Context, reservationID int64, from []domain.ReservationStatus, to domain.ReservationStatus) (*domain.Reservation, error)
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]int64, error)
	DeleteByListing(ctx context.Context, listingID int64) (int64, error)
}

// Transactor runs fn inside one store transaction carried by the context
// passed to fn. Repositories called with that context join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
