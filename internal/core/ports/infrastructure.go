package ports

import (
	"context"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

// ListingLocker serializes admission per listing. The returned release func
// must be called exactly once.
type ListingLocker interface {
	Lock(ctx context.Context, listingID int64) (release func(), err error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.ReservationEvent) error
}
