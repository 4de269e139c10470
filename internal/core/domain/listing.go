package domain

import (
	"time"
)

type Listing struct {
	ID            int64
	OwnerID       int64
	Name          string
	Address       string
	City          string
	Region        string
	Description   string
	PricePerNight float64
	ImagePath     string
	MapLink       string
	CreatedAt     time.Time
}

func (l *Listing) IsOwnedBy(userID int64) bool {
	return l.OwnerID == userID
}

// ListingFilter narrows a listing search. Zero values mean "any".
type ListingFilter struct {
	City     string
	MaxPrice float64
	Limit    int
}
