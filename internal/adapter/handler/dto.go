package handler

import (
	"time"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type reservationResponse struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenant_id"`
	ListingID   int64     `json:"listing_id"`
	ListingName string    `json:"listing_name,omitempty"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Nights      int       `json:"nights"`
	TotalPrice  float64   `json:"total_price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:         r.ID,
		TenantID:   r.TenantID,
		ListingID:  r.ListingID,
		StartDate:  r.StartDate.Format(domain.DateLayout),
		EndDate:    r.EndDate.Format(domain.DateLayout),
		Nights:     r.Range().Nights(),
		TotalPrice: r.TotalPrice,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type listingResponse struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Region        string    `json:"region"`
	Description   string    `json:"description"`
	PricePerNight float64   `json:"price_per_night"`
	ImagePath     string    `json:"image_path,omitempty"`
	MapLink       string    `json:"map_link,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
		ID:            l.ID,
		OwnerID:       l.OwnerID,
		Name:          l.Name,
		Address:       l.Address,
		City:          l.City,
		Region:        l.Region,
		Description:   l.Description,
		PricePerNight: l.PricePerNight,
		ImagePath:     l.ImagePath,
		MapLink:       l.MapLink,
		CreatedAt:     l.CreatedAt,
	}
}
