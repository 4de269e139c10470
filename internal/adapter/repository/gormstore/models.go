package gormstore

import (
	"time"

	"gorm.io/datatypes"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

// listings
type listingModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	OwnerID       int64     `gorm:"not null;index"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Address       string    `gorm:"type:varchar(255);not null"`
	City          string    `gorm:"type:varchar(100);not null"`
	Region        string    `gorm:"type:varchar(100);not null"`
	Description   string    `gorm:"type:text;not null;default:''"`
	PricePerNight float64   `gorm:"type:numeric(10,2);not null"`
	ImagePath     string    `gorm:"type:varchar(512)"`
	MapLink       string    `gorm:"type:varchar(400)"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (listingModel) TableName() string { return "listings" }

// reservations
type reservationModel struct {
	ID         int64          `gorm:"primaryKey;autoIncrement"`
	TenantID   int64          `gorm:"not null;index"`
	ListingID  int64          `gorm:"not null;index:idx_reservations_listing_status,priority:1"`
	StartDate  datatypes.Date `gorm:"not null"`
	EndDate    datatypes.Date `gorm:"not null"`
	TotalPrice float64        `gorm:"type:numeric(12,2);not null;default:0"`
	Status     string         `gorm:"type:varchar(20);not null;index:idx_reservations_listing_status,priority:2"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`

	Listing *listingModel `gorm:"foreignKey:ListingID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (reservationModel) TableName() string { return "reservations" }

// ownerReservationRow is scanned from the reservations/listings join.
type ownerReservationRow struct {
	ID          int64
	TenantID    int64
	ListingID   int64
	StartDate   datatypes.Date
	EndDate     datatypes.Date
	TotalPrice  float64
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ListingName string
}

func (row *ownerReservationRow) toDomain() domain.OwnerReservation {
	m := reservationModel{
		ID:         row.ID,
		TenantID:   row.TenantID,
		ListingID:  row.ListingID,
		StartDate:  row.StartDate,
		EndDate:    row.EndDate,
		TotalPrice: row.TotalPrice,
		Status:     row.Status,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	return domain.OwnerReservation{Reservation: *m.toDomain(), ListingName: row.ListingName}
}

func listingFromDomain(l *domain.Listing) *listingModel {
	return &listingModel{
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

func (m *listingModel) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		Name:          m.Name,
		Address:       m.Address,
		City:          m.City,
		Region:        m.Region,
		Description:   m.Description,
		PricePerNight: m.PricePerNight,
		ImagePath:     m.ImagePath,
		MapLink:       m.MapLink,
		CreatedAt:     m.CreatedAt,
	}
}

func reservationFromDomain(r *domain.Reservation) *reservationModel {
	return &reservationModel{
		ID:         r.ID,
		TenantID:   r.TenantID,
		ListingID:  r.ListingID,
		StartDate:  datatypes.Date(r.StartDate),
		EndDate:    datatypes.Date(r.EndDate),
		TotalPrice: r.TotalPrice,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (m *reservationModel) toDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ListingID:  m.ListingID,
		StartDate:  domain.TruncateDay(time.Time(m.StartDate)),
		EndDate:    domain.TruncateDay(time.Time(m.EndDate)),
		TotalPrice: m.TotalPrice,
		Status:     domain.ReservationStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
