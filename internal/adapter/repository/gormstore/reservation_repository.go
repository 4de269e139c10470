package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	m := reservationFromDomain(reservation)
	if err := conn(ctx, r.db).Omit("Listing").Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert reservation: %w", translate(err))
	}
	reservation.ID = m.ID
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	var m reservationModel
	if err := conn(ctx, r.db).First(&m, "id = ?", reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *ReservationRepository) HasOverlap(ctx context.Context, listingID int64, dates domain.DateRange) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&reservationModel{}).
		Where("listing_id = ?", listingID).
		Where("status IN ?", statusStrings(domain.ActiveStatuses)).
		Where("start_date < ? AND ? < end_date", datatypes.Date(dates.End), datatypes.Date(dates.Start)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}
	return count > 0, nil
}

func (r *ReservationRepository) ListByTenant(ctx context.Context, tenantID int64) ([]domain.Reservation, error) {
	var models []reservationModel
	err := conn(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Order("start_date DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Reservation, 0, len(models))
	for i := range models {
		out = append(out, *models[i].toDomain())
	}
	return out, nil
}

func (r *ReservationRepository) ListPendingByOwner(ctx context.Context, ownerID int64) ([]domain.OwnerReservation, error) {
	var rows []ownerReservationRow
	err := conn(ctx, r.db).
		Table("reservations AS r").
		Select("r.id, r.tenant_id, r.listing_id, r.start_date, r.end_date, r.total_price, r.status, " +
			"r.created_at, r.updated_at, l.name AS listing_name").
		Joins("JOIN listings l ON l.id = r.listing_id").
		Where("l.owner_id = ? AND r.status = ?", ownerID, string(domain.ReservationPending)).
		Order("r.start_date, r.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.OwnerReservation, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// UpdateStatus runs the compare-and-set and the re-read in one transaction,
// so the returned row is the one this call wrote.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, reservationID int64, from []domain.ReservationStatus, to domain.ReservationStatus) (*domain.Reservation, error) {
	var updated *domain.Reservation
	err := withinTx(ctx, r.db, func(ctx context.Context) error {
		res := conn(ctx, r.db).Model(&reservationModel{}).
			Where("id = ? AND status IN ?", reservationID, statusStrings(from)).
			Updates(map[string]any{
				"status":     string(to),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update reservation status: %w", translate(res.Error))
		}

		current, err := r.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}

		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: reservation is %s", domain.ErrInvalidState, current.Status)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ReservationRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]int64, error) {
	var ids []int64
	err := conn(ctx, r.db).Model(&reservationModel{}).
		Where("status = ? AND start_date < ?", string(domain.ReservationPending), datatypes.Date(before)).
		Order("start_date").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ReservationRepository) DeleteByListing(ctx context.Context, listingID int64) (int64, error) {
	res := conn(ctx, r.db).Where("listing_id = ?", listingID).Delete(&reservationModel{})
	return res.RowsAffected, res.Error
}
