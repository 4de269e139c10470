package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, tenant_id, listing_id, start_date, end_date, total_price, status, created_at, updated_at`

func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	query := `
	INSERT INTO reservations (tenant_id, listing_id, start_date, end_date, total_price, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		reservation.TenantID,
		reservation.ListingID,
		reservation.StartDate,
		reservation.EndDate,
		reservation.TotalPrice,
		reservation.Status,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	).Scan(&reservation.ID)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", translate(err))
	}

	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := scanReservation(conn(ctx, r.db).QueryRowContext(ctx, query, reservationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}

		return nil, err
	}

	return reservation, nil
}

// HasOverlap reports whether an active reservation on the listing intersects
// dates under [start, end) semantics.
func (r *ReservationRepository) HasOverlap(ctx context.Context, listingID int64, dates domain.DateRange) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM reservations
		WHERE listing_id = $1
		  AND status = ANY($2)
		  AND start_date < $4
		  AND $3 < end_date
	)
	`

	var exists bool
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		listingID,
		pq.Array(statusStrings(domain.ActiveStatuses)),
		dates.Start,
		dates.End,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}

	return exists, nil
}

func (r *ReservationRepository) ListByTenant(ctx context.Context, tenantID int64) ([]domain.Reservation, error) {
	query := `
	SELECT ` + reservationColumns + `
	FROM reservations
	WHERE tenant_id = $1
	ORDER BY start_date DESC, id DESC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}

		reservations = append(reservations, *reservation)
	}

	return reservations, rows.Err()
}

func (r *ReservationRepository) ListPendingByOwner(ctx context.Context, ownerID int64) ([]domain.OwnerReservation, error) {
	query := `
	SELECT r.id, r.tenant_id, r.listing_id, r.start_date, r.end_date, r.total_price, r.status, r.created_at, r.updated_at, l.name
	FROM reservations r
	JOIN listings l ON l.id = r.listing_id
	WHERE l.owner_id = $1 AND r.status = $2
	ORDER BY r.start_date, r.id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, ownerID, domain.ReservationPending)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var reservations []domain.OwnerReservation
	for rows.Next() {
		var item domain.OwnerReservation
		if err := rows.Scan(
			&item.ID,
			&item.TenantID,
			&item.ListingID,
			&item.StartDate,
			&item.EndDate,
			&item.TotalPrice,
			&item.Status,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.ListingName,
		); err != nil {
			return nil, err
		}

		normalizeDates(&item.Reservation)
		reservations = append(reservations, item)
	}

	return reservations, rows.Err()
}

// UpdateStatus is a compare-and-set on the current status. When nothing
// matches it tells a missing row apart from a status mismatch.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, reservationID int64, from []domain.ReservationStatus, to domain.ReservationStatus) (*domain.Reservation, error) {
	query := `
	UPDATE reservations
	SET status = $1, updated_at = $2
	WHERE id = $3 AND status = ANY($4)
	RETURNING ` + reservationColumns

	reservation, err := scanReservation(conn(ctx, r.db).QueryRowContext(ctx, query,
		to,
		time.Now().UTC(),
		reservationID,
		pq.Array(statusStrings(from)),
	))
	if err == nil {
		return reservation, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update reservation status: %w", translate(err))
	}

	var current domain.ReservationStatus
	err = conn(ctx, r.db).QueryRowContext(ctx, `SELECT status FROM reservations WHERE id = $1`, reservationID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("%w: reservation is %s", domain.ErrInvalidState, current)
}

func (r *ReservationRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]int64, error) {
	query := `
	SELECT id FROM reservations
	WHERE status = $1 AND start_date < $2
	ORDER BY start_date
	LIMIT $3
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, domain.ReservationPending, before, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *ReservationRepository) DeleteByListing(ctx context.Context, listingID int64) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM reservations WHERE listing_id = $1`, listingID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var reservation domain.Reservation

	err := row.Scan(
		&reservation.ID,
		&reservation.TenantID,
		&reservation.ListingID,
		&reservation.StartDate,
		&reservation.EndDate,
		&reservation.TotalPrice,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	normalizeDates(&reservation)

	return &reservation, nil
}

// normalizeDates pins DATE columns to UTC midnight regardless of the session time zone.
func normalizeDates(r *domain.Reservation) {
	r.StartDate = domain.TruncateDay(r.StartDate)
	r.EndDate = domain.TruncateDay(r.EndDate)
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
