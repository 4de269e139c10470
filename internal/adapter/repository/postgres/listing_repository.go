package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, owner_id, name, address, city, region, description, price_per_night, image_path, map_link, created_at`

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
	INSERT INTO listings (owner_id, name, address, city, region, description, price_per_night, image_path, map_link, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id
	`

	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		listing.OwnerID,
		listing.Name,
		listing.Address,
		listing.City,
		listing.Region,
		listing.Description,
		listing.PricePerNight,
		listing.ImagePath,
		listing.MapLink,
		listing.CreatedAt,
	).Scan(&listing.ID)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", translate(err))
	}

	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, listingID int64) (*domain.Listing, error) {
	return r.get(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, listingID)
}

func (r *ListingRepository) GetForUpdate(ctx context.Context, listingID int64) (*domain.Listing, error) {
	return r.get(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1 FOR UPDATE`, listingID)
}

func (r *ListingRepository) get(ctx context.Context, query string, listingID int64) (*domain.Listing, error) {
	listing, err := scanListing(conn(ctx, r.db).QueryRowContext(ctx, query, listingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}

		return nil, err
	}

	return listing, nil
}

func (r *ListingRepository) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	var (
		where []string
		args  []any
	)

	if filter.City != "" {
		args = append(args, filter.City)
		where = append(where, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}

	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		where = append(where, fmt.Sprintf("price_per_night <= $%d", len(args)))
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args))

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}

		listings = append(listings, *listing)
	}

	return listings, rows.Err()
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	query := `
	UPDATE listings
	SET name = $2, address = $3, city = $4, region = $5, description = $6,
	    price_per_night = $7, image_path = $8, map_link = $9
	WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		listing.ID,
		listing.Name,
		listing.Address,
		listing.City,
		listing.Region,
		listing.Description,
		listing.PricePerNight,
		listing.ImagePath,
		listing.MapLink,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", translate(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrListingNotFound
	}

	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, listingID int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, listingID)
	if err != nil {
		return translate(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrListingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var listing domain.Listing
	var imagePath, mapLink sql.NullString

	err := row.Scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Name,
		&listing.Address,
		&listing.City,
		&listing.Region,
		&listing.Description,
		&listing.PricePerNight,
		&imagePath,
		&mapLink,
		&listing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	listing.ImagePath = imagePath.String
	listing.MapLink = mapLink.String

	return &listing, nil
}
