package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	m := listingFromDomain(listing)
	if err := conn(ctx, r.db).Create(m).Error; err != nil {
		return translate(err)
	}
	listing.ID = m.ID
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, listingID int64) (*domain.Listing, error) {
	return r.first(conn(ctx, r.db), listingID)
}

// GetForUpdate takes a row lock on Postgres. SQLite has no row locks and
// relies on its single writer plus the admission lock.
func (r *ListingRepository) GetForUpdate(ctx context.Context, listingID int64) (*domain.Listing, error) {
	q := conn(ctx, r.db)
	if q.Dialector.Name() == DialectPostgres {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.first(q, listingID)
}

func (r *ListingRepository) first(q *gorm.DB, listingID int64) (*domain.Listing, error) {
	var m listingModel
	if err := q.First(&m, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *ListingRepository) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	q := conn(ctx, r.db).Model(&listingModel{})

	if filter.City != "" {
		q = q.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.MaxPrice > 0 {
		q = q.Where("price_per_night <= ?", filter.MaxPrice)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var models []listingModel
	if err := q.Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	listings := make([]domain.Listing, 0, len(models))
	for i := range models {
		listings = append(listings, *models[i].toDomain())
	}
	return listings, nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	m := listingFromDomain(listing)
	res := conn(ctx, r.db).Model(&listingModel{}).
		Where("id = ?", listing.ID).
		Select("name", "address", "city", "region", "description", "price_per_night", "image_path", "map_link").
		Updates(m)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, listingID int64) error {
	res := conn(ctx, r.db).Delete(&listingModel{}, "id = ?", listingID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}
