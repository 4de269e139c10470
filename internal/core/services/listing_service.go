package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
	"github.com/srgjo27/lodging_booking/internal/core/ports"
)

const maxSearchResults = 100

type CreateListingRequest struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Region        string  `json:"region"`
	Description   string  `json:"description"`
	PricePerNight float64 `json:"price_per_night"`
	ImagePath     string  `json:"image_path"`
	MapLink       string  `json:"map_link"`
}

type ListingService struct {
	listings     ports.ListingRepository
	reservations ports.ReservationRepository
	tx           ports.Transactor
	logger       *zap.Logger
}

func NewListingService(listings ports.ListingRepository, reservations ports.ReservationRepository, tx ports.Transactor, logger *zap.Logger) *ListingService {
	return &ListingService{
		listings:     listings,
		reservations: reservations,
		tx:           tx,
		logger:       logger.Named("listings"),
	}
}

func (s *ListingService) Create(ctx context.Context, actor domain.Actor, req CreateListingRequest) (*domain.Listing, error) {
	if !actor.Valid() {
		return nil, domain.ErrUnauthenticated
	}

	listing := &domain.Listing{
		OwnerID:       actor.ID,
		Name:          strings.TrimSpace(req.Name),
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		Region:        strings.TrimSpace(req.Region),
		Description:   strings.TrimSpace(req.Description),
		PricePerNight: req.PricePerNight,
		ImagePath:     req.ImagePath,
		MapLink:       req.MapLink,
		CreatedAt:     time.Now().UTC(),
	}

	if err := validateListing(listing); err != nil {
		return nil, err
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		s.logger.Error("failed to create listing", zap.Int64("owner_id", actor.ID), zap.Error(err))
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.logger.Info("listing created", zap.Int64("listing_id", listing.ID), zap.Int64("owner_id", actor.ID))

	return listing, nil
}

// UpdateListingRequest carries a partial update; nil fields are left as they are.
type UpdateListingRequest struct {
	Name          *string  `json:"name"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	Region        *string  `json:"region"`
	Description   *string  `json:"description"`
	PricePerNight *float64 `json:"price_per_night"`
	ImagePath     *string  `json:"image_path"`
	MapLink       *string  `json:"map_link"`
}

// Update changes a listing's details. Only the owner may update. A new
// nightly price applies to reservations admitted afterwards.
func (s *ListingService) Update(ctx context.Context, actor domain.Actor, listingID int64, req UpdateListingRequest) (*domain.Listing, error) {
	if !actor.Valid() {
		return nil, domain.ErrUnauthenticated
	}

	if listingID <= 0 {
		return nil, fmt.Errorf("%w: listing id must be positive", domain.ErrInvalidInput)
	}

	var updated *domain.Listing
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}

		if !listing.IsOwnedBy(actor.ID) {
			return fmt.Errorf("%w: only the owner may update this listing", domain.ErrForbidden)
		}

		req.applyTo(listing)
		if err := validateListing(listing); err != nil {
			return err
		}

		if err := s.listings.Update(ctx, listing); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("failed to update listing", zap.Int64("listing_id", listingID), zap.Error(err))
		return nil, fmt.Errorf("update listing: %w", err)
	}

	s.logger.Info("listing updated", zap.Int64("listing_id", listingID), zap.Int64("owner_id", actor.ID))

	return updated, nil
}

func (r UpdateListingRequest) applyTo(l *domain.Listing) {
	setTrimmed := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setTrimmed(&l.Name, r.Name)
	setTrimmed(&l.Address, r.Address)
	setTrimmed(&l.City, r.City)
	setTrimmed(&l.Region, r.Region)
	setTrimmed(&l.Description, r.Description)
	if r.PricePerNight != nil {
		l.PricePerNight = *r.PricePerNight
	}
	if r.ImagePath != nil {
		l.ImagePath = *r.ImagePath
	}
	if r.MapLink != nil {
		l.MapLink = *r.MapLink
	}
}

func validateListing(l *domain.Listing) error {
	switch {
	case l.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case l.Address == "":
		return fmt.Errorf("%w: address is required", domain.ErrInvalidInput)
	case l.City == "":
		return fmt.Errorf("%w: city is required", domain.ErrInvalidInput)
	case l.Region == "":
		return fmt.Errorf("%w: region is required", domain.ErrInvalidInput)
	case l.PricePerNight <= 0:
		return fmt.Errorf("%w: price_per_night must be positive", domain.ErrInvalidInput)
	}
	return nil
}

func (s *ListingService) Get(ctx context.Context, listingID int64) (*domain.Listing, error) {
	if listingID <= 0 {
		return nil, fmt.Errorf("%w: listing id must be positive", domain.ErrInvalidInput)
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

func (s *ListingService) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	if filter.MaxPrice < 0 {
		return nil, fmt.Errorf("%w: max_price must not be negative", domain.ErrInvalidInput)
	}

	filter.City = strings.TrimSpace(filter.City)
	if filter.Limit <= 0 || filter.Limit > maxSearchResults {
		filter.Limit = maxSearchResults
	}

	listings, err := s.listings.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return listings, nil
}

// Delete removes a listing together with all of its reservations in a
// single transaction. Only the owner or an admin may delete. The listing row
// is locked first so a concurrent admission cannot slip a reservation in
// between the two deletes.
func (s *ListingService) Delete(ctx context.Context, actor domain.Actor, listingID int64) error {
	if !actor.Valid() {
		return domain.ErrUnauthenticated
	}

	if listingID <= 0 {
		return fmt.Errorf("%w: listing id must be positive", domain.ErrInvalidInput)
	}

	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}

		if !listing.IsOwnedBy(actor.ID) && !actor.IsAdmin() {
			return fmt.Errorf("%w: only the owner may delete this listing", domain.ErrForbidden)
		}

		n, err := s.reservations.DeleteByListing(ctx, listingID)
		if err != nil {
			return err
		}
		removed = n

		return s.listings.Delete(ctx, listingID)
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		s.logger.Error("failed to delete listing", zap.Int64("listing_id", listingID), zap.Error(err))
		return fmt.Errorf("delete listing: %w", err)
	}

	s.logger.Info("listing deleted",
		zap.Int64("listing_id", listingID),
		zap.Int64("actor_id", actor.ID),
		zap.Int64("reservations_removed", removed),
	)

	return nil
}
