package gormstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/srgjo27/lodging_booking/internal/adapter/repository/gormstore"
	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type stores struct {
	db           *gorm.DB
	listings     *gormstore.ListingRepository
	reservations *gormstore.ReservationRepository
	tx           *gormstore.Transactor
}

func setupStores(t *testing.T) stores {
	t.Helper()

	db, err := gormstore.Open(gormstore.DialectSQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	require.NoError(t, gormstore.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return stores{
		db:           db,
		listings:     gormstore.NewListingRepository(db),
		reservations: gormstore.NewReservationRepository(db),
		tx:           gormstore.NewTransactor(db),
	}
}

func seedListing(t *testing.T, s stores, ownerID int64, city string, price float64) *domain.Listing {
	t.Helper()
	listing := &domain.Listing{
		OwnerID:       ownerID,
		Name:          "Casa Azul",
		Address:       "Calle Mayor 1",
		City:          city,
		Region:        "Comunitat Valenciana",
		PricePerNight: price,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.listings.Create(context.Background(), listing))
	require.NotZero(t, listing.ID)
	return listing
}

func dates(t *testing.T, start, end string) domain.DateRange {
	t.Helper()
	r, err := domain.ParseDateRange(start, end)
	require.NoError(t, err)
	return r
}

func newReservation(tenantID, listingID int64, r domain.DateRange) *domain.Reservation {
	now := time.Now().UTC()
	return &domain.Reservation{
		TenantID:   tenantID,
		ListingID:  listingID,
		StartDate:  r.Start,
		EndDate:    r.End,
		TotalPrice: 200,
		Status:     domain.ReservationPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestListingRepository_CRUD(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	listing := seedListing(t, s, 99, "Valencia", 50)

	got, err := s.listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casa Azul", got.Name)
	assert.Equal(t, int64(99), got.OwnerID)
	assert.Equal(t, 50.0, got.PricePerNight)

	locked, err := s.listings.GetForUpdate(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, locked.ID)

	_, err = s.listings.GetByID(ctx, 4242)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	require.NoError(t, s.listings.Delete(ctx, listing.ID))
	assert.ErrorIs(t, s.listings.Delete(ctx, listing.ID), domain.ErrListingNotFound)
}

func TestListingRepository_Update(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	listing := seedListing(t, s, 99, "Valencia", 50)

	listing.Name = "Casa Verde"
	listing.PricePerNight = 80
	listing.ImagePath = ""
	require.NoError(t, s.listings.Update(ctx, listing))

	got, err := s.listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casa Verde", got.Name)
	assert.Equal(t, 80.0, got.PricePerNight)
	assert.Equal(t, int64(99), got.OwnerID)

	missing := *listing
	missing.ID = 4242
	assert.ErrorIs(t, s.listings.Update(ctx, &missing), domain.ErrListingNotFound)
}

func TestListingRepository_Search(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	seedListing(t, s, 99, "Valencia", 50)
	seedListing(t, s, 99, "Valencia", 120)
	seedListing(t, s, 7, "Sevilla", 40)

	got, err := s.listings.Search(ctx, domain.ListingFilter{City: "valencia", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.listings.Search(ctx, domain.ListingFilter{City: "VALENCIA", MaxPrice: 60, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 50.0, got[0].PricePerNight)

	got, err = s.listings.Search(ctx, domain.ListingFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReservationRepository_OverlapAndCancelledExclusion(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	listing := seedListing(t, s, 99, "Valencia", 50)

	first := newReservation(1, listing.ID, dates(t, "2025-06-01", "2025-06-05"))
	require.NoError(t, s.reservations.Create(ctx, first))

	tests := []struct {
		name  string
		start string
		end   string
		taken bool
	}{
		{"same range", "2025-06-01", "2025-06-05", true},
		{"tail overlap", "2025-06-03", "2025-06-07", true},
		{"head overlap", "2025-05-28", "2025-06-02", true},
		{"contained", "2025-06-02", "2025-06-03", true},
		{"check-in on check-out day", "2025-06-05", "2025-06-07", false},
		{"check-out on check-in day", "2025-05-28", "2025-06-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken, err := s.reservations.HasOverlap(ctx, listing.ID, dates(t, tt.start, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.taken, taken)
		})
	}

	_, err := s.reservations.UpdateStatus(ctx, first.ID, domain.ActiveStatuses, domain.ReservationCancelled)
	require.NoError(t, err)

	taken, err := s.reservations.HasOverlap(ctx, listing.ID, dates(t, "2025-06-01", "2025-06-05"))
	require.NoError(t, err)
	assert.False(t, taken, "cancelled reservations free the calendar")
}

func TestReservationRepository_CreateAndGet(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	listing := seedListing(t, s, 99, "Valencia", 50)

	res := newReservation(1, listing.ID, dates(t, "2025-06-01", "2025-06-05"))
	require.NoError(t, s.reservations.Create(ctx, res))

	got, err := s.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.StartDate, got.StartDate)
	assert.Equal(t, res.EndDate, got.EndDate)
	assert.Equal(t, domain.ReservationPending, got.Status)
	assert.Equal(t, 200.0, got.TotalPrice)

	_, err = s.reservations.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestReservationRepository_UpdateStatusCAS(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	listing := seedListing(t, s, 99, "Valencia", 50)
	res := newReservation(1, listing.ID, dates(t, "2025-06-01", "2025-06-05"))
	require.NoError(t, s.reservations.Create(ctx, res))

	updated, err := s.reservations.UpdateStatus(ctx, res.ID, domain.TransitionConfirm.From, domain.ReservationConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationConfirmed, updated.Status)

	_, err = s.reservations.UpdateStatus(ctx, res.ID, domain.TransitionReject.From, domain.ReservationCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = s.reservations.UpdateStatus(ctx, 999, domain.TransitionConfirm.From, domain.ReservationConfirmed)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestReservationRepository_UpdateStatusJoinsOuterTx(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	listing := seedListing(t, s, 99, "Valencia", 50)
	res := newReservation(1, listing.ID, dates(t, "2025-06-01", "2025-06-05"))
	require.NoError(t, s.reservations.Create(ctx, res))

	failure := errors.New("abort")
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err := s.reservations.UpdateStatus(ctx, res.ID, domain.TransitionConfirm.From, domain.ReservationConfirmed)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationConfirmed, updated.Status, "re-read sees its own write")
		return failure
	})
	require.ErrorIs(t, err, failure)

	got, err := s.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationPending, got.Status, "rollback undoes the status change")
}

func TestReservationRepository_Lists(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	mine := seedListing(t, s, 99, "Valencia", 50)
	other := seedListing(t, s, 7, "Sevilla", 40)

	early := newReservation(1, mine.ID, dates(t, "2025-06-01", "2025-06-05"))
	late := newReservation(1, other.ID, dates(t, "2025-07-01", "2025-07-05"))
	foreign := newReservation(2, mine.ID, dates(t, "2025-08-01", "2025-08-03"))
	for _, r := range []*domain.Reservation{early, late, foreign} {
		require.NoError(t, s.reservations.Create(ctx, r))
	}
	_, err := s.reservations.UpdateStatus(ctx, foreign.ID, domain.TransitionConfirm.From, domain.ReservationConfirmed)
	require.NoError(t, err)

	byTenant, err := s.reservations.ListByTenant(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byTenant, 2)
	assert.Equal(t, late.ID, byTenant[0].ID, "newest stay first")

	pending, err := s.reservations.ListPendingByOwner(ctx, 99)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, early.ID, pending[0].ID)
	assert.Equal(t, "Casa Azul", pending[0].ListingName)
	assert.Equal(t, int64(1), pending[0].TenantID)
	assert.Equal(t, mine.ID, pending[0].ListingID)
	assert.Equal(t, domain.ReservationPending, pending[0].Status)
	assert.Equal(t, early.StartDate, pending[0].StartDate)
	assert.Equal(t, early.EndDate, pending[0].EndDate)
	assert.Equal(t, 200.0, pending[0].TotalPrice)
}

func TestReservationRepository_ListStalePending(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	listing := seedListing(t, s, 99, "Valencia", 50)

	past := newReservation(1, listing.ID, dates(t, "2025-01-01", "2025-01-03"))
	future := newReservation(1, listing.ID, dates(t, "2025-03-01", "2025-03-03"))
	confirmedPast := newReservation(2, listing.ID, dates(t, "2025-01-10", "2025-01-12"))
	for _, r := range []*domain.Reservation{past, future, confirmedPast} {
		require.NoError(t, s.reservations.Create(ctx, r))
	}
	_, err := s.reservations.UpdateStatus(ctx, confirmedPast.ID, domain.TransitionConfirm.From, domain.ReservationConfirmed)
	require.NoError(t, err)

	ids, err := s.reservations.ListStalePending(ctx, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{past.ID}, ids)
}

func TestListingDelete_RemovesReservationsInOneTx(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	listing := seedListing(t, s, 99, "Valencia", 50)
	require.NoError(t, s.reservations.Create(ctx, newReservation(1, listing.ID, dates(t, "2025-06-01", "2025-06-05"))))

	failure := errors.New("abort")
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.reservations.DeleteByListing(ctx, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return failure
	})
	require.ErrorIs(t, err, failure)

	list, err := s.reservations.ListByTenant(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1, "rollback keeps the reservation")

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.reservations.DeleteByListing(ctx, listing.ID); err != nil {
			return err
		}
		return s.listings.Delete(ctx, listing.ID)
	})
	require.NoError(t, err)

	_, err = s.listings.GetByID(ctx, listing.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	list, err = s.reservations.ListByTenant(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}
