package domain_test

import (
	"testing"
	"time"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, start, end string) domain.DateRange {
	t.Helper()
	r, err := domain.ParseDateRange(start, end)
	require.NoError(t, err)
	return r
}

func TestParseDateRange_Invalid(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"end before start", "2025-07-01", "2025-06-30"},
		{"same day", "2025-06-01", "2025-06-01"},
		{"bad start", "01/06/2025", "2025-06-05"},
		{"bad end", "2025-06-01", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.ParseDateRange(tc.start, tc.end)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestDateRange_Overlaps(t *testing.T) {
	base := mustRange(t, "2025-06-01", "2025-06-05")

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"identical", "2025-06-01", "2025-06-05", true},
		{"tail overlap", "2025-06-03", "2025-06-07", true},
		{"head overlap", "2025-05-28", "2025-06-02", true},
		{"contained", "2025-06-02", "2025-06-03", true},
		{"containing", "2025-05-01", "2025-07-01", true},
		{"check-in on check-out day", "2025-06-05", "2025-06-08", false},
		{"check-out on check-in day", "2025-05-25", "2025-06-01", false},
		{"disjoint", "2025-07-01", "2025-07-03", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := mustRange(t, tc.start, tc.end)
			assert.Equal(t, tc.want, base.Overlaps(other))
			assert.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestDateRange_Nights(t *testing.T) {
	assert.Equal(t, 4, mustRange(t, "2025-06-01", "2025-06-05").Nights())
	assert.Equal(t, 1, mustRange(t, "2025-12-31", "2026-01-01").Nights())
}

func TestNewDateRange_TruncatesToDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	r, err := domain.NewDateRange(
		time.Date(2025, 6, 1, 18, 30, 0, 0, loc),
		time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
	)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), r.End)
	assert.Equal(t, "[2025-06-01, 2025-06-02)", r.String())
}

func TestTransition_Allows(t *testing.T) {
	assert.True(t, domain.TransitionConfirm.Allows(domain.ReservationPending))
	assert.False(t, domain.TransitionConfirm.Allows(domain.ReservationConfirmed))
	assert.True(t, domain.TransitionCancel.Allows(domain.ReservationConfirmed))
	assert.False(t, domain.TransitionCancel.Allows(domain.ReservationCancelled))
	assert.False(t, domain.TransitionReject.Allows(domain.ReservationCancelled))

	for _, tr := range []domain.Transition{domain.TransitionConfirm, domain.TransitionReject, domain.TransitionCancel, domain.TransitionExpire} {
		assert.False(t, tr.Allows(domain.ReservationCancelled), tr.Name)
	}
}
