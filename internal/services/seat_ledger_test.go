package services

import (
	"fmt"
	"testing"

	"rideshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLedgerReserveReleaseRoundTrip(t *testing.T) {
	for n := 1; n <= 4; n++ {
		t.Run(fmt.Sprintf("seats=%d", n), func(t *testing.T) {
			f := newFixture(t)
			trip := f.publishedTrip(t, 4)

			left, err := f.ledger.Reserve(f.ctx, trip.ID, n)
			require.NoError(t, err)
			assert.Equal(t, 4-n, left)

			left, err = f.ledger.Release(f.ctx, trip.ID, n)
			require.NoError(t, err)
			assert.Equal(t, 4, left)

			got, err := f.store.GetTrip(f.ctx, trip.ID)
			require.NoError(t, err)
			assert.Equal(t, trip.SeatsTaken, got.SeatsTaken)
		})
	}
}

func TestSeatLedgerReserveOnFullTrip(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 2)

	_, err := f.ledger.Reserve(f.ctx, trip.ID, 2)
	require.NoError(t, err)

	_, err = f.ledger.Reserve(f.ctx, trip.ID, 1)
	require.ErrorIs(t, err, models.ErrCapacityExceeded)

	got, err := f.store.GetTrip(f.ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SeatsTaken)
	assert.Equal(t, 0, f.ledger.Available(got))
}

func TestSeatLedgerErrors(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 3)

	_, err := f.ledger.Release(f.ctx, trip.ID, 1)
	assert.ErrorIs(t, err, models.ErrInvalidRelease)

	_, err = f.ledger.Reserve(f.ctx, trip.ID, 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.ledger.Release(f.ctx, trip.ID, -1)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.ledger.Reserve(f.ctx, "missing", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, 3, f.available(t, trip.ID))
}

func TestAvailableNeverNegative(t *testing.T) {
	l := NewSeatLedger(nil)
	assert.Equal(t, 0, l.Available(models.Trip{SeatsTotal: 2, SeatsTaken: 3}))
	assert.Equal(t, 2, l.Available(models.Trip{SeatsTotal: 4, SeatsTaken: 2}))
}
