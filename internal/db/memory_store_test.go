package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rideshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTrip(t *testing.T, s *MemoryStore, id string) models.Trip {
	t.Helper()
	trip := models.Trip{
		ID:         id,
		CompanyID:  "company-1",
		SeatsTotal: 4,
		PayMethods: models.PayMethodSet{models.PayMethodCash},
		Status:     models.TripStatusPublished,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.CreateTrip(context.Background(), trip))
	return trip
}

func TestWithTripRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedTrip(t, s, "trip-1")

	boom := errors.New("boom")
	err := s.WithTrip(ctx, "trip-1", func(tx Tx) error {
		trip := tx.Trip()
		trip.SeatsTaken = 3
		require.NoError(t, tx.SaveTrip(trip))
		require.NoError(t, tx.SaveRequest(models.Request{ID: "req-1", TripID: "trip-1", Seats: 3}))

		// Внутри транзакции изменения видны
		assert.Equal(t, 3, tx.Trip().SeatsTaken)
		reqs, err := tx.Requests()
		require.NoError(t, err)
		assert.Len(t, reqs, 1)
		return boom
	})
	require.ErrorIs(t, err, boom)

	trip, err := s.GetTrip(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, 0, trip.SeatsTaken)

	_, err = s.GetRequest(ctx, "req-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestWithTripCommits(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedTrip(t, s, "trip-1")

	err := s.WithTrip(ctx, "trip-1", func(tx Tx) error {
		trip := tx.Trip()
		trip.SeatsTaken = 2
		if err := tx.SaveTrip(trip); err != nil {
			return err
		}
		if err := tx.SaveRequest(models.Request{ID: "req-1", TripID: "trip-1", Seats: 2}); err != nil {
			return err
		}
		return tx.SaveBooking(models.Booking{ID: "b-1", RequestID: "req-1", TripID: "trip-1"})
	})
	require.NoError(t, err)

	trip, err := s.GetTrip(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, 2, trip.SeatsTaken)

	err = s.WithTrip(ctx, "trip-1", func(tx Tx) error {
		b, err := tx.BookingByRequest("req-1")
		require.NoError(t, err)
		assert.Equal(t, "b-1", b.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestWithTripRejectsForeignRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedTrip(t, s, "trip-1")
	seedTrip(t, s, "trip-2")

	err := s.WithTrip(ctx, "trip-1", func(tx Tx) error {
		return tx.SaveRequest(models.Request{ID: "req-1", TripID: "trip-2"})
	})
	require.Error(t, err)

	err = s.WithTrip(ctx, "trip-1", func(tx Tx) error {
		return tx.SaveTrip(models.Trip{ID: "trip-2"})
	})
	require.Error(t, err)
}

func TestSecondBookingForRequestRejected(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedTrip(t, s, "trip-1")

	save := func(id string) error {
		return s.WithTrip(ctx, "trip-1", func(tx Tx) error {
			return tx.SaveBooking(models.Booking{ID: id, RequestID: "req-1", TripID: "trip-1"})
		})
	}
	require.NoError(t, save("b-1"))
	require.Error(t, save("b-2"))

	list, err := s.ListBookings(ctx, BookingQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWithTripUnknownTrip(t *testing.T) {
	s := NewMemoryStore()
	err := s.WithTrip(context.Background(), "missing", func(tx Tx) error { return nil })
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestWithTripCancelledContext(t *testing.T) {
	s := NewMemoryStore()
	seedTrip(t, s, "trip-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithTrip(ctx, "trip-1", func(tx Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestDifferentTripsDoNotBlock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedTrip(t, s, "trip-1")
	seedTrip(t, s, "trip-2")

	entered := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.WithTrip(ctx, "trip-1", func(tx Tx) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan error, 1)
	go func() {
		done <- s.WithTrip(ctx, "trip-2", func(tx Tx) error { return nil })
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("операция над другой поездкой заблокирована")
	}
	close(release)
	wg.Wait()
}

func TestQueriesFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedTrip(t, s, "trip-1")
	seedTrip(t, s, "trip-2")

	require.NoError(t, s.WithTrip(ctx, "trip-1", func(tx Tx) error {
		return tx.SaveRequest(models.Request{ID: "r1", TripID: "trip-1", RiderID: "rider-1", Status: models.RequestStatusPending})
	}))
	require.NoError(t, s.WithTrip(ctx, "trip-2", func(tx Tx) error {
		return tx.SaveRequest(models.Request{ID: "r2", TripID: "trip-2", RiderID: "rider-1", Status: models.RequestStatusDeclined})
	}))

	byRider, err := s.ListRequests(ctx, RequestQuery{RiderID: "rider-1"})
	require.NoError(t, err)
	assert.Len(t, byRider, 2)

	pending, err := s.ListRequests(ctx, RequestQuery{Statuses: []models.RequestStatus{models.RequestStatusPending}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r1", pending[0].ID)

	none, err := s.ListRequests(ctx, RequestQuery{TripIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveVehicleDuplicatePlate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.SaveVehicle(ctx, models.Vehicle{ID: "v1", CompanyID: "c1", Plate: "01 AA 001", Seats: 4}))
	err := s.SaveVehicle(ctx, models.Vehicle{ID: "v2", CompanyID: "c1", Plate: "01 AA 001", Seats: 4})
	require.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, s.SaveVehicle(ctx, models.Vehicle{ID: "v1", CompanyID: "c1", Plate: "01 AA 001", Seats: 7}))
	v, err := s.GetVehicle(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 7, v.Seats)
}
