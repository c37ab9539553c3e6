package services

import (
	"fmt"
	"sync"
	"testing"

	"rideshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture(t)
	published := f.publishedTrip(t, 4)
	draft := f.draftTrip(t, f.tripInput(4))

	cashOnly := f.tripInput(4)
	cashOnly.PayMethods = []models.PayMethod{models.PayMethodCash}
	cashTrip := f.draftTrip(t, cashOnly)
	_, err := f.trips.Publish(f.ctx, cashTrip.ID)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   RequestInput
		want error
	}{
		{
			name: "unknown trip",
			in:   RequestInput{TripID: "missing", RiderID: "rider-1", Seats: 1, PayMethod: models.PayMethodCash},
			want: models.ErrNotFound,
		},
		{
			name: "zero seats",
			in:   RequestInput{TripID: published.ID, RiderID: "rider-1", Seats: 0, PayMethod: models.PayMethodCash},
			want: models.ErrValidation,
		},
		{
			name: "more seats than trip has",
			in:   RequestInput{TripID: published.ID, RiderID: "rider-1", Seats: 5, PayMethod: models.PayMethodCash},
			want: models.ErrValidation,
		},
		{
			name: "driver books own trip",
			in:   RequestInput{TripID: published.ID, RiderID: f.driver.ID, Seats: 1, PayMethod: models.PayMethodCash},
			want: models.ErrValidation,
		},
		{
			name: "trip is draft",
			in:   RequestInput{TripID: draft.ID, RiderID: "rider-1", Seats: 1, PayMethod: models.PayMethodCash},
			want: models.ErrTripNotPublished,
		},
		{
			name: "payment not accepted",
			in:   RequestInput{TripID: cashTrip.ID, RiderID: "rider-1", Seats: 1, PayMethod: models.PayMethodCard},
			want: models.ErrInvalidPayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.requests.Create(f.ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateRequestDoesNotReserve(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)

	req := f.request(t, trip.ID, "rider-1", 3)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, 4, f.available(t, trip.ID))
	assert.True(t, f.notifier.has("request", req.ID, "pending"))
}

func TestCreateRequestInsufficientSeats(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)

	req := f.request(t, trip.ID, "rider-1", 3)
	_, _, err := f.requests.Accept(f.ctx, req.ID)
	require.NoError(t, err)

	_, err = f.requests.Create(f.ctx, RequestInput{
		TripID: trip.ID, RiderID: "rider-2", Seats: 2, PayMethod: models.PayMethodCash,
	})
	require.ErrorIs(t, err, models.ErrInsufficientSeats)
}

// Поездка на 4 места: заявки A(3) и B(2) создаются обе, после принятия A
// принять B нельзя, и оператор отклоняет ее.
func TestAcceptOversubscribedScenario(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)

	a := f.request(t, trip.ID, "rider-a", 3)
	b := f.request(t, trip.ID, "rider-b", 2)

	acceptedA, booking, err := f.requests.Accept(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, acceptedA.Status)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, 1, f.available(t, trip.ID))

	_, _, err = f.requests.Accept(f.ctx, b.ID)
	require.ErrorIs(t, err, models.ErrCapacityExceeded)

	stillPending, err := f.requests.Get(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, stillPending.Status)
	assert.Equal(t, 1, f.available(t, trip.ID))

	declined, err := f.requests.Decline(f.ctx, b.ID, "нет мест")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusDeclined, declined.Status)
	assert.Equal(t, "нет мест", declined.DeclineReason)
	assert.Equal(t, 1, f.available(t, trip.ID))
}

func TestAcceptTwiceFails(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)
	req := f.request(t, trip.ID, "rider-1", 2)

	_, _, err := f.requests.Accept(f.ctx, req.ID)
	require.NoError(t, err)

	_, _, err = f.requests.Accept(f.ctx, req.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, 2, f.available(t, trip.ID))

	bookings, err := f.bookings.ListForRider(f.ctx, "rider-1")
	require.NoError(t, err)
	assert.Len(t, bookings.Bookings, 1)
}

func TestAcceptBuildsBookingSnapshot(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)
	req := f.request(t, trip.ID, "rider-1", 2)

	_, booking, err := f.requests.Accept(f.ctx, req.ID)
	require.NoError(t, err)

	assert.Equal(t, req.ID, booking.RequestID)
	assert.Equal(t, trip.ID, booking.TripID)
	assert.Equal(t, testCompany, booking.CompanyID)
	assert.Equal(t, int64(6000), booking.TotalAmd)
	assert.Equal(t, "Арам Петросян", booking.Driver.Name)
	assert.Equal(t, f.driver.Phone, booking.Driver.Phone)
	assert.Equal(t, f.vehicle.Plate, booking.Vehicle.Plate)
	assert.Equal(t, trip.From.Address, booking.Pickup.Address)
	assert.Equal(t, trip.To.Address, booking.Dropoff.Address)
	assert.True(t, f.notifier.has("booking", booking.ID, "confirmed"))
}

func TestCancelAcceptedRestoresSeats(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)
	before := f.available(t, trip.ID)

	req := f.request(t, trip.ID, "rider-1", 3)
	_, booking, err := f.requests.Accept(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, before-3, f.available(t, trip.ID))

	cancelled, err := f.requests.Cancel(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, cancelled.Status)
	assert.Equal(t, before, f.available(t, trip.ID))

	b, err := f.store.GetBooking(f.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, b.Status)
	assert.NotNil(t, b.CancelledAt)

	_, err = f.requests.Cancel(f.ctx, req.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestCancelPendingKeepsSeats(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)
	req := f.request(t, trip.ID, "rider-1", 2)

	_, err := f.requests.Cancel(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, f.available(t, trip.ID))
}

func TestDeclineOnlyPending(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)
	req := f.request(t, trip.ID, "rider-1", 1)

	_, _, err := f.requests.Accept(f.ctx, req.ID)
	require.NoError(t, err)

	_, err = f.requests.Decline(f.ctx, req.ID, "")
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = f.requests.Decline(f.ctx, "missing", "")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)
	req := f.request(t, trip.ID, "rider-1", 2)
	_, booking, err := f.requests.Accept(f.ctx, req.ID)
	require.NoError(t, err)

	cancelled, err := f.requests.CancelBooking(f.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 4, f.available(t, trip.ID))

	got, err := f.requests.Get(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, got.Status)

	_, err = f.requests.CancelBooking(f.ctx, booking.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAcceptOnArchivedTrip(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)
	req := f.request(t, trip.ID, "rider-1", 1)

	_, err := f.trips.Archive(f.ctx, trip.ID)
	require.NoError(t, err)

	stillPending, err := f.requests.Get(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, stillPending.Status)

	_, _, err = f.requests.Accept(f.ctx, req.ID)
	require.ErrorIs(t, err, models.ErrTripNotPublished)
	assert.Equal(t, 4, f.available(t, trip.ID))
}

func TestConcurrentAcceptsNeverOverbook(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)

	const riders = 12
	ids := make([]string, riders)
	for i := range ids {
		ids[i] = f.request(t, trip.ID, fmt.Sprintf("rider-%d", i), 1).ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := f.requests.Accept(f.ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case models.CodeOf(err) == models.CodeCapacityExceeded:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 4, accepted)
	assert.Equal(t, riders-4, rejected)

	got, err := f.store.GetTrip(f.ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.SeatsTaken)
	assert.Equal(t, models.TripStatusPublished, got.Status)
}

func TestListByTrip(t *testing.T) {
	f := newFixture(t)
	trip := f.publishedTrip(t, 4)
	f.request(t, trip.ID, "rider-1", 1)
	f.request(t, trip.ID, "rider-2", 1)

	list, err := f.requests.ListByTrip(f.ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.requests.ListByTrip(f.ctx, "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}
