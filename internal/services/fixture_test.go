package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"rideshare-backend/internal/db"
	"rideshare-backend/internal/models"

	"github.com/stretchr/testify/require"
)

type event struct {
	kind   string
	id     string
	status string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) TripStatusChanged(trip models.Trip) {
	n.add(event{kind: "trip", id: trip.ID, status: string(trip.Status)})
}

func (n *recordingNotifier) RequestStatusChanged(req models.Request, _ models.Trip) {
	n.add(event{kind: "request", id: req.ID, status: string(req.Status)})
}

func (n *recordingNotifier) BookingStatusChanged(b models.Booking) {
	n.add(event{kind: "booking", id: b.ID, status: string(b.Status)})
}

func (n *recordingNotifier) add(e event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) has(kind, id, status string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.kind == kind && e.id == id && e.status == status {
			return true
		}
	}
	return false
}

type fixture struct {
	ctx      context.Context
	store    *db.MemoryStore
	ledger   *SeatLedger
	bookings *BookingAggregator
	trips    *TripService
	requests *RequestService
	notifier *recordingNotifier
	driver   models.User
	vehicle  models.Vehicle
}

const testCompany = "company-1"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := db.NewMemoryStore()
	notifier := &recordingNotifier{}
	bookings := NewBookingAggregator(store, nil)

	driver := models.User{
		ID:        "driver-1",
		Role:      models.RoleDriver,
		CompanyID: testCompany,
		FirstName: "Арам",
		LastName:  "Петросян",
		Phone:     "+37491000000",
	}
	require.NoError(t, store.SaveUser(ctx, driver))

	vehicle := models.Vehicle{
		ID:        "vehicle-1",
		CompanyID: testCompany,
		Brand:     "Toyota",
		Model:     "Camry",
		Plate:     "35 OO 777",
		Seats:     4,
		DriverID:  driver.ID,
	}
	require.NoError(t, store.SaveVehicle(ctx, vehicle))

	return &fixture{
		ctx:      ctx,
		store:    store,
		ledger:   NewSeatLedger(store),
		bookings: bookings,
		trips:    NewTripService(store, bookings, notifier),
		requests: NewRequestService(store, bookings, notifier),
		notifier: notifier,
		driver:   driver,
		vehicle:  vehicle,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func point(address string, lat, lng float64) models.Location {
	return models.Location{Address: address, Latitude: ptr(lat), Longitude: ptr(lng)}
}

// tripInput - полностью заполненная поездка, готовая к публикации
func (f *fixture) tripInput(seats int) TripInput {
	return TripInput{
		CompanyID:   testCompany,
		VehicleID:   f.vehicle.ID,
		DriverID:    f.driver.ID,
		From:        point("Ереван, пр. Маштоца 1", 40.1872, 44.5152),
		To:          point("Гюмри, пл. Вардананц", 40.7894, 43.8475),
		DepartureAt: ptr(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
		PriceAmd:    3000,
		SeatsTotal:  seats,
		PayMethods:  []models.PayMethod{models.PayMethodCash, models.PayMethodCard},
	}
}

func (f *fixture) draftTrip(t *testing.T, in TripInput) models.Trip {
	t.Helper()
	trip, err := f.trips.Create(f.ctx, in)
	require.NoError(t, err)
	return trip
}

func (f *fixture) publishedTrip(t *testing.T, seats int) models.Trip {
	t.Helper()
	trip := f.draftTrip(t, f.tripInput(seats))
	trip, err := f.trips.Publish(f.ctx, trip.ID)
	require.NoError(t, err)
	return trip
}

func (f *fixture) request(t *testing.T, tripID, riderID string, seats int) models.Request {
	t.Helper()
	req, err := f.requests.Create(f.ctx, RequestInput{
		TripID:    tripID,
		RiderID:   riderID,
		Seats:     seats,
		PayMethod: models.PayMethodCash,
	})
	require.NoError(t, err)
	return req
}

func (f *fixture) available(t *testing.T, tripID string) int {
	t.Helper()
	trip, err := f.store.GetTrip(f.ctx, tripID)
	require.NoError(t, err)
	return f.ledger.Available(trip)
}
