package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"rideshare-backend/internal/db"
	"rideshare-backend/internal/models"

	"github.com/google/uuid"
)

// ListCache - кэш выдачи доступных поездок. Допускает небольшое отставание от БД.
type ListCache interface {
	Get(ctx context.Context, key string, result interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, interface{}) error         { return nil }
func (noopCache) Invalidate(context.Context) error                       { return nil }

// TripFilter - фильтры пассажира для списка доступных поездок
type TripFilter struct {
	From        string
	To          string
	MaxPriceAmd int64
	MinSeats    int
	PayMethods  []models.PayMethod
	DepartFrom  *time.Time
	DepartTo    *time.Time
}

func (f TripFilter) cacheKey() string {
	methods := make([]string, len(f.PayMethods))
	for i, m := range f.PayMethods {
		methods[i] = string(m)
	}
	sort.Strings(methods)

	var from, to int64
	if f.DepartFrom != nil {
		from = f.DepartFrom.Unix()
	}
	if f.DepartTo != nil {
		to = f.DepartTo.Unix()
	}
	return fmt.Sprintf("from=%s|to=%s|price=%d|seats=%d|pay=%s|dep=%d-%d",
		strings.ToLower(strings.TrimSpace(f.From)),
		strings.ToLower(strings.TrimSpace(f.To)),
		f.MaxPriceAmd, f.MinSeats, strings.Join(methods, ","), from, to)
}

// Match проверяет, подходит ли опубликованная поездка под фильтр
func (f TripFilter) Match(trip models.Trip) bool {
	free := trip.SeatsAvailable()
	if free <= 0 || free < f.MinSeats {
		return false
	}
	if !containsFold(trip.From.Address, f.From) || !containsFold(trip.To.Address, f.To) {
		return false
	}
	if f.MaxPriceAmd > 0 && trip.PriceAmd > f.MaxPriceAmd {
		return false
	}
	if !trip.PayMethods.ContainsAll(models.PayMethodSet(f.PayMethods)) {
		return false
	}
	if f.DepartFrom != nil || f.DepartTo != nil {
		if trip.DepartureAt == nil {
			return false
		}
		if f.DepartFrom != nil && trip.DepartureAt.Before(*f.DepartFrom) {
			return false
		}
		if f.DepartTo != nil && trip.DepartureAt.After(*f.DepartTo) {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	return substr == "" || strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// RequestView - заявка вместе с поездкой для экрана пассажира
type RequestView struct {
	models.Request
	Trip *models.Trip `json:"trip,omitempty"`
}

type RiderOverview struct {
	Requests []RequestView    `json:"requests"`
	Bookings []models.Booking `json:"bookings"`
}

type DriverOverview struct {
	Trips    []models.TripView `json:"trips"`
	Bookings []models.Booking  `json:"bookings"`
}

type CompanyOverview struct {
	Trips    []models.TripView `json:"trips"`
	Requests []models.Request  `json:"requests"`
}

// BookingAggregator создает бронирования при подтверждении заявок
// и строит представления для пассажиров, водителей и компаний.
type BookingAggregator struct {
	store db.Store
	cache ListCache
	now   func() time.Time
}

func NewBookingAggregator(store db.Store, cache ListCache) *BookingAggregator {
	if cache == nil {
		cache = noopCache{}
	}
	return &BookingAggregator{store: store, cache: cache, now: time.Now}
}

// OnRequestAccepted создает бронирование по подтвержденной заявке.
// Повторный вызов для той же заявки возвращает уже созданное бронирование.
func (a *BookingAggregator) OnRequestAccepted(tx db.Tx, req models.Request) (models.Booking, error) {
	if req.Status != models.RequestStatusAccepted {
		return models.Booking{}, models.NewError(models.CodeInvalidTransition,
			"бронирование создается только для принятой заявки, статус %s", req.Status)
	}

	existing, err := tx.BookingByRequest(req.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.Booking{}, err
	}

	trip := tx.Trip()
	now := a.now().UTC()
	booking := models.Booking{
		ID:          uuid.NewString(),
		RequestID:   req.ID,
		TripID:      trip.ID,
		RiderID:     req.RiderID,
		CompanyID:   trip.CompanyID,
		Driver:      models.DriverSnapshot{DriverID: trip.DriverID},
		Vehicle:     models.VehicleSnapshot{VehicleID: trip.VehicleID},
		Pickup:      trip.From.Clone(),
		Dropoff:     trip.To.Clone(),
		DepartureAt: trip.DepartureAt,
		Seats:       req.Seats,
		PriceAmd:    trip.PriceAmd,
		TotalAmd:    int64(req.Seats) * trip.PriceAmd,
		PayMethod:   req.PayMethod,
		Status:      models.BookingStatusConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if trip.DriverID != "" {
		driver, err := tx.GetUser(trip.DriverID)
		switch {
		case err == nil:
			booking.Driver.Name = driver.FullName()
			booking.Driver.Phone = driver.Phone
		case !errors.Is(err, models.ErrNotFound):
			return models.Booking{}, err
		}
	}
	if trip.VehicleID != "" {
		vehicle, err := tx.GetVehicle(trip.VehicleID)
		switch {
		case err == nil:
			booking.Vehicle.Brand = vehicle.Brand
			booking.Vehicle.Model = vehicle.Model
			booking.Vehicle.Plate = vehicle.Plate
		case !errors.Is(err, models.ErrNotFound):
			return models.Booking{}, err
		}
	}

	if err := tx.SaveBooking(booking); err != nil {
		return models.Booking{}, err
	}
	return booking, nil
}

// ListAvailable возвращает опубликованные поездки со свободными местами,
// отсортированные по времени отправления (без времени - в конце)
func (a *BookingAggregator) ListAvailable(ctx context.Context, f TripFilter) ([]models.TripView, error) {
	key := f.cacheKey()

	var cached []models.TripView
	hit, err := a.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Warn("кэш поездок недоступен", "error", err)
	} else if hit {
		return cached, nil
	}

	trips, err := a.store.ListTrips(ctx, db.TripQuery{
		Statuses: []models.TripStatus{models.TripStatusPublished},
	})
	if err != nil {
		return nil, err
	}

	matched := make([]models.Trip, 0, len(trips))
	for _, trip := range trips {
		if f.Match(trip) {
			matched = append(matched, trip)
		}
	}
	sortByDeparture(matched)

	views, err := a.annotate(ctx, matched)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Set(ctx, key, views); err != nil {
		slog.Warn("не удалось сохранить поездки в кэш", "error", err)
	}
	return views, nil
}

func (a *BookingAggregator) Booking(ctx context.Context, id string) (models.Booking, error) {
	return a.store.GetBooking(ctx, id)
}

// TripView дополняет поездку счетчиками заявок
func (a *BookingAggregator) TripView(ctx context.Context, trip models.Trip) (models.TripView, error) {
	views, err := a.annotate(ctx, []models.Trip{trip})
	if err != nil {
		return models.TripView{}, err
	}
	return views[0], nil
}

func (a *BookingAggregator) ListForRider(ctx context.Context, riderID string) (RiderOverview, error) {
	requests, err := a.store.ListRequests(ctx, db.RequestQuery{RiderID: riderID})
	if err != nil {
		return RiderOverview{}, err
	}
	bookings, err := a.store.ListBookings(ctx, db.BookingQuery{RiderID: riderID})
	if err != nil {
		return RiderOverview{}, err
	}

	trips := make(map[string]*models.Trip)
	views := make([]RequestView, 0, len(requests))
	for _, req := range requests {
		trip, ok := trips[req.TripID]
		if !ok {
			t, err := a.store.GetTrip(ctx, req.TripID)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return RiderOverview{}, err
			}
			if err == nil {
				trip = &t
			}
			trips[req.TripID] = trip
		}
		views = append(views, RequestView{Request: req, Trip: trip})
	}

	// Новые заявки и бронирования - первыми
	sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	sort.SliceStable(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })

	return RiderOverview{Requests: views, Bookings: bookings}, nil
}

func (a *BookingAggregator) ListForDriver(ctx context.Context, driverID string) (DriverOverview, error) {
	trips, err := a.store.ListTrips(ctx, db.TripQuery{DriverID: driverID})
	if err != nil {
		return DriverOverview{}, err
	}
	sortByDeparture(trips)

	views, err := a.annotate(ctx, trips)
	if err != nil {
		return DriverOverview{}, err
	}
	bookings, err := a.store.ListBookings(ctx, db.BookingQuery{TripIDs: tripIDs(trips)})
	if err != nil {
		return DriverOverview{}, err
	}
	return DriverOverview{Trips: views, Bookings: bookings}, nil
}

func (a *BookingAggregator) ListForCompany(ctx context.Context, companyID string) (CompanyOverview, error) {
	trips, err := a.store.ListTrips(ctx, db.TripQuery{CompanyID: companyID})
	if err != nil {
		return CompanyOverview{}, err
	}
	sortByDeparture(trips)

	views, err := a.annotate(ctx, trips)
	if err != nil {
		return CompanyOverview{}, err
	}
	requests, err := a.store.ListRequests(ctx, db.RequestQuery{TripIDs: tripIDs(trips)})
	if err != nil {
		return CompanyOverview{}, err
	}
	return CompanyOverview{Trips: views, Requests: requests}, nil
}

// Invalidate сбрасывает кэш выдачи после изменений поездок и заявок
func (a *BookingAggregator) Invalidate(ctx context.Context) {
	if err := a.cache.Invalidate(ctx); err != nil {
		slog.Warn("не удалось сбросить кэш поездок", "error", err)
	}
}

func (a *BookingAggregator) annotate(ctx context.Context, trips []models.Trip) ([]models.TripView, error) {
	views := make([]models.TripView, 0, len(trips))
	if len(trips) == 0 {
		return views, nil
	}

	requests, err := a.store.ListRequests(ctx, db.RequestQuery{
		TripIDs:  tripIDs(trips),
		Statuses: []models.RequestStatus{models.RequestStatusPending, models.RequestStatusAccepted},
	})
	if err != nil {
		return nil, err
	}

	pending := make(map[string]int)
	accepted := make(map[string]int)
	for _, req := range requests {
		switch req.Status {
		case models.RequestStatusPending:
			pending[req.TripID]++
		case models.RequestStatusAccepted:
			accepted[req.TripID]++
		}
	}

	for _, trip := range trips {
		views = append(views, models.TripView{
			Trip:                  trip,
			SeatsAvailable:        trip.SeatsAvailable(),
			PendingRequestsCount:  pending[trip.ID],
			AcceptedRequestsCount: accepted[trip.ID],
		})
	}
	return views, nil
}

func tripIDs(trips []models.Trip) []string {
	ids := make([]string, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}
	return ids
}

// sortByDeparture: по возрастанию времени отправления, поездки без времени - в конце
func sortByDeparture(trips []models.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		a, b := trips[i], trips[j]
		switch {
		case a.DepartureAt == nil && b.DepartureAt != nil:
			return false
		case a.DepartureAt != nil && b.DepartureAt == nil:
			return true
		case a.DepartureAt != nil && b.DepartureAt != nil && !a.DepartureAt.Equal(*b.DepartureAt):
			return a.DepartureAt.Before(*b.DepartureAt)
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
