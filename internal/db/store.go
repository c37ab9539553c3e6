package db

import (
	"context"

	"rideshare-backend/internal/models"
)

// Store - хранилище поездок, заявок и бронирований.
// Все изменения одной поездки выполняются внутри WithTrip: реализации обязаны
// сериализовать вызовы для одного tripID и не блокировать разные поездки.
type Store interface {
	WithTrip(ctx context.Context, tripID string, fn func(tx Tx) error) error

	CreateTrip(ctx context.Context, trip models.Trip) error
	GetTrip(ctx context.Context, id string) (models.Trip, error)
	ListTrips(ctx context.Context, q TripQuery) ([]models.Trip, error)

	GetRequest(ctx context.Context, id string) (models.Request, error)
	ListRequests(ctx context.Context, q RequestQuery) ([]models.Request, error)

	GetBooking(ctx context.Context, id string) (models.Booking, error)
	ListBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error)

	SaveVehicle(ctx context.Context, v models.Vehicle) error
	GetVehicle(ctx context.Context, id string) (models.Vehicle, error)
	ListVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error)

	SaveUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
}

// Tx - операции над одной заблокированной поездкой.
// Записи применяются только если функция, переданная в WithTrip, вернула nil.
type Tx interface {
	Trip() models.Trip
	SaveTrip(trip models.Trip) error

	GetRequest(id string) (models.Request, error)
	SaveRequest(req models.Request) error
	Requests() ([]models.Request, error)

	BookingByRequest(requestID string) (models.Booking, error)
	SaveBooking(b models.Booking) error
	Bookings() ([]models.Booking, error)

	GetVehicle(id string) (models.Vehicle, error)
	GetUser(id string) (models.User, error)
}

type TripQuery struct {
	Statuses  []models.TripStatus
	CompanyID string
	DriverID  string
}

type RequestQuery struct {
	TripIDs  []string
	RiderID  string
	Statuses []models.RequestStatus
}

type BookingQuery struct {
	TripIDs  []string
	RiderID  string
	DriverID string
}

func (q TripQuery) matches(t models.Trip) bool {
	if q.CompanyID != "" && t.CompanyID != q.CompanyID {
		return false
	}
	if q.DriverID != "" && t.DriverID != q.DriverID {
		return false
	}
	return len(q.Statuses) == 0 || containsStatus(q.Statuses, t.Status)
}

func (q RequestQuery) matches(r models.Request) bool {
	if q.RiderID != "" && r.RiderID != q.RiderID {
		return false
	}
	if q.TripIDs != nil && !containsString(q.TripIDs, r.TripID) {
		return false
	}
	return len(q.Statuses) == 0 || containsStatus(q.Statuses, r.Status)
}

func (q BookingQuery) matches(b models.Booking) bool {
	if q.RiderID != "" && b.RiderID != q.RiderID {
		return false
	}
	if q.DriverID != "" && b.Driver.DriverID != q.DriverID {
		return false
	}
	return q.TripIDs == nil || containsString(q.TripIDs, b.TripID)
}

func containsStatus[S comparable](list []S, s S) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	return containsStatus(list, s)
}
