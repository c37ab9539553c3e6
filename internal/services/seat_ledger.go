package services

import (
	"context"
	"log/slog"

	"rideshare-backend/internal/db"
	"rideshare-backend/internal/models"
)

// SeatLedger - единственный источник правды о свободных местах поездки.
// Изменения SeatsTaken выполняются только внутри Store.WithTrip.
type SeatLedger struct {
	store db.Store
}

func NewSeatLedger(store db.Store) *SeatLedger {
	return &SeatLedger{store: store}
}

// Available возвращает SeatsTotal - SeatsTaken
func (l *SeatLedger) Available(trip models.Trip) int {
	return trip.SeatsAvailable()
}

// Reserve атомарно занимает места и возвращает новое количество свободных мест
func (l *SeatLedger) Reserve(ctx context.Context, tripID string, seats int) (int, error) {
	var available int
	err := l.store.WithTrip(ctx, tripID, func(tx db.Tx) error {
		trip, err := reserveSeats(tx.Trip(), seats)
		if err != nil {
			return err
		}
		available = trip.SeatsAvailable()
		return tx.SaveTrip(trip)
	})
	trackLedger("reserve", err)
	if err != nil {
		return 0, err
	}
	slog.Info("места зарезервированы", "trip_id", tripID, "seats", seats, "available", available)
	return available, nil
}

// Release освобождает места и возвращает новое количество свободных мест
func (l *SeatLedger) Release(ctx context.Context, tripID string, seats int) (int, error) {
	var available int
	err := l.store.WithTrip(ctx, tripID, func(tx db.Tx) error {
		trip, err := releaseSeats(tx.Trip(), seats)
		if err != nil {
			return err
		}
		available = trip.SeatsAvailable()
		return tx.SaveTrip(trip)
	})
	trackLedger("release", err)
	if err != nil {
		return 0, err
	}
	slog.Info("места освобождены", "trip_id", tripID, "seats", seats, "available", available)
	return available, nil
}

func reserveSeats(trip models.Trip, seats int) (models.Trip, error) {
	if seats <= 0 {
		return trip, models.NewError(models.CodeValidation, "количество мест должно быть больше нуля")
	}
	if trip.SeatsTaken+seats > trip.SeatsTotal {
		return trip, models.NewError(models.CodeCapacityExceeded,
			"недостаточно свободных мест: запрошено %d, свободно %d", seats, trip.SeatsAvailable())
	}
	trip.SeatsTaken += seats
	return trip, nil
}

func releaseSeats(trip models.Trip, seats int) (models.Trip, error) {
	if seats <= 0 {
		return trip, models.NewError(models.CodeValidation, "количество мест должно быть больше нуля")
	}
	if trip.SeatsTaken-seats < 0 {
		return trip, models.NewError(models.CodeInvalidRelease,
			"нельзя освободить %d мест: занято %d", seats, trip.SeatsTaken)
	}
	trip.SeatsTaken -= seats
	return trip, nil
}
