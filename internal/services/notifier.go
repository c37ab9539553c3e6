package services

import (
	"rideshare-backend/internal/models"
)

// Notifier получает изменения статусов после успешной фиксации
type Notifier interface {
	TripStatusChanged(trip models.Trip)
	RequestStatusChanged(req models.Request, trip models.Trip)
	BookingStatusChanged(booking models.Booking)
}

type noopNotifier struct{}

func (noopNotifier) TripStatusChanged(models.Trip)                    {}
func (noopNotifier) RequestStatusChanged(models.Request, models.Trip) {}
func (noopNotifier) BookingStatusChanged(models.Booking)              {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
