package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"rideshare-backend/internal/db"
	"rideshare-backend/internal/models"

	"github.com/google/uuid"
)

// RequestInput - данные новой заявки пассажира
type RequestInput struct {
	TripID    string
	RiderID   string
	Seats     int
	PayMethod models.PayMethod
	Notes     string
}

// RequestService ведет заявки по их жизненному циклу.
// Места резервируются только при подтверждении заявки, не при создании.
type RequestService struct {
	store    db.Store
	bookings *BookingAggregator
	notifier Notifier
	now      func() time.Time
}

func NewRequestService(store db.Store, bookings *BookingAggregator, notifier Notifier) *RequestService {
	return &RequestService{
		store:    store,
		bookings: bookings,
		notifier: notifierOrNoop(notifier),
		now:      time.Now,
	}
}

// Create создает заявку в статусе pending
func (s *RequestService) Create(ctx context.Context, in RequestInput) (models.Request, error) {
	if in.Seats <= 0 {
		return models.Request{}, models.NewError(models.CodeValidation, "количество мест должно быть больше нуля")
	}
	if strings.TrimSpace(in.RiderID) == "" {
		return models.Request{}, models.NewError(models.CodeValidation, "не указан пассажир")
	}

	var (
		req  models.Request
		trip models.Trip
	)
	err := s.store.WithTrip(ctx, in.TripID, func(tx db.Tx) error {
		trip = tx.Trip()
		if in.Seats > trip.SeatsTotal {
			return models.NewError(models.CodeValidation,
				"в поездке всего %d мест, запрошено %d", trip.SeatsTotal, in.Seats)
		}
		if trip.DriverID != "" && trip.DriverID == in.RiderID {
			return models.NewError(models.CodeValidation, "водитель не может бронировать места в своей поездке")
		}
		if trip.Status != models.TripStatusPublished {
			return models.NewError(models.CodeTripNotPublished, "поездка не опубликована (статус %s)", trip.Status)
		}
		if !trip.PayMethods.Contains(in.PayMethod) {
			return models.NewError(models.CodeInvalidPayment, "способ оплаты %q не принимается в этой поездке", in.PayMethod)
		}
		if free := trip.SeatsAvailable(); free < in.Seats {
			return models.NewError(models.CodeInsufficientSeats,
				"недостаточно свободных мест: запрошено %d, свободно %d", in.Seats, free)
		}

		now := s.now().UTC()
		req = models.Request{
			ID:        uuid.NewString(),
			TripID:    trip.ID,
			RiderID:   in.RiderID,
			Seats:     in.Seats,
			PayMethod: in.PayMethod,
			Status:    models.RequestStatusPending,
			Notes:     strings.TrimSpace(in.Notes),
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.SaveRequest(req)
	})
	if err != nil {
		return models.Request{}, err
	}

	s.afterCommit(ctx, req, trip, nil)
	return req, nil
}

func (s *RequestService) Get(ctx context.Context, id string) (models.Request, error) {
	return s.store.GetRequest(ctx, id)
}

// ListByTrip возвращает все заявки поездки в порядке создания
func (s *RequestService) ListByTrip(ctx context.Context, tripID string) ([]models.Request, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	return s.store.ListRequests(ctx, db.RequestQuery{TripIDs: []string{tripID}})
}

// Accept подтверждает заявку: резервирует места и создает бронирование.
// При нехватке мест заявка остается в pending и возвращается CapacityExceeded.
func (s *RequestService) Accept(ctx context.Context, id string) (models.Request, models.Booking, error) {
	tripID, err := s.tripOf(ctx, id)
	if err != nil {
		return models.Request{}, models.Booking{}, err
	}

	var (
		req     models.Request
		trip    models.Trip
		booking models.Booking
	)
	err = s.store.WithTrip(ctx, tripID, func(tx db.Tx) error {
		req, err = tx.GetRequest(id)
		if err != nil {
			return err
		}
		if !req.Status.CanTransitionTo(models.RequestStatusAccepted) {
			return models.NewError(models.CodeInvalidTransition,
				"нельзя принять заявку в статусе %s", req.Status)
		}

		trip = tx.Trip()
		if trip.Status != models.TripStatusPublished && trip.Status != models.TripStatusActive {
			return models.NewError(models.CodeTripNotPublished, "поездка не опубликована (статус %s)", trip.Status)
		}

		trip, err = reserveSeats(trip, req.Seats)
		trackLedger("reserve", err)
		if err != nil {
			return err
		}
		trip.UpdatedAt = s.now().UTC()
		if err := tx.SaveTrip(trip); err != nil {
			return err
		}

		req.Status = models.RequestStatusAccepted
		req.UpdatedAt = trip.UpdatedAt
		if err := tx.SaveRequest(req); err != nil {
			return err
		}

		booking, err = s.bookings.OnRequestAccepted(tx, req)
		return err
	})
	if err != nil {
		return models.Request{}, models.Booking{}, err
	}

	s.afterCommit(ctx, req, trip, &booking)
	return req, booking, nil
}

// Decline отклоняет заявку, ожидающую решения
func (s *RequestService) Decline(ctx context.Context, id, reason string) (models.Request, error) {
	tripID, err := s.tripOf(ctx, id)
	if err != nil {
		return models.Request{}, err
	}

	var (
		req  models.Request
		trip models.Trip
	)
	err = s.store.WithTrip(ctx, tripID, func(tx db.Tx) error {
		req, err = tx.GetRequest(id)
		if err != nil {
			return err
		}
		if !req.Status.CanTransitionTo(models.RequestStatusDeclined) {
			return models.NewError(models.CodeInvalidTransition,
				"нельзя отклонить заявку в статусе %s", req.Status)
		}
		trip = tx.Trip()
		req.Status = models.RequestStatusDeclined
		req.DeclineReason = strings.TrimSpace(reason)
		req.UpdatedAt = s.now().UTC()
		return tx.SaveRequest(req)
	})
	if err != nil {
		return models.Request{}, err
	}

	s.afterCommit(ctx, req, trip, nil)
	return req, nil
}

// Cancel отменяет заявку. Для принятой заявки места возвращаются в поездку,
// а бронирование переводится в cancelled.
func (s *RequestService) Cancel(ctx context.Context, id string) (models.Request, error) {
	req, _, err := s.cancel(ctx, id)
	return req, err
}

// CancelBooking отменяет бронирование через отмену его заявки
func (s *RequestService) CancelBooking(ctx context.Context, bookingID string) (models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCompleted {
		return models.Booking{}, models.NewError(models.CodeInvalidTransition,
			"нельзя отменить бронирование в статусе %s", booking.Status)
	}

	_, cancelled, err := s.cancel(ctx, booking.RequestID)
	if err != nil {
		return models.Booking{}, err
	}
	if cancelled == nil {
		return s.store.GetBooking(ctx, bookingID)
	}
	return *cancelled, nil
}

func (s *RequestService) cancel(ctx context.Context, id string) (models.Request, *models.Booking, error) {
	tripID, err := s.tripOf(ctx, id)
	if err != nil {
		return models.Request{}, nil, err
	}

	var (
		req     models.Request
		trip    models.Trip
		booking *models.Booking
	)
	err = s.store.WithTrip(ctx, tripID, func(tx db.Tx) error {
		req, err = tx.GetRequest(id)
		if err != nil {
			return err
		}
		if !req.Status.CanTransitionTo(models.RequestStatusCancelled) {
			return models.NewError(models.CodeInvalidTransition,
				"нельзя отменить заявку в статусе %s", req.Status)
		}

		now := s.now().UTC()
		trip = tx.Trip()
		if req.Status == models.RequestStatusAccepted {
			trip, err = releaseSeats(trip, req.Seats)
			trackLedger("release", err)
			if err != nil {
				return err
			}
			trip.UpdatedAt = now
			if err := tx.SaveTrip(trip); err != nil {
				return err
			}

			b, err := tx.BookingByRequest(req.ID)
			switch {
			case err == nil:
				if !b.Status.CanTransitionTo(models.BookingStatusCancelled) {
					return models.NewError(models.CodeInvalidTransition,
						"нельзя отменить бронирование в статусе %s", b.Status)
				}
				b.Status = models.BookingStatusCancelled
				b.CancelledAt = &now
				b.UpdatedAt = now
				if err := tx.SaveBooking(b); err != nil {
					return err
				}
				booking = &b
			case errors.Is(err, models.ErrNotFound):
				slog.Warn("у принятой заявки нет бронирования", "request_id", req.ID)
			default:
				return err
			}
		}

		req.Status = models.RequestStatusCancelled
		req.UpdatedAt = now
		return tx.SaveRequest(req)
	})
	if err != nil {
		return models.Request{}, nil, err
	}

	s.afterCommit(ctx, req, trip, booking)
	return req, booking, nil
}

// tripOf находит поездку заявки до входа в критическую секцию
func (s *RequestService) tripOf(ctx context.Context, requestID string) (string, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	return req.TripID, nil
}

func (s *RequestService) afterCommit(ctx context.Context, req models.Request, trip models.Trip, booking *models.Booking) {
	RequestTransitions.WithLabelValues(string(req.Status)).Inc()
	slog.Info("статус заявки изменен",
		"request_id", req.ID,
		"trip_id", req.TripID,
		"status", req.Status,
		"seats", req.Seats,
		"seats_available", trip.SeatsAvailable(),
	)

	s.notifier.RequestStatusChanged(req, trip)
	if booking != nil {
		s.notifier.BookingStatusChanged(*booking)
	}
	s.bookings.Invalidate(ctx)
}

// completeAccepted переводит принятые заявки поездки и их бронирования в completed.
// Вызывается из завершения поездки внутри ее критической секции.
func completeAccepted(tx db.Tx, now time.Time) ([]models.Request, []models.Booking, error) {
	requests, err := tx.Requests()
	if err != nil {
		return nil, nil, err
	}

	var (
		completed []models.Request
		bookings  []models.Booking
	)
	for _, req := range requests {
		if req.Status != models.RequestStatusAccepted {
			continue
		}
		req.Status = models.RequestStatusCompleted
		req.UpdatedAt = now
		if err := tx.SaveRequest(req); err != nil {
			return nil, nil, err
		}
		completed = append(completed, req)

		b, err := tx.BookingByRequest(req.ID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if !b.Status.CanTransitionTo(models.BookingStatusCompleted) {
			continue
		}
		b.Status = models.BookingStatusCompleted
		b.CompletedAt = &now
		b.UpdatedAt = now
		if err := tx.SaveBooking(b); err != nil {
			return nil, nil, err
		}
		bookings = append(bookings, b)
	}
	return completed, bookings, nil
}
