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

// TripInput - данные для создания поездки
type TripInput struct {
	CompanyID   string
	VehicleID   string
	DriverID    string
	From        models.Location
	To          models.Location
	DepartureAt *time.Time
	PriceAmd    int64
	SeatsTotal  int
	PayMethods  []models.PayMethod
	Notes       string
}

// TripPatch - изменения черновика. nil означает "не менять".
// Количество мест после создания не меняется.
type TripPatch struct {
	VehicleID      *string
	DriverID       *string
	From           *models.Location
	To             *models.Location
	DepartureAt    *time.Time
	ClearDeparture bool
	PriceAmd       *int64
	PayMethods     []models.PayMethod
	Notes          *string
}

// TripService управляет статусами поездки: черновик, публикация, архив, выполнение
type TripService struct {
	store    db.Store
	bookings *BookingAggregator
	notifier Notifier
	now      func() time.Time
}

func NewTripService(store db.Store, bookings *BookingAggregator, notifier Notifier) *TripService {
	return &TripService{
		store:    store,
		bookings: bookings,
		notifier: notifierOrNoop(notifier),
		now:      time.Now,
	}
}

// Create создает поездку в статусе draft
func (s *TripService) Create(ctx context.Context, in TripInput) (models.Trip, error) {
	methods, err := models.NewPayMethodSet(in.PayMethods...)
	if err != nil {
		return models.Trip{}, err
	}

	now := s.now().UTC()
	trip := models.Trip{
		ID:          uuid.NewString(),
		CompanyID:   in.CompanyID,
		VehicleID:   strings.TrimSpace(in.VehicleID),
		DriverID:    strings.TrimSpace(in.DriverID),
		From:        in.From.Clone(),
		To:          in.To.Clone(),
		DepartureAt: in.DepartureAt,
		PriceAmd:    in.PriceAmd,
		SeatsTotal:  in.SeatsTotal,
		PayMethods:  methods,
		Status:      models.TripStatusDraft,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateTrip(trip); err != nil {
		return models.Trip{}, err
	}
	if err := s.checkAssignment(trip, storeLookup{ctx: ctx, store: s.store}); err != nil {
		return models.Trip{}, err
	}

	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return models.Trip{}, err
	}

	TripTransitions.WithLabelValues(string(trip.Status)).Inc()
	slog.Info("поездка создана", "trip_id", trip.ID, "company_id", trip.CompanyID, "seats", trip.SeatsTotal)
	return trip, nil
}

// Update меняет черновик поездки
func (s *TripService) Update(ctx context.Context, tripID string, patch TripPatch) (models.Trip, error) {
	var trip models.Trip
	err := s.store.WithTrip(ctx, tripID, func(tx db.Tx) error {
		trip = tx.Trip()
		if trip.Status != models.TripStatusDraft {
			return models.NewError(models.CodeInvalidTransition,
				"редактировать можно только черновик, статус поездки %s", trip.Status)
		}

		if patch.VehicleID != nil {
			trip.VehicleID = strings.TrimSpace(*patch.VehicleID)
		}
		if patch.DriverID != nil {
			trip.DriverID = strings.TrimSpace(*patch.DriverID)
		}
		if patch.From != nil {
			trip.From = patch.From.Clone()
		}
		if patch.To != nil {
			trip.To = patch.To.Clone()
		}
		if patch.ClearDeparture {
			trip.DepartureAt = nil
		} else if patch.DepartureAt != nil {
			dep := *patch.DepartureAt
			trip.DepartureAt = &dep
		}
		if patch.PriceAmd != nil {
			trip.PriceAmd = *patch.PriceAmd
		}
		if patch.PayMethods != nil {
			methods, err := models.NewPayMethodSet(patch.PayMethods...)
			if err != nil {
				return err
			}
			trip.PayMethods = methods
		}
		if patch.Notes != nil {
			trip.Notes = strings.TrimSpace(*patch.Notes)
		}

		if err := validateTrip(trip); err != nil {
			return err
		}
		if err := s.checkAssignment(trip, tx); err != nil {
			return err
		}
		trip.UpdatedAt = s.now().UTC()
		return tx.SaveTrip(trip)
	})
	if err != nil {
		return models.Trip{}, err
	}

	s.bookings.Invalidate(ctx)
	slog.Info("поездка обновлена", "trip_id", trip.ID)
	return trip, nil
}

// Get возвращает поездку со счетчиками заявок
func (s *TripService) Get(ctx context.Context, tripID string) (models.TripView, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return models.TripView{}, err
	}
	return s.bookings.TripView(ctx, trip)
}

// Publish делает черновик видимым для пассажиров
func (s *TripService) Publish(ctx context.Context, tripID string) (models.Trip, error) {
	trip, err := s.transition(ctx, tripID, models.TripStatusPublished, func(tx db.Tx, trip *models.Trip, _ *tripChanges) error {
		if missing := missingForPublish(*trip); len(missing) > 0 {
			return models.NewError(models.CodeIncompleteTrip,
				"для публикации не хватает: %s", strings.Join(missing, ", "))
		}
		return nil
	})
	return trip, err
}

// Archive убирает поездку из выдачи. Ожидающие заявки остаются в pending.
func (s *TripService) Archive(ctx context.Context, tripID string) (models.Trip, error) {
	trip, err := s.transition(ctx, tripID, models.TripStatusArchived, nil)
	return trip, err
}

// Unarchive возвращает поездку в черновик; для выдачи ее нужно опубликовать заново
func (s *TripService) Unarchive(ctx context.Context, tripID string) (models.Trip, error) {
	trip, err := s.transition(ctx, tripID, models.TripStatusDraft, nil)
	return trip, err
}

// Start отмечает начало поездки; подтвержденные бронирования переходят в in_progress
func (s *TripService) Start(ctx context.Context, tripID string) (models.Trip, error) {
	trip, err := s.transition(ctx, tripID, models.TripStatusActive, func(tx db.Tx, trip *models.Trip, ch *tripChanges) error {
		bookings, err := tx.Bookings()
		if err != nil {
			return err
		}
		now := trip.UpdatedAt
		for _, b := range bookings {
			if b.Status != models.BookingStatusConfirmed {
				continue
			}
			b.Status = models.BookingStatusInProgress
			b.StartedAt = &now
			b.UpdatedAt = now
			if err := tx.SaveBooking(b); err != nil {
				return err
			}
			ch.bookings = append(ch.bookings, b)
		}
		return nil
	})
	return trip, err
}

// Complete завершает поездку вместе с принятыми заявками и бронированиями.
// Места при этом не освобождаются.
func (s *TripService) Complete(ctx context.Context, tripID string) (models.Trip, error) {
	trip, err := s.transition(ctx, tripID, models.TripStatusCompleted, func(tx db.Tx, trip *models.Trip, ch *tripChanges) error {
		requests, bookings, err := completeAccepted(tx, trip.UpdatedAt)
		if err != nil {
			return err
		}
		ch.requests = requests
		ch.bookings = bookings
		return nil
	})
	return trip, err
}

type tripChanges struct {
	requests []models.Request
	bookings []models.Booking
}

// transition выполняет переход статуса поездки в ее критической секции.
// prepare вызывается после проверки перехода и до сохранения поездки.
func (s *TripService) transition(
	ctx context.Context,
	tripID string,
	next models.TripStatus,
	prepare func(tx db.Tx, trip *models.Trip, ch *tripChanges) error,
) (models.Trip, error) {
	var (
		trip models.Trip
		ch   tripChanges
	)
	err := s.store.WithTrip(ctx, tripID, func(tx db.Tx) error {
		trip = tx.Trip()
		if !trip.Status.CanTransitionTo(next) {
			return models.NewError(models.CodeInvalidTransition,
				"недопустимый переход поездки из %s в %s", trip.Status, next)
		}

		trip.UpdatedAt = s.now().UTC()
		if prepare != nil {
			if err := prepare(tx, &trip, &ch); err != nil {
				return err
			}
		}
		trip.Status = next
		return tx.SaveTrip(trip)
	})
	if err != nil {
		return models.Trip{}, err
	}

	TripTransitions.WithLabelValues(string(next)).Inc()
	slog.Info("статус поездки изменен",
		"trip_id", trip.ID,
		"status", trip.Status,
		"seats_available", trip.SeatsAvailable(),
		"requests_changed", len(ch.requests),
		"bookings_changed", len(ch.bookings),
	)

	s.notifier.TripStatusChanged(trip)
	for _, req := range ch.requests {
		RequestTransitions.WithLabelValues(string(req.Status)).Inc()
		s.notifier.RequestStatusChanged(req, trip)
	}
	for _, b := range ch.bookings {
		s.notifier.BookingStatusChanged(b)
	}
	s.bookings.Invalidate(ctx)
	return trip, nil
}

func validateTrip(trip models.Trip) error {
	if trip.SeatsTotal < 1 {
		return models.NewError(models.CodeValidation, "количество мест должно быть не меньше 1")
	}
	if trip.PriceAmd < 0 {
		return models.NewError(models.CodeValidation, "цена не может быть отрицательной")
	}
	if !trip.From.ValidCoordinates() {
		return models.NewError(models.CodeValidation, "некорректные координаты отправления")
	}
	if !trip.To.ValidCoordinates() {
		return models.NewError(models.CodeValidation, "некорректные координаты назначения")
	}
	return nil
}

func missingForPublish(trip models.Trip) []string {
	var missing []string
	if trip.VehicleID == "" {
		missing = append(missing, "автомобиль")
	}
	if trip.DriverID == "" {
		missing = append(missing, "водитель")
	}
	if !trip.From.HasCoordinates() {
		missing = append(missing, "координаты отправления")
	}
	if !trip.To.HasCoordinates() {
		missing = append(missing, "координаты назначения")
	}
	if len(trip.PayMethods) == 0 {
		missing = append(missing, "способ оплаты")
	}
	if trip.SeatsAvailable() <= 0 {
		missing = append(missing, "свободные места")
	}
	return missing
}

// assignmentLookup - чтение автомобиля и водителя вне или внутри транзакции
type assignmentLookup interface {
	GetVehicle(id string) (models.Vehicle, error)
	GetUser(id string) (models.User, error)
}

type storeLookup struct {
	ctx   context.Context
	store db.Store
}

func (l storeLookup) GetVehicle(id string) (models.Vehicle, error) {
	return l.store.GetVehicle(l.ctx, id)
}
func (l storeLookup) GetUser(id string) (models.User, error) { return l.store.GetUser(l.ctx, id) }

// checkAssignment проверяет автомобиль (вместимость, компания) и водителя поездки
func (s *TripService) checkAssignment(trip models.Trip, lookup assignmentLookup) error {
	if trip.VehicleID != "" {
		vehicle, err := lookup.GetVehicle(trip.VehicleID)
		if err != nil {
			return err
		}
		if trip.CompanyID != "" && vehicle.CompanyID != trip.CompanyID {
			return models.NewError(models.CodeValidation, "автомобиль %s принадлежит другой компании", vehicle.Plate)
		}
		if trip.SeatsTotal > vehicle.Seats {
			return models.NewError(models.CodeValidation,
				"в автомобиле %s всего %d мест, указано %d", vehicle.Plate, vehicle.Seats, trip.SeatsTotal)
		}
	}
	if trip.DriverID != "" {
		driver, err := lookup.GetUser(trip.DriverID)
		if errors.Is(err, models.ErrNotFound) {
			return models.NewError(models.CodeValidation, "водитель %s не найден", trip.DriverID)
		}
		if err != nil {
			return err
		}
		if driver.Role != models.RoleDriver {
			return models.NewError(models.CodeValidation, "пользователь %s не является водителем", driver.ID)
		}
	}
	return nil
}
