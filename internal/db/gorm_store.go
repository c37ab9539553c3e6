package db

import (
	"context"
	"errors"
	"fmt"

	"rideshare-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore хранит данные в Postgres через gorm.
// WithTrip открывает транзакцию и блокирует строку поездки через SELECT ... FOR UPDATE.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// notFoundOr переводит gorm.ErrRecordNotFound в доменную ошибку
func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NotFound(resource, id)
	}
	return fmt.Errorf("ошибка при получении записи %s %s: %w", resource, id, err)
}

func (s *GormStore) WithTrip(ctx context.Context, tripID string, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", tripID).
			First(&trip).Error; err != nil {
			return notFoundOr(err, "поездка", tripID)
		}
		return fn(&gormTx{db: tx, trip: trip})
	})
}

func (s *GormStore) CreateTrip(ctx context.Context, trip models.Trip) error {
	if err := s.db.WithContext(ctx).Create(&trip).Error; err != nil {
		return fmt.Errorf("ошибка при создании поездки: %w", err)
	}
	return nil
}

func (s *GormStore) GetTrip(ctx context.Context, id string) (models.Trip, error) {
	var trip models.Trip
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error; err != nil {
		return models.Trip{}, notFoundOr(err, "поездка", id)
	}
	return trip, nil
}

func (s *GormStore) ListTrips(ctx context.Context, q TripQuery) ([]models.Trip, error) {
	query := s.db.WithContext(ctx).Model(&models.Trip{})
	if q.CompanyID != "" {
		query = query.Where("company_id = ?", q.CompanyID)
	}
	if q.DriverID != "" {
		query = query.Where("driver_id = ?", q.DriverID)
	}
	if len(q.Statuses) > 0 {
		query = query.Where("status IN ?", q.Statuses)
	}

	trips := []models.Trip{}
	if err := query.Order("created_at, id").Find(&trips).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении поездок: %w", err)
	}
	return trips, nil
}

func (s *GormStore) GetRequest(ctx context.Context, id string) (models.Request, error) {
	var req models.Request
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return models.Request{}, notFoundOr(err, "заявка", id)
	}
	return req, nil
}

func (s *GormStore) ListRequests(ctx context.Context, q RequestQuery) ([]models.Request, error) {
	query := s.db.WithContext(ctx).Model(&models.Request{})
	if q.TripIDs != nil {
		query = query.Where("trip_id IN ?", q.TripIDs)
	}
	if q.RiderID != "" {
		query = query.Where("rider_id = ?", q.RiderID)
	}
	if len(q.Statuses) > 0 {
		query = query.Where("status IN ?", q.Statuses)
	}

	requests := []models.Request{}
	if err := query.Order("created_at, id").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении заявок: %w", err)
	}
	return requests, nil
}

func (s *GormStore) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return models.Booking{}, notFoundOr(err, "бронирование", id)
	}
	return b, nil
}

func (s *GormStore) ListBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	query := s.db.WithContext(ctx).Model(&models.Booking{})
	if q.TripIDs != nil {
		query = query.Where("trip_id IN ?", q.TripIDs)
	}
	if q.RiderID != "" {
		query = query.Where("rider_id = ?", q.RiderID)
	}
	if q.DriverID != "" {
		query = query.Where("driver_id = ?", q.DriverID)
	}

	bookings := []models.Booking{}
	if err := query.Order("created_at, id").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении бронирований: %w", err)
	}
	return bookings, nil
}

func (s *GormStore) SaveVehicle(ctx context.Context, v models.Vehicle) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Vehicle{}).
		Where("plate = ? AND id <> ?", v.Plate, v.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("ошибка при проверке номера автомобиля: %w", err)
	}
	if count > 0 {
		return models.NewError(models.CodeValidation, "автомобиль с номером %s уже зарегистрирован", v.Plate)
	}
	if err := s.db.WithContext(ctx).Save(&v).Error; err != nil {
		return fmt.Errorf("ошибка при сохранении автомобиля: %w", err)
	}
	return nil
}

func (s *GormStore) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	return getVehicle(s.db.WithContext(ctx), id)
}

func (s *GormStore) ListVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	query := s.db.WithContext(ctx).Model(&models.Vehicle{})
	if companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	vehicles := []models.Vehicle{}
	if err := query.Order("plate").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении автомобилей: %w", err)
	}
	return vehicles, nil
}

func (s *GormStore) SaveUser(ctx context.Context, u models.User) error {
	if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
		return fmt.Errorf("ошибка при сохранении пользователя: %w", err)
	}
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, id string) (models.User, error) {
	return getUser(s.db.WithContext(ctx), id)
}

func getVehicle(db *gorm.DB, id string) (models.Vehicle, error) {
	var v models.Vehicle
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		return models.Vehicle{}, notFoundOr(err, "автомобиль", id)
	}
	return v, nil
}

func getUser(db *gorm.DB, id string) (models.User, error) {
	var u models.User
	if err := db.Where("id = ?", id).First(&u).Error; err != nil {
		return models.User{}, notFoundOr(err, "пользователь", id)
	}
	return u, nil
}

// gormTx работает внутри транзакции WithTrip
type gormTx struct {
	db   *gorm.DB
	trip models.Trip
}

func (tx *gormTx) Trip() models.Trip {
	return tx.trip.Clone()
}

func (tx *gormTx) SaveTrip(trip models.Trip) error {
	if trip.ID != tx.trip.ID {
		return fmt.Errorf("транзакция открыта для поездки %s, а не %s", tx.trip.ID, trip.ID)
	}
	if err := tx.db.Save(&trip).Error; err != nil {
		return fmt.Errorf("ошибка при обновлении поездки: %w", err)
	}
	tx.trip = trip.Clone()
	return nil
}

func (tx *gormTx) GetRequest(id string) (models.Request, error) {
	var req models.Request
	if err := tx.db.Where("id = ? AND trip_id = ?", id, tx.trip.ID).First(&req).Error; err != nil {
		return models.Request{}, notFoundOr(err, "заявка", id)
	}
	return req, nil
}

func (tx *gormTx) SaveRequest(req models.Request) error {
	if req.TripID != tx.trip.ID {
		return fmt.Errorf("заявка %s относится к поездке %s, а не %s", req.ID, req.TripID, tx.trip.ID)
	}
	if err := tx.db.Save(&req).Error; err != nil {
		return fmt.Errorf("ошибка при сохранении заявки: %w", err)
	}
	return nil
}

func (tx *gormTx) Requests() ([]models.Request, error) {
	requests := []models.Request{}
	if err := tx.db.Where("trip_id = ?", tx.trip.ID).Order("created_at, id").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении заявок поездки: %w", err)
	}
	return requests, nil
}

func (tx *gormTx) BookingByRequest(requestID string) (models.Booking, error) {
	var b models.Booking
	if err := tx.db.Where("request_id = ?", requestID).First(&b).Error; err != nil {
		return models.Booking{}, notFoundOr(err, "бронирование для заявки", requestID)
	}
	return b, nil
}

func (tx *gormTx) SaveBooking(b models.Booking) error {
	if b.TripID != tx.trip.ID {
		return fmt.Errorf("бронирование %s относится к поездке %s, а не %s", b.ID, b.TripID, tx.trip.ID)
	}
	if err := tx.db.Save(&b).Error; err != nil {
		return fmt.Errorf("ошибка при сохранении бронирования: %w", err)
	}
	return nil
}

func (tx *gormTx) Bookings() ([]models.Booking, error) {
	bookings := []models.Booking{}
	if err := tx.db.Where("trip_id = ?", tx.trip.ID).Order("created_at, id").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении бронирований поездки: %w", err)
	}
	return bookings, nil
}

func (tx *gormTx) GetVehicle(id string) (models.Vehicle, error) {
	return getVehicle(tx.db, id)
}

func (tx *gormTx) GetUser(id string) (models.User, error) {
	return getUser(tx.db, id)
}
