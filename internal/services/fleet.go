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

type VehicleInput struct {
	Brand    string
	Model    string
	Plate    string
	Seats    int
	DriverID string
}

// FleetService ведет автомобили компаний и профили пользователей
type FleetService struct {
	store db.Store
	now   func() time.Time
}

func NewFleetService(store db.Store) *FleetService {
	return &FleetService{store: store, now: time.Now}
}

func (s *FleetService) RegisterVehicle(ctx context.Context, companyID string, in VehicleInput) (models.Vehicle, error) {
	if companyID == "" {
		return models.Vehicle{}, models.NewError(models.CodeValidation, "не указана компания")
	}
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Plate = strings.ToUpper(strings.TrimSpace(in.Plate))
	if in.Brand == "" || in.Model == "" || in.Plate == "" {
		return models.Vehicle{}, models.NewError(models.CodeValidation, "марка, модель и номер обязательны")
	}
	if in.Seats < 1 {
		return models.Vehicle{}, models.NewError(models.CodeValidation, "количество мест должно быть не меньше 1")
	}

	now := s.now().UTC()
	v := models.Vehicle{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Brand:     in.Brand,
		Model:     in.Model,
		Plate:     in.Plate,
		Seats:     in.Seats,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.DriverID != "" {
		if err := s.checkDriver(ctx, companyID, in.DriverID); err != nil {
			return models.Vehicle{}, err
		}
		v.DriverID = in.DriverID
	}

	if err := s.store.SaveVehicle(ctx, v); err != nil {
		return models.Vehicle{}, err
	}
	slog.Info("автомобиль зарегистрирован", "vehicle_id", v.ID, "company_id", companyID, "plate", v.Plate)
	return v, nil
}

func (s *FleetService) ListVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	return s.store.ListVehicles(ctx, companyID)
}

// AssignDriver закрепляет автомобиль за водителем; пустой driverID снимает закрепление.
// Уже созданные поездки не меняются.
func (s *FleetService) AssignDriver(ctx context.Context, companyID, vehicleID, driverID string) (models.Vehicle, error) {
	v, err := s.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return models.Vehicle{}, err
	}
	if companyID != "" && v.CompanyID != companyID {
		return models.Vehicle{}, models.NewError(models.CodeForbidden, "автомобиль принадлежит другой компании")
	}
	if driverID != "" {
		if err := s.checkDriver(ctx, v.CompanyID, driverID); err != nil {
			return models.Vehicle{}, err
		}
	}

	v.DriverID = driverID
	v.UpdatedAt = s.now().UTC()
	if err := s.store.SaveVehicle(ctx, v); err != nil {
		return models.Vehicle{}, err
	}
	return v, nil
}

func (s *FleetService) checkDriver(ctx context.Context, companyID, driverID string) error {
	driver, err := s.store.GetUser(ctx, driverID)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewError(models.CodeValidation, "водитель %s не найден", driverID)
	}
	if err != nil {
		return err
	}
	if driver.Role != models.RoleDriver {
		return models.NewError(models.CodeValidation, "пользователь %s не является водителем", driverID)
	}
	if driver.CompanyID != companyID {
		return models.NewError(models.CodeValidation, "водитель %s работает в другой компании", driverID)
	}
	return nil
}

type ProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
}

// Profile возвращает профиль; если записи еще нет, профиль собирается из данных токена
func (s *FleetService) Profile(ctx context.Context, actor Actor) (models.User, error) {
	u, err := s.store.GetUser(ctx, actor.ID)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{ID: actor.ID, Role: actor.Role, CompanyID: actor.CompanyID}, nil
	}
	return u, err
}

// UpdateProfile создает или обновляет профиль. Роль и компания берутся из токена.
func (s *FleetService) UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (models.User, error) {
	u, err := s.Profile(ctx, actor)
	if err != nil {
		return models.User{}, err
	}

	now := s.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if v := strings.TrimSpace(in.FirstName); v != "" {
		u.FirstName = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		u.LastName = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		u.Phone = v
	}
	u.Role = actor.Role
	u.CompanyID = actor.CompanyID
	u.UpdatedAt = now

	if err := s.store.SaveUser(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}
