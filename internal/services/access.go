package services

import (
	"rideshare-backend/internal/models"
)

// Actor - пользователь, от имени которого выполняется операция
type Actor struct {
	ID        string
	Role      models.Role
	CompanyID string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Company возвращает компанию пользователя; для аккаунта компании это его ID
func (a Actor) Company() string {
	if a.CompanyID != "" {
		return a.CompanyID
	}
	if a.Role == models.RoleCompany {
		return a.ID
	}
	return ""
}

// CanOperate: управлять поездкой могут ее компания, назначенный водитель и админ
func (a Actor) CanOperate(trip models.Trip) bool {
	switch a.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCompany:
		return trip.CompanyID != "" && a.Company() == trip.CompanyID
	case models.RoleDriver:
		return trip.DriverID != "" && trip.DriverID == a.ID
	}
	return false
}

func (a Actor) CanViewRequest(req models.Request, trip models.Trip) bool {
	return req.RiderID == a.ID || a.CanOperate(trip)
}

func (a Actor) CanViewBooking(b models.Booking) bool {
	switch {
	case a.IsAdmin(), b.RiderID == a.ID:
		return true
	case a.Role == models.RoleDriver:
		return b.Driver.DriverID == a.ID
	case a.Role == models.RoleCompany:
		return b.CompanyID != "" && b.CompanyID == a.Company()
	}
	return false
}
