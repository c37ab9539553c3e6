package models

import (
	"time"
)

// Trip - запланированная поездка с фиксированным количеством мест
type Trip struct {
	ID          string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CompanyID   string       `json:"companyId" gorm:"type:varchar(36);index"`
	VehicleID   string       `json:"vehicleId,omitempty" gorm:"type:varchar(36);default:''"`
	DriverID    string       `json:"driverId,omitempty" gorm:"type:varchar(36);index;default:''"`
	From        Location     `json:"from" gorm:"embedded;embeddedPrefix:from_"`
	To          Location     `json:"to" gorm:"embedded;embeddedPrefix:to_"`
	DepartureAt *time.Time   `json:"departureAt,omitempty"`
	PriceAmd    int64        `json:"priceAmd" gorm:"not null"`
	SeatsTotal  int          `json:"seatsTotal" gorm:"not null"`
	SeatsTaken  int          `json:"seatsTaken" gorm:"not null;default:0"`
	PayMethods  PayMethodSet `json:"payMethods" gorm:"type:text[]"`
	Status      TripStatus   `json:"status" gorm:"type:varchar(20);index;not null"`
	Notes       string       `json:"notes,omitempty" gorm:"default:''"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// SeatsAvailable возвращает количество свободных мест
func (t Trip) SeatsAvailable() int {
	if free := t.SeatsTotal - t.SeatsTaken; free > 0 {
		return free
	}
	return 0
}

// Clone возвращает копию без общих указателей и срезов
func (t Trip) Clone() Trip {
	out := t
	out.From = t.From.Clone()
	out.To = t.To.Clone()
	out.PayMethods = t.PayMethods.Clone()
	if t.DepartureAt != nil {
		dep := *t.DepartureAt
		out.DepartureAt = &dep
	}
	return out
}

// TripView - поездка с производными счетчиками заявок для ответов API
type TripView struct {
	Trip
	SeatsAvailable        int `json:"seatsAvailable"`
	PendingRequestsCount  int `json:"pendingRequestsCount"`
	AcceptedRequestsCount int `json:"acceptedRequestsCount"`
}
