package models

import (
	"time"
)

// DriverSnapshot - данные водителя на момент подтверждения заявки
type DriverSnapshot struct {
	DriverID string `json:"id" gorm:"column:driver_id;type:varchar(36);index"`
	Name     string `json:"name" gorm:"column:driver_name;default:''"`
	Phone    string `json:"phone" gorm:"column:driver_phone;default:''"`
}

// VehicleSnapshot - данные автомобиля на момент подтверждения заявки
type VehicleSnapshot struct {
	VehicleID string `json:"id" gorm:"column:vehicle_id;type:varchar(36)"`
	Brand     string `json:"brand" gorm:"column:vehicle_brand;default:''"`
	Model     string `json:"model" gorm:"column:vehicle_model;default:''"`
	Plate     string `json:"plate" gorm:"column:vehicle_plate;default:''"`
}

// Booking создается только при подтверждении заявки и никогда не удаляется.
// Адреса и цена копируются из поездки, а не ссылаются на нее.
type Booking struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RequestID   string          `json:"requestId" gorm:"type:varchar(36);uniqueIndex;not null"`
	TripID      string          `json:"tripId" gorm:"type:varchar(36);index;not null"`
	RiderID     string          `json:"riderId" gorm:"type:varchar(36);index;not null"`
	CompanyID   string          `json:"companyId" gorm:"type:varchar(36);index"`
	Driver      DriverSnapshot  `json:"driver" gorm:"embedded"`
	Vehicle     VehicleSnapshot `json:"vehicle" gorm:"embedded"`
	Pickup      Location        `json:"pickup" gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff     Location        `json:"dropoff" gorm:"embedded;embeddedPrefix:dropoff_"`
	DepartureAt *time.Time      `json:"departureAt,omitempty"`
	Seats       int             `json:"seats" gorm:"not null"`
	PriceAmd    int64           `json:"priceAmd" gorm:"not null"`
	TotalAmd    int64           `json:"totalAmd" gorm:"not null"`
	PayMethod   PayMethod       `json:"payMethod" gorm:"type:varchar(10);not null"`
	Status      BookingStatus   `json:"status" gorm:"type:varchar(20);index;not null"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CancelledAt *time.Time      `json:"cancelledAt,omitempty"`
}

func (b Booking) Clone() Booking {
	out := b
	out.Pickup = b.Pickup.Clone()
	out.Dropoff = b.Dropoff.Clone()
	out.DepartureAt = cloneTime(b.DepartureAt)
	out.StartedAt = cloneTime(b.StartedAt)
	out.CompletedAt = cloneTime(b.CompletedAt)
	out.CancelledAt = cloneTime(b.CancelledAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
