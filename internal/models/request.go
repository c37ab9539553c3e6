package models

import (
	"time"
)

// Request - заявка пассажира на места в поездке
type Request struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TripID        string        `json:"tripId" gorm:"type:varchar(36);index;not null"`
	RiderID       string        `json:"riderId" gorm:"type:varchar(36);index;not null"`
	Seats         int           `json:"seats" gorm:"not null"`
	PayMethod     PayMethod     `json:"payMethod" gorm:"type:varchar(10);not null"`
	Status        RequestStatus `json:"status" gorm:"type:varchar(20);index;not null"`
	Notes         string        `json:"notes,omitempty" gorm:"default:''"`
	DeclineReason string        `json:"declineReason,omitempty" gorm:"default:''"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (Request) TableName() string {
	return "ride_requests"
}
