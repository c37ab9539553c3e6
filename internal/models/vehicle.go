package models

import (
	"time"
)

// Vehicle принадлежит компании и может быть закреплен за водителем
type Vehicle struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CompanyID string    `json:"companyId" gorm:"type:varchar(36);index;not null"`
	Brand     string    `json:"brand" gorm:"not null"`
	Model     string    `json:"model" gorm:"not null"`
	Plate     string    `json:"plate" gorm:"not null;uniqueIndex"`
	Seats     int       `json:"seats" gorm:"not null"`
	DriverID  string    `json:"driverId,omitempty" gorm:"type:varchar(36);default:''"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
