package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCompany Role = "company"
	RoleDriver  Role = "driver"
	RoleRider   Role = "rider"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCompany, RoleDriver, RoleRider, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null"`
	CompanyID string    `json:"companyId,omitempty" gorm:"type:varchar(36);default:''"`
	FirstName string    `json:"firstName" gorm:"default:''"`
	LastName  string    `json:"lastName" gorm:"default:''"`
	Phone     string    `json:"phone" gorm:"type:varchar(20);default:''"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
