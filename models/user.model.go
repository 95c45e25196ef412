package models

import (
	"time"

	"gorm.io/gorm"
)

// Role enum values
const (
	RoleLearner    = "LEARNER"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	ProfileImage        string     `gorm:"default:''"`
	Name                string     `gorm:"default:''"`
	Email               string     `gorm:"unique;not null"`
	Mobile              string     `gorm:"default:''"`
	Role                string     `gorm:"default:'LEARNER'"` // LEARNER, INSTRUCTOR, ADMIN
	Password            string     `gorm:"not null"`
	Department          string     `gorm:"default:''"` // e.g. ICU, Radiology, Pharmacy
	JobTitle            string     `gorm:"default:''"`
	LicenseNumber       string     `gorm:"default:''"` // professional license shown on certificates
	IsEmailVerified     bool       `gorm:"default:false"`
	LastLogin           time.Time  `gorm:"default:NULL"`
	FailedLoginAttempts int        `gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"last_failed_login"`
	IsBlocked           bool       `gorm:"default:false"`
	BlockedUntil        *time.Time `json:"blocked_until"`
	IsDeleted           bool       `gorm:"default:false"`
}
