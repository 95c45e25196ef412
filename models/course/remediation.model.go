package course

import (
	"time"

	"gorm.io/gorm"
)

// RemediationStatus enum values
const (
	RemediationPending  = "PENDING"
	RemediationApproved = "APPROVED"
	RemediationDenied   = "DENIED"
)

// RemediationRequest is queued automatically after repeated failing
// attempts on a module. Approval resets the learner's module progress
// and reopens the enrollment; denial leaves everything as-is.
type RemediationRequest struct {
	gorm.Model
	UserID         uint       `json:"user_id" gorm:"index;not null"`
	CourseID       uint       `json:"course_id" gorm:"index;not null"`
	ModuleID       uint       `json:"module_id" gorm:"index;not null"`
	EnrollmentID   uint       `json:"enrollment_id" gorm:"index;not null"`
	Status         string     `json:"status" gorm:"default:'PENDING'"` // PENDING, APPROVED, DENIED
	FailedAttempts int        `json:"failed_attempts"`
	LastScore      float64    `json:"last_score"`
	RequestedAt    time.Time  `json:"requested_at"`
	ReviewedBy     *uint      `json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	ReviewNotes    string     `json:"review_notes"`
	IsDeleted      bool       `gorm:"default:false"`
}
