package course

import (
	"time"

	"gorm.io/gorm"
)

// ModuleProgress tracks a learner's block-level progress in one module.
// IsComplete is a one-way latch: once true it is only ever cleared by an
// approved remediation reset.
type ModuleProgress struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	CourseID        uint       `json:"course_id" gorm:"index;not null"`
	ModuleID        uint       `json:"module_id" gorm:"index;not null"`
	TotalAttempts   int        `json:"total_attempts" gorm:"default:0"`
	BestScore       float64    `json:"best_score" gorm:"default:0"`
	LastScore       float64    `json:"last_score" gorm:"default:0"`
	OverallProgress float64    `json:"overall_progress" gorm:"default:0"` // 0-100
	IsComplete      bool       `json:"is_complete" gorm:"default:false"`
	CompletedAt     *time.Time `json:"completed_at"`
	IsDeleted       bool       `gorm:"default:false"`
}
