package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment status enum values. Transitions between them are owned by
// the lifecycle service; nothing else writes Status directly.
const (
	StatusNotStarted  = "not_started"
	StatusInProgress  = "in_progress"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusNeedsReview = "needs_review"
)

// Enrollment tracks a staff member's enrollment in a course
type Enrollment struct {
	gorm.Model
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	CourseID    uint           `json:"course_id" gorm:"index;not null"`
	Status      string         `json:"status" gorm:"default:'not_started'"`
	Progress    float64        `json:"progress" gorm:"default:0"` // completion percentage (0-100)
	Score       float64        `json:"score" gorm:"default:0"`    // latest overall course score
	QuizAnswers datatypes.JSON `json:"quiz_answers"`              // raw answers persisted for manual review
	CompletedAt *time.Time     `json:"completed_at"`
	IsDeleted   bool           `gorm:"default:false"`
}
