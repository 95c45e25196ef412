package course

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrGradeRecordImmutable is returned when an update touches any grade
// record field other than the supersession pointer.
var ErrGradeRecordImmutable = errors.New("grade records are immutable; corrections create a new record")

// GradeRecord is one entry in the append-only grade ledger. Records are
// never updated after insert except to set SupersededBy when a
// correction replaces them. There is deliberately no IsDeleted flag.
type GradeRecord struct {
	gorm.Model
	UserID           uint      `json:"user_id" gorm:"index;not null"`
	ModuleID         uint      `json:"module_id" gorm:"index;not null"`
	Score            float64   `json:"score"`         // 0-100
	PassingScore     float64   `json:"passing_score"` // 0-100
	Passed           bool      `json:"passed" gorm:"default:false"`
	GradedBy         uint      `json:"graded_by"`
	GradedAt         time.Time `json:"graded_at"`
	Notes            string    `json:"notes" gorm:"type:text"`
	CorrectionOf     *uint     `json:"correction_of" gorm:"index"` // id of the record this one corrects
	CorrectionReason string    `json:"correction_reason"`
	SupersededBy     *uint     `json:"superseded_by" gorm:"index"` // set on the old record when corrected
}

// BeforeUpdate rejects any mutation of a written grade record except
// setting SupersededBy. UserID and ModuleID in particular can never
// change on an existing record.
func (GradeRecord) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("UserID", "ModuleID", "Score", "PassingScore", "Passed",
		"GradedBy", "GradedAt", "Notes", "CorrectionOf", "CorrectionReason") {
		return ErrGradeRecordImmutable
	}
	return nil
}

// CourseGradeSnapshot is a persisted copy of a course grade calculation,
// keyed by (user, course). Always reproducible by recomputation; kept
// for fast reads and audit parity, never hand-edited.
type CourseGradeSnapshot struct {
	gorm.Model
	UserID                uint           `json:"user_id" gorm:"index;not null"`
	CourseID              uint           `json:"course_id" gorm:"index;not null"`
	OverallScore          float64        `json:"overall_score"`
	OverallPassed         bool           `json:"overall_passed"`
	TotalCriticalModules  int            `json:"total_critical_modules"`
	CriticalModulesPassed int            `json:"critical_modules_passed"`
	AllCriticalPassed     bool           `json:"all_critical_modules_passed"`
	TotalModules          int            `json:"total_modules"`
	GradedModules         int            `json:"graded_modules"`
	TotalWeight           float64        `json:"total_weight"`
	CompletionPercent     float64        `json:"completion_percent"`
	IsComplete            bool           `json:"is_complete"`
	Breakdown             datatypes.JSON `json:"breakdown"` // []grading.ModuleBreakdown
	CalculatedAt          time.Time      `json:"calculated_at"`
}
