// Package ledger maintains the append-only grade ledger. Grade records
// are only ever inserted; a correction appends a new record pointing at
// the original and then sets the original's supersession pointer, the
// one mutation the store permits. The current grade for a module is a
// derived query, not a separate index.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	courseModels "medtrain/models/course"
	"medtrain/services/audit"
)

var (
	ErrInvalidScore      = errors.New("score and passing score must be between 0 and 100")
	ErrReasonRequired    = errors.New("a correction reason is required")
	ErrNotFound          = errors.New("grade record not found")
	ErrAlreadySuperseded = errors.New("grade record has already been superseded")
)

type Service struct {
	db    *gorm.DB
	audit audit.Recorder
}

func NewService(db *gorm.DB, recorder audit.Recorder) *Service {
	return &Service{db: db, audit: recorder}
}

// EnterGrade appends a new grade record for (user, module). It never
// overwrites an existing record.
func (s *Service) EnterGrade(userID, moduleID uint, score, passingScore float64, gradedBy uint, notes string) (*courseModels.GradeRecord, error) {
	if score < 0 || score > 100 || passingScore < 0 || passingScore > 100 {
		return nil, ErrInvalidScore
	}
	if userID == 0 || moduleID == 0 {
		return nil, ErrNotFound
	}

	record := courseModels.GradeRecord{
		UserID:       userID,
		ModuleID:     moduleID,
		Score:        score,
		PassingScore: passingScore,
		Passed:       score >= passingScore,
		GradedBy:     gradedBy,
		GradedAt:     time.Now(),
		Notes:        notes,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	s.audit.Record(audit.Entry{
		ActorID:    gradedBy,
		ActionType: audit.ActionGradeEntered,
		TargetID:   fmt.Sprintf("grade:%d", record.ID),
		Details:    fmt.Sprintf("grade entered for user %d module %d", userID, moduleID),
		Metadata: map[string]interface{}{
			"user_id":       userID,
			"module_id":     moduleID,
			"score":         score,
			"passing_score": passingScore,
			"passed":        record.Passed,
		},
	})

	return &record, nil
}

// CorrectGrade supersedes an existing record with a new one. The write
// is deliberately two-step (append the correction, then flag the
// original) so a redelivered correction finds the original already
// superseded and fails cleanly instead of forking the chain.
func (s *Service) CorrectGrade(originalID uint, newScore, passingScore float64, reason string, gradedBy uint, notes string) (*courseModels.GradeRecord, error) {
	if newScore < 0 || newScore > 100 || passingScore < 0 || passingScore > 100 {
		return nil, ErrInvalidScore
	}
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var original courseModels.GradeRecord
	if err := s.db.First(&original, originalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if original.SupersededBy != nil {
		return nil, ErrAlreadySuperseded
	}

	correction := courseModels.GradeRecord{
		UserID:           original.UserID,
		ModuleID:         original.ModuleID,
		Score:            newScore,
		PassingScore:     passingScore,
		Passed:           newScore >= passingScore,
		GradedBy:         gradedBy,
		GradedAt:         time.Now(),
		Notes:            notes,
		CorrectionOf:     &original.ID,
		CorrectionReason: reason,
	}

	if err := s.db.Create(&correction).Error; err != nil {
		return nil, err
	}

	// The lone permitted mutation on a written record.
	if err := s.db.Model(&original).Update("SupersededBy", correction.ID).Error; err != nil {
		return nil, err
	}

	s.audit.Record(audit.Entry{
		ActorID:    gradedBy,
		ActionType: audit.ActionGradeCorrected,
		TargetID:   fmt.Sprintf("grade:%d", correction.ID),
		Details:    fmt.Sprintf("grade %d corrected by record %d: %s", original.ID, correction.ID, reason),
		Metadata: map[string]interface{}{
			"user_id":       original.UserID,
			"module_id":     original.ModuleID,
			"before_score":  original.Score,
			"after_score":   newScore,
			"before_passed": original.Passed,
			"after_passed":  correction.Passed,
			"reason":        reason,
		},
	})

	return &correction, nil
}

// CurrentGrade returns the newest unsuperseded record for (user, module).
func (s *Service) CurrentGrade(userID, moduleID uint) (*courseModels.GradeRecord, error) {
	var record courseModels.GradeRecord
	err := s.db.Where("user_id = ? AND module_id = ? AND superseded_by IS NULL", userID, moduleID).
		Order("id desc").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// History returns every record for (user, module), oldest first, for
// audit display.
func (s *Service) History(userID, moduleID uint) ([]courseModels.GradeRecord, error) {
	var records []courseModels.GradeRecord
	err := s.db.Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("id asc").Find(&records).Error
	return records, err
}
