// Package progress tracks block-level completion and quiz attempt
// history per (learner, module).
package progress

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	courseModels "medtrain/models/course"
	"medtrain/services/audit"
)

var (
	ErrNotFound         = errors.New("progress record not found")
	ErrNoRequiredBlocks = errors.New("total required blocks must be greater than zero")
)

type Tracker struct {
	db    *gorm.DB
	audit audit.Recorder
}

func NewTracker(db *gorm.DB, recorder audit.Recorder) *Tracker {
	return &Tracker{db: db, audit: recorder}
}

// Initialize creates a zero-state progress record for (user, module) if
// none exists. Re-initializing an existing record is a no-op, never a
// reset, so redelivered create events are harmless.
func (t *Tracker) Initialize(userID, courseID, moduleID uint) (*courseModels.ModuleProgress, error) {
	var record courseModels.ModuleProgress
	err := t.db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", userID, moduleID, false).
		FirstOrCreate(&record, courseModels.ModuleProgress{
			UserID:   userID,
			CourseID: courseID,
			ModuleID: moduleID,
		}).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Get returns the progress record for (user, module).
func (t *Tracker) Get(userID, moduleID uint) (*courseModels.ModuleProgress, error) {
	var record courseModels.ModuleProgress
	err := t.db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", userID, moduleID, false).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// MarkBlockComplete records a content block as completed and recomputes
// the module's completion percentage. Completing the same block twice
// never double-counts. Once progress reaches 100 the completion flag
// latches and is only cleared by Reset.
func (t *Tracker) MarkBlockComplete(userID, courseID, moduleID, blockID uint, totalRequiredBlocks int) (*courseModels.ModuleProgress, error) {
	if totalRequiredBlocks <= 0 {
		return nil, ErrNoRequiredBlocks
	}

	record, err := t.Initialize(userID, courseID, moduleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var completion courseModels.BlockCompletion
	err = t.db.Where("user_id = ? AND content_block_id = ? AND is_deleted = ?", userID, blockID, false).
		FirstOrCreate(&completion, courseModels.BlockCompletion{
			UserID:         userID,
			CourseID:       courseID,
			ModuleID:       moduleID,
			ContentBlockID: blockID,
			CompletedAt:    &now,
		}).Error
	if err != nil {
		return nil, err
	}

	var completedCount int64
	t.db.Model(&courseModels.BlockCompletion{}).
		Where("user_id = ? AND module_id = ? AND is_deleted = ?", userID, moduleID, false).
		Count(&completedCount)

	record.OverallProgress = math.Round(100 * float64(completedCount) / float64(totalRequiredBlocks))
	if record.OverallProgress > 100 {
		record.OverallProgress = 100
	}
	if record.OverallProgress >= 100 && !record.IsComplete {
		record.IsComplete = true
		record.CompletedAt = &now
	}

	if err := t.db.Save(record).Error; err != nil {
		return nil, err
	}

	t.audit.Record(audit.Entry{
		ActorID:    userID,
		ActionType: audit.ActionBlockCompleted,
		TargetID:   fmt.Sprintf("block:%d", blockID),
		Details:    fmt.Sprintf("user %d completed block %d in module %d", userID, blockID, moduleID),
		Metadata: map[string]interface{}{
			"module_id":        moduleID,
			"overall_progress": record.OverallProgress,
			"is_complete":      record.IsComplete,
		},
	})

	return record, nil
}

// RecordQuizAttempt records one quiz attempt against the module. The
// attempt always updates the counters; the quiz block only counts
// toward completion when the attempt passed.
func (t *Tracker) RecordQuizAttempt(userID, courseID, moduleID, blockID uint, score float64, passed bool, totalRequiredBlocks int) (*courseModels.ModuleProgress, error) {
	record, err := t.Initialize(userID, courseID, moduleID)
	if err != nil {
		return nil, err
	}

	record.TotalAttempts++
	record.LastScore = score
	if score > record.BestScore {
		record.BestScore = score
	}

	if err := t.db.Save(record).Error; err != nil {
		return nil, err
	}

	t.audit.Record(audit.Entry{
		ActorID:    userID,
		ActionType: audit.ActionQuizAttempt,
		TargetID:   fmt.Sprintf("block:%d", blockID),
		Details:    fmt.Sprintf("user %d attempted quiz block %d in module %d", userID, blockID, moduleID),
		Metadata: map[string]interface{}{
			"module_id":      moduleID,
			"score":          score,
			"passed":         passed,
			"total_attempts": record.TotalAttempts,
		},
	})

	// A failed attempt is recorded for history and remediation counting
	// but does not advance completion.
	if passed {
		return t.MarkBlockComplete(userID, courseID, moduleID, blockID, totalRequiredBlocks)
	}

	return record, nil
}

// Reset zeroes a learner's progress on a module. Only an approved
// remediation request calls this; grade history is untouched.
func (t *Tracker) Reset(userID, moduleID uint, actorID uint) error {
	record, err := t.Get(userID, moduleID)
	if err != nil {
		return err
	}

	err = t.db.Model(&courseModels.BlockCompletion{}).
		Where("user_id = ? AND module_id = ? AND is_deleted = ?", userID, moduleID, false).
		Update("is_deleted", true).Error
	if err != nil {
		return err
	}

	record.TotalAttempts = 0
	record.BestScore = 0
	record.LastScore = 0
	record.OverallProgress = 0
	record.IsComplete = false
	record.CompletedAt = nil

	if err := t.db.Save(record).Error; err != nil {
		return err
	}

	t.audit.Record(audit.Entry{
		ActorID:    actorID,
		ActionType: audit.ActionProgressReset,
		TargetID:   fmt.Sprintf("progress:%d", record.ID),
		Details:    fmt.Sprintf("progress reset for user %d module %d", userID, moduleID),
		Metadata: map[string]interface{}{
			"user_id":   userID,
			"module_id": moduleID,
		},
	})

	return nil
}
