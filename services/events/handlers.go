package events

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"medtrain/models"
	courseModels "medtrain/models/course"
	"medtrain/services/coursegrade"
	"medtrain/services/lifecycle"
	"medtrain/utils"
)

// Register wires the standard change handlers onto the bus: grade
// ledger changes refresh the persisted course grade snapshot, and
// progress changes drive the enrollment forward. Each handler inspects
// the before/after delta so a redelivered change is a no-op.
func Register(bus *Bus, db *gorm.DB, grades *coursegrade.Service, machine *lifecycle.Machine) {
	bus.Subscribe(KindGradeRecord, gradeRecordHandler(db, grades))
	bus.Subscribe(KindProgress, progressHandler(db, machine))
}

// gradeRecordHandler refreshes the (user, course) snapshot whenever a
// grade record is written or superseded. The recompute is idempotent,
// so no delta gate is needed beyond resolving the affected course.
func gradeRecordHandler(db *gorm.DB, grades *coursegrade.Service) Handler {
	return func(change Change) error {
		record, ok := change.After.(*courseModels.GradeRecord)
		if !ok || record == nil {
			return nil
		}

		var module courseModels.Module
		if err := db.Where("id = ?", record.ModuleID).First(&module).Error; err != nil {
			return fmt.Errorf("resolve module %d: %w", record.ModuleID, err)
		}

		if _, err := grades.Snapshot(record.UserID, module.CourseID); err != nil {
			return fmt.Errorf("snapshot user %d course %d: %w", record.UserID, module.CourseID, err)
		}
		return nil
	}
}

// progressHandler recomputes course-level progress from the learner's
// module progress records and asks the state machine to move the
// enrollment when a threshold is crossed. Only acts when the after
// snapshot differs from the before snapshot, so double delivery cannot
// double-transition.
func progressHandler(db *gorm.DB, machine *lifecycle.Machine) Handler {
	return func(change Change) error {
		after, ok := change.After.(*courseModels.ModuleProgress)
		if !ok || after == nil {
			return nil
		}
		if before, ok := change.Before.(*courseModels.ModuleProgress); ok && before != nil {
			if before.OverallProgress == after.OverallProgress && before.IsComplete == after.IsComplete {
				return nil
			}
		}

		var enrollment courseModels.Enrollment
		err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?",
			after.UserID, after.CourseID, false).First(&enrollment).Error
		if err != nil {
			return fmt.Errorf("resolve enrollment for user %d course %d: %w", after.UserID, after.CourseID, err)
		}

		var totalModules int64
		db.Model(&courseModels.Module{}).
			Where("course_id = ? AND is_deleted = ?", after.CourseID, false).
			Count(&totalModules)
		if totalModules == 0 {
			return nil
		}

		// Course progress is the average of module progress across every
		// module of the course; modules the learner has not touched
		// contribute zero.
		var progressSum float64
		row := db.Model(&courseModels.ModuleProgress{}).
			Where("user_id = ? AND course_id = ? AND is_deleted = ?", after.UserID, after.CourseID, false).
			Select("COALESCE(SUM(overall_progress), 0)").Row()
		if err := row.Scan(&progressSum); err != nil {
			return fmt.Errorf("sum module progress: %w", err)
		}

		coursePct := math.Round(progressSum / float64(totalModules))

		// Completion waits on any attempt still flagged for manual
		// review; the review queue finishes those enrollments.
		var reviewable int64
		db.Model(&courseModels.QuizAttempt{}).
			Where("user_id = ? AND course_id = ? AND needs_review = ? AND is_deleted = ?",
				after.UserID, after.CourseID, true, false).
			Count(&reviewable)

		priorStatus := enrollment.Status
		updated, err := machine.RecordProgress(enrollment.ID, coursePct, reviewable > 0, nil, after.UserID)
		if err != nil {
			return err
		}

		if priorStatus != courseModels.StatusCompleted && updated.Status == courseModels.StatusCompleted {
			go notifyCompletion(db, updated)
		}

		return nil
	}
}

// notifyCompletion fires the best-effort completion email and webhook.
func notifyCompletion(db *gorm.DB, enrollment *courseModels.Enrollment) {
	var learner models.User
	var course courseModels.Course
	if err := db.Where("id = ?", enrollment.UserID).First(&learner).Error; err != nil {
		return
	}
	if err := db.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
		return
	}

	utils.SendCompletionEmail(learner.Email, learner.Name, course.Title)
	utils.NotifyWebhook("course.completed", map[string]interface{}{
		"user_id":   enrollment.UserID,
		"course_id": enrollment.CourseID,
		"score":     enrollment.Score,
	})
}
