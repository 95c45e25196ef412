// Package lifecycle owns enrollment status transitions. Other
// components request a transition through the machine; nothing else
// writes Enrollment.Status.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	courseModels "medtrain/models/course"
	"medtrain/services/audit"
	"medtrain/services/ledger"
	"medtrain/services/progress"
)

var (
	ErrNotFound          = errors.New("enrollment not found")
	ErrInvalidTransition = errors.New("invalid enrollment status transition")
	ErrReasonRequired    = errors.New("a reason is required")
	ErrNotPending        = errors.New("remediation request is not pending")
)

// RemediationAttemptThreshold is the failed-attempt count at which a
// failing module attempt queues a remediation request.
const RemediationAttemptThreshold = 3

// allowed maps each status to the statuses it may move to. completed
// and failed only reopen through the remediation-approval path, which
// goes back to in_progress.
var allowed = map[string][]string{
	courseModels.StatusNotStarted:  {courseModels.StatusInProgress},
	courseModels.StatusInProgress:  {courseModels.StatusCompleted, courseModels.StatusFailed, courseModels.StatusNeedsReview},
	courseModels.StatusNeedsReview: {courseModels.StatusCompleted, courseModels.StatusInProgress},
	courseModels.StatusFailed:      {courseModels.StatusInProgress},
	courseModels.StatusCompleted:   {courseModels.StatusInProgress},
}

type Machine struct {
	db      *gorm.DB
	audit   audit.Recorder
	tracker *progress.Tracker
	ledger  *ledger.Service
}

func NewMachine(db *gorm.DB, recorder audit.Recorder, tracker *progress.Tracker, ledgerSvc *ledger.Service) *Machine {
	return &Machine{db: db, audit: recorder, tracker: tracker, ledger: ledgerSvc}
}

func (m *Machine) get(enrollmentID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := m.db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

func canTransition(from, to string) bool {
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves the enrollment to the target status, stamping
// CompletedAt when it completes and logging the change. Transitions are
// never skipped; an illegal move is rejected outright.
func (m *Machine) transition(enrollment *courseModels.Enrollment, to string, actorID uint, reason string) error {
	from := enrollment.Status
	if from == to {
		return nil
	}
	if !canTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	enrollment.Status = to
	if to == courseModels.StatusCompleted {
		now := time.Now()
		enrollment.CompletedAt = &now
	}

	if err := m.db.Save(enrollment).Error; err != nil {
		return err
	}

	m.audit.Record(audit.Entry{
		ActorID:    actorID,
		ActionType: audit.ActionStatusChanged,
		TargetID:   fmt.Sprintf("enrollment:%d", enrollment.ID),
		Details:    reason,
		Metadata: map[string]interface{}{
			"user_id":       enrollment.UserID,
			"course_id":     enrollment.CourseID,
			"before_status": from,
			"after_status":  to,
		},
	})

	return nil
}

// RecordProgress applies a progress update to the enrollment and drives
// the status forward when a threshold is crossed. Re-applying the same
// update is a no-op, so redelivered progress events are safe.
func (m *Machine) RecordProgress(enrollmentID uint, progressPct float64, needsReview bool, rawAnswers datatypes.JSON, actorID uint) (*courseModels.Enrollment, error) {
	enrollment, err := m.get(enrollmentID)
	if err != nil {
		return nil, err
	}

	enrollment.Progress = progressPct
	if rawAnswers != nil {
		enrollment.QuizAnswers = rawAnswers
	}
	if err := m.db.Save(enrollment).Error; err != nil {
		return nil, err
	}

	if enrollment.Status == courseModels.StatusNotStarted && progressPct > 0 {
		if err := m.transition(enrollment, courseModels.StatusInProgress, actorID, "first progress recorded"); err != nil {
			return nil, err
		}
	}

	if progressPct >= 100 && enrollment.Status == courseModels.StatusInProgress {
		if needsReview {
			// Raw answers were persisted above for the reviewer.
			if err := m.transition(enrollment, courseModels.StatusNeedsReview, actorID, "course finished with manually-reviewable answers"); err != nil {
				return nil, err
			}
		} else {
			if err := m.transition(enrollment, courseModels.StatusCompleted, actorID, "all modules completed"); err != nil {
				return nil, err
			}
		}
	}

	return enrollment, nil
}

// ApproveReview accepts a submission in manual review: the reviewer's
// final score is written through the grade ledger and the enrollment
// completes with it.
func (m *Machine) ApproveReview(enrollmentID, moduleID uint, finalScore, passingScore float64, reviewerID uint, notes string) (*courseModels.Enrollment, error) {
	enrollment, err := m.get(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != courseModels.StatusNeedsReview {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, enrollment.Status, courseModels.StatusCompleted)
	}

	if _, err := m.ledger.EnterGrade(enrollment.UserID, moduleID, finalScore, passingScore, reviewerID, notes); err != nil {
		return nil, err
	}

	enrollment.Score = finalScore
	if err := m.transition(enrollment, courseModels.StatusCompleted, reviewerID, "manual review approved"); err != nil {
		return nil, err
	}

	return enrollment, nil
}

// RejectReview returns a reviewed submission to in-progress so the
// learner can resubmit. No grade is written; a reason is mandatory.
func (m *Machine) RejectReview(enrollmentID, reviewerID uint, reason string) (*courseModels.Enrollment, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	enrollment, err := m.get(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != courseModels.StatusNeedsReview {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, enrollment.Status, courseModels.StatusInProgress)
	}

	if err := m.transition(enrollment, courseModels.StatusInProgress, reviewerID, "manual review rejected: "+reason); err != nil {
		return nil, err
	}

	return enrollment, nil
}

// HandleFailedAttempt reacts to a failing module grade attempt. From
// the third recorded attempt on, it queues a remediation request and
// fails the enrollment. The queue insert is gated on no pending request
// existing, so redelivery cannot create duplicates.
func (m *Machine) HandleFailedAttempt(enrollmentID, moduleID uint, attempts int, lastScore float64, actorID uint) (*courseModels.RemediationRequest, error) {
	if attempts < RemediationAttemptThreshold {
		return nil, nil
	}

	enrollment, err := m.get(enrollmentID)
	if err != nil {
		return nil, err
	}

	var existing courseModels.RemediationRequest
	err = m.db.Where("user_id = ? AND module_id = ? AND status = ? AND is_deleted = ?",
		enrollment.UserID, moduleID, courseModels.RemediationPending, false).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	request := courseModels.RemediationRequest{
		UserID:         enrollment.UserID,
		CourseID:       enrollment.CourseID,
		ModuleID:       moduleID,
		EnrollmentID:   enrollment.ID,
		Status:         courseModels.RemediationPending,
		FailedAttempts: attempts,
		LastScore:      lastScore,
		RequestedAt:    time.Now(),
	}
	if err := m.db.Create(&request).Error; err != nil {
		return nil, err
	}

	m.audit.Record(audit.Entry{
		ActorID:    actorID,
		ActionType: audit.ActionRemediationCreated,
		TargetID:   fmt.Sprintf("remediation:%d", request.ID),
		Details:    fmt.Sprintf("remediation queued after %d failed attempts on module %d", attempts, moduleID),
		Metadata: map[string]interface{}{
			"user_id":    enrollment.UserID,
			"module_id":  moduleID,
			"attempts":   attempts,
			"last_score": lastScore,
		},
	})

	if enrollment.Status == courseModels.StatusInProgress {
		if err := m.transition(enrollment, courseModels.StatusFailed, actorID,
			fmt.Sprintf("failed module %d on attempt %d", moduleID, attempts)); err != nil {
			return nil, err
		}
	}

	return &request, nil
}

// ApproveRemediation resets the learner's module progress and reopens
// the enrollment.
func (m *Machine) ApproveRemediation(requestID, reviewerID uint, notes string) (*courseModels.RemediationRequest, error) {
	request, err := m.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != courseModels.RemediationPending {
		return nil, ErrNotPending
	}

	now := time.Now()
	request.Status = courseModels.RemediationApproved
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &now
	request.ReviewNotes = notes
	if err := m.db.Save(request).Error; err != nil {
		return nil, err
	}

	if err := m.tracker.Reset(request.UserID, request.ModuleID, reviewerID); err != nil {
		return nil, err
	}

	enrollment, err := m.get(request.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if err := m.transition(enrollment, courseModels.StatusInProgress, reviewerID, "remediation approved"); err != nil {
		return nil, err
	}

	m.audit.Record(audit.Entry{
		ActorID:    reviewerID,
		ActionType: audit.ActionRemediationApproved,
		TargetID:   fmt.Sprintf("remediation:%d", request.ID),
		Details:    fmt.Sprintf("remediation approved for user %d module %d", request.UserID, request.ModuleID),
	})

	return request, nil
}

// DenyRemediation leaves the enrollment in its current failing state.
func (m *Machine) DenyRemediation(requestID, reviewerID uint, notes string) (*courseModels.RemediationRequest, error) {
	request, err := m.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != courseModels.RemediationPending {
		return nil, ErrNotPending
	}

	now := time.Now()
	request.Status = courseModels.RemediationDenied
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &now
	request.ReviewNotes = notes
	if err := m.db.Save(request).Error; err != nil {
		return nil, err
	}

	m.audit.Record(audit.Entry{
		ActorID:    reviewerID,
		ActionType: audit.ActionRemediationDenied,
		TargetID:   fmt.Sprintf("remediation:%d", request.ID),
		Details:    fmt.Sprintf("remediation denied for user %d module %d", request.UserID, request.ModuleID),
	})

	return request, nil
}

func (m *Machine) getRequest(requestID uint) (*courseModels.RemediationRequest, error) {
	var request courseModels.RemediationRequest
	err := m.db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}
