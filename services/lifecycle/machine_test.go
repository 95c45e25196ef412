package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	courseModels "medtrain/models/course"
	"medtrain/services/audit"
	"medtrain/services/ledger"
	"medtrain/services/progress"
)

func newTestMachine(t *testing.T) (*Machine, *gorm.DB, *audit.MemoryRecorder) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&courseModels.Enrollment{},
		&courseModels.ModuleProgress{},
		&courseModels.BlockCompletion{},
		&courseModels.GradeRecord{},
		&courseModels.RemediationRequest{},
	))

	recorder := audit.NewMemoryRecorder()
	tracker := progress.NewTracker(db, recorder)
	ledgerSvc := ledger.NewService(db, recorder)
	return NewMachine(db, recorder, tracker, ledgerSvc), db, recorder
}

func seedEnrollment(t *testing.T, db *gorm.DB, status string) *courseModels.Enrollment {
	enrollment := &courseModels.Enrollment{UserID: 1, CourseID: 5, Status: status}
	require.NoError(t, db.Create(enrollment).Error)
	return enrollment
}

func TestFirstProgressStartsEnrollment(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusNotStarted)

	updated, err := machine.RecordProgress(enrollment.ID, 10, false, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusInProgress, updated.Status)
	assert.Equal(t, 10.0, updated.Progress)
}

func TestFullProgressCompletes(t *testing.T) {
	machine, db, recorder := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusInProgress)

	updated, err := machine.RecordProgress(enrollment.ID, 100, false, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	entries := recorder.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionStatusChanged, entries[0].ActionType)
}

func TestCannotSkipInProgress(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusNotStarted)

	// Even a straight-to-100 submission passes through in_progress.
	updated, err := machine.RecordProgress(enrollment.ID, 100, false, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusCompleted, updated.Status)

	// A review approval on a not_started enrollment is rejected.
	fresh := seedEnrollment(t, db, courseModels.StatusNotStarted)
	_, err = machine.ApproveReview(fresh.ID, 10, 90, 70, 99, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReviewableSubmissionGoesToReview(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusInProgress)

	answers := []byte(`{"q4":"escalate to charge nurse and file an incident report"}`)
	updated, err := machine.RecordProgress(enrollment.ID, 100, true, answers, 1)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusNeedsReview, updated.Status)
	assert.NotEmpty(t, updated.QuizAnswers, "raw answers persisted for the reviewer")
	assert.Nil(t, updated.CompletedAt)
}

func TestRecordProgressIdempotent(t *testing.T) {
	machine, db, recorder := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusInProgress)

	_, err := machine.RecordProgress(enrollment.ID, 100, false, nil, 1)
	require.NoError(t, err)

	// Redelivered update: same progress, no further transition or log.
	updated, err := machine.RecordProgress(enrollment.ID, 100, false, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusCompleted, updated.Status)
	assert.Len(t, recorder.Entries(), 1)
}

func TestApproveReview(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusNeedsReview)

	updated, err := machine.ApproveReview(enrollment.ID, 10, 88, 70, 99, "well reasoned answer")
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusCompleted, updated.Status)
	assert.Equal(t, 88.0, updated.Score)

	// The final score went through the ledger.
	var record courseModels.GradeRecord
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", 1, 10).First(&record).Error)
	assert.Equal(t, 88.0, record.Score)
	assert.Equal(t, uint(99), record.GradedBy)
}

func TestRejectReview(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusNeedsReview)

	_, err := machine.RejectReview(enrollment.ID, 99, "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	updated, err := machine.RejectReview(enrollment.ID, 99, "answer does not address the protocol")
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusInProgress, updated.Status)

	// No grade was written.
	var count int64
	db.Model(&courseModels.GradeRecord{}).Count(&count)
	assert.Zero(t, count)
}

func TestFailedAttemptBelowThreshold(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusInProgress)

	request, err := machine.HandleFailedAttempt(enrollment.ID, 10, 2, 55, 1)
	require.NoError(t, err)
	assert.Nil(t, request)

	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, courseModels.StatusInProgress, reloaded.Status)
}

func TestThirdFailureQueuesRemediation(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusInProgress)

	request, err := machine.HandleFailedAttempt(enrollment.ID, 10, 3, 55, 1)
	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Equal(t, courseModels.RemediationPending, request.Status)
	assert.Equal(t, 3, request.FailedAttempts)

	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, courseModels.StatusFailed, reloaded.Status)

	// Redelivery returns the existing pending request, never a second one.
	again, err := machine.HandleFailedAttempt(enrollment.ID, 10, 4, 50, 1)
	require.NoError(t, err)
	assert.Equal(t, request.ID, again.ID)

	var count int64
	db.Model(&courseModels.RemediationRequest{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestApproveRemediation(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusInProgress)

	// Build up failing progress, then fail the enrollment.
	tracker := progress.NewTracker(db, audit.NopRecorder{})
	for i := 0; i < 3; i++ {
		_, err := tracker.RecordQuizAttempt(1, 5, 10, 200, 50, false, 1)
		require.NoError(t, err)
	}
	request, err := machine.HandleFailedAttempt(enrollment.ID, 10, 3, 50, 1)
	require.NoError(t, err)

	approved, err := machine.ApproveRemediation(request.ID, 99, "retake granted")
	require.NoError(t, err)
	assert.Equal(t, courseModels.RemediationApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, uint(99), *approved.ReviewedBy)

	record, err := tracker.Get(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, record.TotalAttempts, "module progress reset to zero")
	assert.Equal(t, 0.0, record.OverallProgress)

	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, courseModels.StatusInProgress, reloaded.Status)

	// A decided request cannot be decided again.
	_, err = machine.ApproveRemediation(request.ID, 99, "")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestDenyRemediation(t *testing.T) {
	machine, db, _ := newTestMachine(t)
	enrollment := seedEnrollment(t, db, courseModels.StatusInProgress)

	_, err := progress.NewTracker(db, audit.NopRecorder{}).RecordQuizAttempt(1, 5, 10, 200, 40, false, 1)
	require.NoError(t, err)

	request, err := machine.HandleFailedAttempt(enrollment.ID, 10, 3, 40, 1)
	require.NoError(t, err)

	denied, err := machine.DenyRemediation(request.ID, 99, "insufficient effort shown")
	require.NoError(t, err)
	assert.Equal(t, courseModels.RemediationDenied, denied.Status)

	// The enrollment stays failed.
	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, courseModels.StatusFailed, reloaded.Status)
}
