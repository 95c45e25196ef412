package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	courseModels "medtrain/models/course"
	"medtrain/services/audit"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&courseModels.GradeRecord{}))
	return db
}

func TestEnterGrade(t *testing.T) {
	recorder := audit.NewMemoryRecorder()
	svc := NewService(newTestDB(t), recorder)

	record, err := svc.EnterGrade(1, 10, 85, 70, 99, "initial grade")
	require.NoError(t, err)
	assert.Equal(t, 85.0, record.Score)
	assert.True(t, record.Passed)
	assert.Nil(t, record.SupersededBy)

	entries := recorder.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionGradeEntered, entries[0].ActionType)
}

func TestEnterGradeRejectsOutOfRange(t *testing.T) {
	svc := NewService(newTestDB(t), audit.NopRecorder{})

	for _, score := range []float64{-1, 101} {
		_, err := svc.EnterGrade(1, 10, score, 70, 99, "")
		assert.ErrorIs(t, err, ErrInvalidScore)
	}

	_, err := svc.EnterGrade(1, 10, 50, 150, 99, "")
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestCorrectGrade(t *testing.T) {
	recorder := audit.NewMemoryRecorder()
	svc := NewService(newTestDB(t), recorder)

	original, err := svc.EnterGrade(1, 10, 65, 70, 99, "")
	require.NoError(t, err)

	correction, err := svc.CorrectGrade(original.ID, 85, 70, "retake", 99, "instructor review")
	require.NoError(t, err)
	assert.Equal(t, 85.0, correction.Score)
	assert.True(t, correction.Passed)
	require.NotNil(t, correction.CorrectionOf)
	assert.Equal(t, original.ID, *correction.CorrectionOf)

	history, err := svc.History(1, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, original.ID, history[0].ID, "history is oldest first")
	require.NotNil(t, history[0].SupersededBy)
	assert.Equal(t, correction.ID, *history[0].SupersededBy)
	assert.Nil(t, history[1].SupersededBy)

	current, err := svc.CurrentGrade(1, 10)
	require.NoError(t, err)
	assert.Equal(t, correction.ID, current.ID)

	entries := recorder.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionGradeCorrected, entries[1].ActionType)
}

func TestCorrectGradeUnknownOriginal(t *testing.T) {
	svc := NewService(newTestDB(t), audit.NopRecorder{})
	_, err := svc.CorrectGrade(12345, 85, 70, "retake", 99, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCorrectGradeRequiresReason(t *testing.T) {
	svc := NewService(newTestDB(t), audit.NopRecorder{})
	original, err := svc.EnterGrade(1, 10, 65, 70, 99, "")
	require.NoError(t, err)

	_, err = svc.CorrectGrade(original.ID, 85, 70, "", 99, "")
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestCorrectGradeTwiceFails(t *testing.T) {
	svc := NewService(newTestDB(t), audit.NopRecorder{})
	original, err := svc.EnterGrade(1, 10, 65, 70, 99, "")
	require.NoError(t, err)

	_, err = svc.CorrectGrade(original.ID, 85, 70, "retake", 99, "")
	require.NoError(t, err)

	_, err = svc.CorrectGrade(original.ID, 90, 70, "again", 99, "")
	assert.ErrorIs(t, err, ErrAlreadySuperseded)

	// Exactly one unsuperseded record remains for the pair.
	history, err := svc.History(1, 10)
	require.NoError(t, err)
	open := 0
	for _, record := range history {
		if record.SupersededBy == nil {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

func TestGradeRecordImmutable(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, audit.NopRecorder{})
	record, err := svc.EnterGrade(1, 10, 65, 70, 99, "")
	require.NoError(t, err)

	err = db.Model(record).Updates(map[string]interface{}{"score": 99.0}).Error
	assert.ErrorIs(t, err, courseModels.ErrGradeRecordImmutable)

	err = db.Model(record).Updates(map[string]interface{}{"user_id": uint(2)}).Error
	assert.ErrorIs(t, err, courseModels.ErrGradeRecordImmutable)

	var reloaded courseModels.GradeRecord
	require.NoError(t, db.First(&reloaded, record.ID).Error)
	assert.Equal(t, 65.0, reloaded.Score)
	assert.Equal(t, uint(1), reloaded.UserID)
}

func TestCurrentGradeMissing(t *testing.T) {
	svc := NewService(newTestDB(t), audit.NopRecorder{})
	_, err := svc.CurrentGrade(1, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
