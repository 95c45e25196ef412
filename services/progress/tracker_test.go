package progress

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

func newTestTracker(t *testing.T) (*Tracker, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&courseModels.ModuleProgress{}, &courseModels.BlockCompletion{}))
	return NewTracker(db, audit.NopRecorder{}), db
}

func TestInitializeIdempotent(t *testing.T) {
	tracker, _ := newTestTracker(t)

	first, err := tracker.Initialize(1, 5, 10)
	require.NoError(t, err)

	_, err = tracker.MarkBlockComplete(1, 5, 10, 100, 4)
	require.NoError(t, err)

	again, err := tracker.Initialize(1, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 25.0, again.OverallProgress, "re-initialize is a no-op, not a reset")
}

func TestMarkBlockComplete(t *testing.T) {
	tracker, _ := newTestTracker(t)

	record, err := tracker.MarkBlockComplete(1, 5, 10, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, 25.0, record.OverallProgress)
	assert.False(t, record.IsComplete)

	// Completing the same block again does not double-count.
	record, err = tracker.MarkBlockComplete(1, 5, 10, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, 25.0, record.OverallProgress)
}

func TestMarkBlockCompleteLatch(t *testing.T) {
	tracker, _ := newTestTracker(t)

	for blockID := uint(100); blockID < 104; blockID++ {
		_, err := tracker.MarkBlockComplete(1, 5, 10, blockID, 4)
		require.NoError(t, err)
	}

	record, err := tracker.Get(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 100.0, record.OverallProgress)
	assert.True(t, record.IsComplete)
	assert.NotNil(t, record.CompletedAt)
}

func TestMarkBlockCompleteRequiresTotal(t *testing.T) {
	tracker, _ := newTestTracker(t)
	_, err := tracker.MarkBlockComplete(1, 5, 10, 100, 0)
	assert.ErrorIs(t, err, ErrNoRequiredBlocks)
}

func TestProgressMonotonic(t *testing.T) {
	tracker, _ := newTestTracker(t)

	previous := 0.0
	for blockID := uint(100); blockID < 105; blockID++ {
		record, err := tracker.MarkBlockComplete(1, 5, 10, blockID, 5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, record.OverallProgress, previous)
		previous = record.OverallProgress
	}
}

func TestRecordQuizAttempt(t *testing.T) {
	tracker, _ := newTestTracker(t)

	record, err := tracker.RecordQuizAttempt(1, 5, 10, 200, 60, false, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, record.TotalAttempts)
	assert.Equal(t, 60.0, record.LastScore)
	assert.Equal(t, 60.0, record.BestScore)
	assert.Equal(t, 0.0, record.OverallProgress, "failed attempt does not advance completion")

	record, err = tracker.RecordQuizAttempt(1, 5, 10, 200, 40, false, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, record.TotalAttempts)
	assert.Equal(t, 40.0, record.LastScore)
	assert.Equal(t, 60.0, record.BestScore, "best score only improves")

	record, err = tracker.RecordQuizAttempt(1, 5, 10, 200, 90, true, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, record.TotalAttempts)
	assert.Equal(t, 90.0, record.BestScore)
	assert.Equal(t, 50.0, record.OverallProgress, "passed quiz counts toward completion")
}

func TestReset(t *testing.T) {
	tracker, db := newTestTracker(t)

	_, err := tracker.RecordQuizAttempt(1, 5, 10, 200, 90, true, 1)
	require.NoError(t, err)

	record, err := tracker.Get(1, 10)
	require.NoError(t, err)
	require.True(t, record.IsComplete)

	require.NoError(t, tracker.Reset(1, 10, 99))

	record, err = tracker.Get(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, record.TotalAttempts)
	assert.Equal(t, 0.0, record.BestScore)
	assert.Equal(t, 0.0, record.OverallProgress)
	assert.False(t, record.IsComplete)
	assert.Nil(t, record.CompletedAt)

	var active int64
	db.Model(&courseModels.BlockCompletion{}).
		Where("user_id = ? AND module_id = ? AND is_deleted = ?", 1, 10, false).
		Count(&active)
	assert.Zero(t, active)
}

func TestResetUnknownRecord(t *testing.T) {
	tracker, _ := newTestTracker(t)
	assert.ErrorIs(t, tracker.Reset(1, 10, 99), ErrNotFound)
}
