package coursegrade

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
)

func newTestService(t *testing.T) (*Service, *ledger.Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.GradeRecord{},
		&courseModels.CourseGradeSnapshot{},
	))

	ledgerSvc := ledger.NewService(db, audit.NopRecorder{})
	return NewService(db, ledgerSvc), ledgerSvc, db
}

func seedCourse(t *testing.T, db *gorm.DB) (courseModels.Course, []courseModels.Module) {
	course := courseModels.Course{Title: "Infection Control", MinOverallScore: 70}
	require.NoError(t, db.Create(&course).Error)

	modules := []courseModels.Module{
		{CourseID: course.ID, Title: "Hand Hygiene", Weight: 60, IsCritical: true, PassingScore: 70},
		{CourseID: course.ID, Title: "PPE", Weight: 40, IsCritical: true, PassingScore: 70},
	}
	for i := range modules {
		require.NoError(t, db.Create(&modules[i]).Error)
	}
	return course, modules
}

func TestCalculate(t *testing.T) {
	svc, ledgerSvc, db := newTestService(t)
	course, modules := seedCourse(t, db)

	_, err := ledgerSvc.EnterGrade(1, modules[0].ID, 90, 70, 99, "")
	require.NoError(t, err)
	_, err = ledgerSvc.EnterGrade(1, modules[1].ID, 50, 70, 99, "")
	require.NoError(t, err)

	calc, err := svc.Calculate(1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 74.0, calc.OverallScore)
	assert.False(t, calc.AllCriticalPassed)
	assert.False(t, calc.OverallPassed)
	assert.True(t, calc.IsComplete)
}

func TestCalculateUsesCurrentGradeAfterCorrection(t *testing.T) {
	svc, ledgerSvc, db := newTestService(t)
	course, modules := seedCourse(t, db)

	original, err := ledgerSvc.EnterGrade(1, modules[1].ID, 50, 70, 99, "")
	require.NoError(t, err)
	_, err = ledgerSvc.EnterGrade(1, modules[0].ID, 90, 70, 99, "")
	require.NoError(t, err)
	_, err = ledgerSvc.CorrectGrade(original.ID, 80, 70, "regrade", 99, "")
	require.NoError(t, err)

	calc, err := svc.Calculate(1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 86.0, calc.OverallScore) // 90*0.6 + 80*0.4
	assert.True(t, calc.AllCriticalPassed)
	assert.True(t, calc.OverallPassed)
}

func TestCalculateUngradedModules(t *testing.T) {
	svc, ledgerSvc, db := newTestService(t)
	course, modules := seedCourse(t, db)

	_, err := ledgerSvc.EnterGrade(1, modules[0].ID, 90, 70, 99, "")
	require.NoError(t, err)

	calc, err := svc.Calculate(1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 54.0, calc.OverallScore)
	assert.Equal(t, 1, calc.GradedModules)
	assert.Equal(t, 50.0, calc.CompletionPercent)
	assert.False(t, calc.IsComplete)
}

func TestCalculateUnknownCourse(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Calculate(1, 12345)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestSnapshotUpserts(t *testing.T) {
	svc, ledgerSvc, db := newTestService(t)
	course, modules := seedCourse(t, db)

	_, err := ledgerSvc.EnterGrade(1, modules[0].ID, 90, 70, 99, "")
	require.NoError(t, err)

	_, err = svc.Snapshot(1, course.ID)
	require.NoError(t, err)
	_, err = svc.Snapshot(1, course.ID)
	require.NoError(t, err)

	var count int64
	db.Model(&courseModels.CourseGradeSnapshot{}).
		Where("user_id = ? AND course_id = ?", 1, course.ID).Count(&count)
	assert.Equal(t, int64(1), count, "recomputation upserts, never duplicates")

	var snapshot courseModels.CourseGradeSnapshot
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&snapshot).Error)
	assert.Equal(t, 54.0, snapshot.OverallScore)
	assert.NotEmpty(t, snapshot.Breakdown)
}
