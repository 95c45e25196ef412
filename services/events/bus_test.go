package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	courseModels "medtrain/models/course"
	"medtrain/services/audit"
	"medtrain/services/coursegrade"
	"medtrain/services/ledger"
	"medtrain/services/lifecycle"
	"medtrain/services/progress"
)

func TestBusDispatchOrder(t *testing.T) {
	bus := NewBus()
	var calls []string

	bus.Subscribe(KindGradeRecord, func(Change) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe(KindGradeRecord, func(Change) error {
		calls = append(calls, "second")
		return nil
	})
	bus.Subscribe(KindProgress, func(Change) error {
		calls = append(calls, "other-kind")
		return nil
	})

	bus.Publish(Change{Kind: KindGradeRecord})
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	ran := false

	bus.Subscribe(KindProgress, func(Change) error { return errors.New("boom") })
	bus.Subscribe(KindProgress, func(Change) error {
		ran = true
		return nil
	})

	bus.Publish(Change{Kind: KindProgress})
	assert.True(t, ran)
}

func newHandlerFixture(t *testing.T) (*Bus, *gorm.DB, *ledger.Service, *lifecycle.Machine) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Enrollment{},
		&courseModels.ModuleProgress{},
		&courseModels.BlockCompletion{},
		&courseModels.QuizAttempt{},
		&courseModels.GradeRecord{},
		&courseModels.CourseGradeSnapshot{},
		&courseModels.RemediationRequest{},
	))

	recorder := audit.NopRecorder{}
	ledgerSvc := ledger.NewService(db, recorder)
	tracker := progress.NewTracker(db, recorder)
	machine := lifecycle.NewMachine(db, recorder, tracker, ledgerSvc)
	grades := coursegrade.NewService(db, ledgerSvc)

	bus := NewBus()
	Register(bus, db, grades, machine)
	return bus, db, ledgerSvc, machine
}

func TestGradeRecordHandlerRefreshesSnapshot(t *testing.T) {
	bus, db, ledgerSvc, _ := newHandlerFixture(t)

	course := courseModels.Course{Title: "Medication Safety", MinOverallScore: 70}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Weight: 100, PassingScore: 70}
	require.NoError(t, db.Create(&module).Error)

	record, err := ledgerSvc.EnterGrade(1, module.ID, 90, 70, 99, "")
	require.NoError(t, err)

	change := Change{Kind: KindGradeRecord, After: record}
	bus.Publish(change)
	// Redelivery of the same change must not duplicate anything.
	bus.Publish(change)

	var count int64
	db.Model(&courseModels.CourseGradeSnapshot{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var snapshot courseModels.CourseGradeSnapshot
	require.NoError(t, db.First(&snapshot).Error)
	assert.Equal(t, 90.0, snapshot.OverallScore)
}

func TestProgressHandlerDrivesEnrollment(t *testing.T) {
	bus, db, _, _ := newHandlerFixture(t)

	course := courseModels.Course{Title: "Fire Safety"}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Weight: 100}
	require.NoError(t, db.Create(&module).Error)
	enrollment := courseModels.Enrollment{UserID: 1, CourseID: course.ID, Status: courseModels.StatusNotStarted}
	require.NoError(t, db.Create(&enrollment).Error)

	after := &courseModels.ModuleProgress{
		UserID: 1, CourseID: course.ID, ModuleID: module.ID,
		OverallProgress: 50,
	}
	require.NoError(t, db.Create(after).Error)

	bus.Publish(Change{Kind: KindProgress, After: after})

	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, courseModels.StatusInProgress, reloaded.Status, "partial module progress starts the enrollment")

	// Module completes: course progress crosses 100.
	after.OverallProgress = 100
	after.IsComplete = true
	require.NoError(t, db.Save(after).Error)

	before := &courseModels.ModuleProgress{OverallProgress: 50}
	bus.Publish(Change{Kind: KindProgress, Before: before, After: after})

	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, courseModels.StatusCompleted, reloaded.Status)
}

func TestProgressHandlerIgnoresNoOpDelta(t *testing.T) {
	bus, db, _, _ := newHandlerFixture(t)

	course := courseModels.Course{Title: "Fire Safety"}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID}
	require.NoError(t, db.Create(&module).Error)
	enrollment := courseModels.Enrollment{UserID: 1, CourseID: course.ID, Status: courseModels.StatusNotStarted}
	require.NoError(t, db.Create(&enrollment).Error)

	snapshot := &courseModels.ModuleProgress{
		UserID: 1, CourseID: course.ID, ModuleID: module.ID,
		OverallProgress: 50,
	}
	require.NoError(t, db.Create(snapshot).Error)

	// Before == after: redelivered change with no delta is skipped.
	bus.Publish(Change{Kind: KindProgress, Before: snapshot, After: snapshot})

	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, courseModels.StatusNotStarted, reloaded.Status)
}
