package controllers

import (
	"medtrain/database"
	"medtrain/services/audit"
	"medtrain/services/coursegrade"
	"medtrain/services/events"
	"medtrain/services/ledger"
	"medtrain/services/lifecycle"
	"medtrain/services/progress"
)

// Service singletons used by the course controllers, wired once at
// startup after the database connection is established.
var (
	Audit   audit.Recorder
	Ledger  *ledger.Service
	Tracker *progress.Tracker
	Machine *lifecycle.Machine
	Grades  *coursegrade.Service
	Bus     *events.Bus
)

// InitServices builds the service graph over the global database
// connection and registers the standard change handlers.
func InitServices() {
	db := database.Database.Db

	Audit = audit.NewGormRecorder(db)
	Ledger = ledger.NewService(db, Audit)
	Tracker = progress.NewTracker(db, Audit)
	Machine = lifecycle.NewMachine(db, Audit, Tracker, Ledger)
	Grades = coursegrade.NewService(db, Ledger)

	Bus = events.NewBus()
	events.Register(Bus, db, Grades, Machine)
}
