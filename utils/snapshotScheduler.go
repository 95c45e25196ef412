package utils

import (
	"log"

	"github.com/robfig/cron/v3"

	"medtrain/config"
	"medtrain/database"
	courseModels "medtrain/models/course"
	"medtrain/services/coursegrade"
)

// InitializeSnapshotScheduler sets up the nightly course grade snapshot
// recompute. Snapshots are also refreshed on every grade change; the
// job reconciles anything a missed event left stale.
func InitializeSnapshotScheduler(grades *coursegrade.Service) {
	log.Println("[SNAPSHOT-SCHEDULER] Initializing snapshot scheduler...")

	c := cron.New()

	_, err := c.AddFunc(config.AppConfig.SnapshotCronSpec, func() {
		log.Println("[SNAPSHOT-SCHEDULER] Running snapshot recompute...")
		RecomputeAllSnapshots(grades)
	})
	if err != nil {
		log.Printf("[SNAPSHOT-SCHEDULER] Invalid cron spec %q: %v", config.AppConfig.SnapshotCronSpec, err)
		return
	}

	c.Start()
	log.Printf("[SNAPSHOT-SCHEDULER] Snapshot scheduler started - spec %q", config.AppConfig.SnapshotCronSpec)
}

// RecomputeAllSnapshots recalculates the course grade snapshot for
// every live enrollment.
func RecomputeAllSnapshots(grades *coursegrade.Service) {
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("is_deleted = ?", false).Find(&enrollments).Error; err != nil {
		log.Printf("[SNAPSHOT-SCHEDULER] Error fetching enrollments: %v", err)
		return
	}

	refreshed := 0
	for _, enrollment := range enrollments {
		if _, err := grades.Snapshot(enrollment.UserID, enrollment.CourseID); err != nil {
			log.Printf("[SNAPSHOT-SCHEDULER] Error refreshing snapshot for user %d course %d: %v",
				enrollment.UserID, enrollment.CourseID, err)
			continue
		}
		refreshed++
	}

	log.Printf("[SNAPSHOT-SCHEDULER] Refreshed %d of %d snapshots", refreshed, len(enrollments))
}
