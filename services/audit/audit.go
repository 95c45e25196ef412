package audit

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"medtrain/models"
)

// ActionType values written by the services
const (
	ActionGradeEntered        = "GRADE_ENTERED"
	ActionGradeCorrected      = "GRADE_CORRECTED"
	ActionBlockCompleted      = "BLOCK_COMPLETED"
	ActionQuizAttempt         = "QUIZ_ATTEMPT"
	ActionProgressReset       = "PROGRESS_RESET"
	ActionStatusChanged       = "ENROLLMENT_STATUS_CHANGED"
	ActionRemediationCreated  = "REMEDIATION_REQUESTED"
	ActionRemediationApproved = "REMEDIATION_APPROVED"
	ActionRemediationDenied   = "REMEDIATION_DENIED"
	ActionCertificateIssued   = "CERTIFICATE_ISSUED"
	ActionEnrolled            = "COURSE_ENROLLED"
	ActionCourseChanged       = "COURSE_CHANGED"
)

// Entry is one audit record: who did what to which target.
type Entry struct {
	ActorID    uint
	ActorName  string
	ActionType string
	TargetID   string
	Details    string
	Metadata   map[string]interface{}
}

// Recorder is the audit log collaborator injected into every service.
// The log is a write-only sink: recording is best-effort and a failed
// write never rolls back the primary state change, so Record does not
// return an error.
type Recorder interface {
	Record(e Entry)
}

// NopRecorder ignores all entries.
type NopRecorder struct{}

func (NopRecorder) Record(Entry) {}

// MemoryRecorder stores entries in memory for tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(e Entry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

func (r *MemoryRecorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, r.entries...)
}

// GormRecorder appends entries to the audit_logs table.
type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) Record(e Entry) {
	if e.ActionType == "" {
		log.Println("[AUDIT] dropped entry with empty action type")
		return
	}

	var metadata []byte
	if e.Metadata != nil {
		var err error
		metadata, err = json.Marshal(e.Metadata)
		if err != nil {
			log.Printf("[AUDIT] failed to marshal metadata for %s: %v", e.ActionType, err)
			metadata = nil
		}
	}

	row := models.AuditLog{
		ActorID:    e.ActorID,
		ActorName:  e.ActorName,
		ActionType: e.ActionType,
		TargetID:   e.TargetID,
		Details:    e.Details,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}

	if err := r.db.Create(&row).Error; err != nil {
		log.Printf("[AUDIT] failed to write %s entry: %v", e.ActionType, err)
	}
}
