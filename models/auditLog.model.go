package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of every state-changing action.
// Rows are only ever inserted; nothing in the system reads them to make
// decisions, they exist for compliance display and export.
type AuditLog struct {
	gorm.Model
	ActorID    uint           `json:"actor_id" gorm:"index"`
	ActorName  string         `json:"actor_name"`
	ActionType string         `json:"action_type" gorm:"index;not null"`
	TargetID   string         `json:"target_id" gorm:"index"`
	Details    string         `json:"details" gorm:"type:text"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   datatypes.JSON `json:"metadata"`
}
