package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is the append-only experience award ledger. Rows are never
// updated; the user's point total can be rebuilt by summing Points.
type ActivityLog struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_activity_user_action,priority:1" json:"user_id"`
	ActionType      string     `gorm:"size:50;not null;index:idx_activity_user_action,priority:2" json:"action_type"`
	Points          int        `gorm:"not null;check:points > 0" json:"points"`
	RelatedEntityID *uuid.UUID `gorm:"type:uuid;index" json:"related_entity_id,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;index" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}
