package models

import (
	"time"

	"github.com/google/uuid"
)

// UserBadge marks a one-time achievement held by a user.
type UserBadge struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_user_badge" json:"user_id"`
	Badge     string    `gorm:"size:50;not null;uniqueIndex:idx_user_badges_user_badge" json:"badge"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
