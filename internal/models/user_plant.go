package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPlant is one plant owned by a user. StreakDays counts consecutive UTC
// days with a care event; LastCareAt is the last such event.
type UserPlant struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	PlantID       *uuid.UUID     `gorm:"type:uuid;index" json:"plant_id,omitempty"`
	Nickname      string         `gorm:"size:100;not null" json:"nickname"`
	Location      string         `gorm:"size:100" json:"location"`
	Notes         string         `gorm:"type:text" json:"notes"`
	ImageURL      string         `gorm:"type:text" json:"image_url"`
	AcquiredAt    *time.Time     `json:"acquired_at,omitempty"`
	LastWateredAt *time.Time     `json:"last_watered_at,omitempty"`
	LastRepotAt   *time.Time     `json:"last_repot_at,omitempty"`
	LastCareAt    *time.Time     `json:"last_care_at,omitempty"`
	StreakDays    int            `gorm:"not null;default:0" json:"streak_days"`
	HealthStatus  string         `gorm:"size:30;default:'unknown'" json:"health_status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Plant         *Plant         `gorm:"foreignKey:PlantID" json:"plant,omitempty"`
}

func (UserPlant) TableName() string {
	return "user_plant_instances"
}
