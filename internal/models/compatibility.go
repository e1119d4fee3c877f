package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Compatibility is an AI assessment of keeping two catalog plants together.
type Compatibility struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	PlantAID   uuid.UUID      `gorm:"type:uuid;not null" json:"plant_a_id"`
	PlantBID   uuid.UUID      `gorm:"type:uuid;not null" json:"plant_b_id"`
	Score      int            `gorm:"check:score >= 0 AND score <= 100" json:"score"`
	Compatible bool           `json:"compatible"`
	Summary    string         `gorm:"type:text" json:"summary"`
	LightMatch string         `gorm:"size:255" json:"light_match"`
	WaterMatch string         `gorm:"size:255" json:"water_match"`
	Tips       datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"tips"`
	CreatedAt  time.Time      `json:"created_at"`
	PlantA     *Plant         `gorm:"foreignKey:PlantAID" json:"plant_a,omitempty"`
	PlantB     *Plant         `gorm:"foreignKey:PlantBID" json:"plant_b,omitempty"`
}

func (Compatibility) TableName() string {
	return "compatibilities"
}
