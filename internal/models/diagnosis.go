package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Diagnosis stores one AI health check of an owned plant.
type Diagnosis struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	UserPlantID uuid.UUID      `gorm:"type:uuid;not null;index:idx_diagnoses_plant_created,priority:1" json:"user_plant_id"`
	Healthy     bool           `json:"healthy"`
	HealthScore int            `gorm:"check:health_score >= 0 AND health_score <= 100" json:"health_score"`
	Issues      datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"issues"`
	Treatment   string         `gorm:"type:text" json:"treatment"`
	Prevention  string         `gorm:"type:text" json:"prevention"`
	ImageHash   string         `gorm:"size:64" json:"-"`
	CreatedAt   time.Time      `gorm:"index:idx_diagnoses_plant_created,priority:2" json:"created_at"`
}

func (Diagnosis) TableName() string {
	return "diagnoses"
}
