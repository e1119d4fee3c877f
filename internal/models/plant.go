package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plant is a catalog species entry shared by all users. Scientific names are
// unique among live rows only, so a deleted species can be added again.
type Plant struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CommonName     string         `gorm:"size:150;not null;index" json:"common_name"`
	ScientificName string         `gorm:"size:200;not null;uniqueIndex:idx_plants_scientific_name_live,where:deleted_at IS NULL" json:"scientific_name"`
	Family         string         `gorm:"size:120" json:"family"`
	Category       string         `gorm:"size:50;index" json:"category"`
	Description    string         `gorm:"type:text" json:"description"`
	ImageURL       string         `gorm:"type:text" json:"image_url"`
	Light          string         `gorm:"size:255" json:"light"`
	Water          string         `gorm:"size:255" json:"water"`
	Humidity       string         `gorm:"size:255" json:"humidity"`
	Temperature    string         `gorm:"size:255" json:"temperature"`
	Soil           string         `gorm:"size:255" json:"soil"`
	Toxicity       string         `gorm:"size:255" json:"toxicity"`
	Difficulty     string         `gorm:"size:20;default:'medium'" json:"difficulty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Plant) TableName() string {
	return "plants"
}
