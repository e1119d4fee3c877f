package store

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDuplicatePlant = errors.New("a plant with this scientific name already exists")

// PlantFilter selects a page of the catalog. Sort must be one of the keys of
// plantSorts; anything else falls back to name order.
type PlantFilter struct {
	Page     int
	PerPage  int
	Search   string
	Category string
	Sort     string
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

var plantSorts = map[string]string{
	"name":        "common_name ASC",
	"-name":       "common_name DESC",
	"scientific":  "scientific_name ASC",
	"newest":      "created_at DESC",
	"oldest":      "created_at ASC",
	"difficulty":  "difficulty ASC",
	"-difficulty": "difficulty DESC",
}

// Normalize clamps paging and whitelists the sort key.
func (f PlantFilter) Normalize() PlantFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	if _, ok := plantSorts[f.Sort]; !ok {
		f.Sort = "name"
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

func (f PlantFilter) orderBy() string {
	return plantSorts[f.Normalize().Sort]
}

// likePattern escapes LIKE wildcards so user input only matches literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (s *Store) ListPlants(ctx context.Context, f PlantFilter) ([]models.Plant, int64, error) {
	f = f.Normalize()
	q := s.db.WithContext(ctx).Model(&models.Plant{})
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("common_name ILIKE ? OR scientific_name ILIKE ? OR family ILIKE ?", p, p, p)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var plants []models.Plant
	err := q.Order(f.orderBy()).
		Offset(offset(f.Page, f.PerPage)).
		Limit(f.PerPage).
		Find(&plants).Error
	return plants, total, err
}

func (s *Store) GetPlant(ctx context.Context, id uuid.UUID) (*models.Plant, error) {
	var plant models.Plant
	if err := s.db.WithContext(ctx).First(&plant, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return &plant, nil
}

func (s *Store) CreatePlant(ctx context.Context, plant *models.Plant) error {
	err := s.db.WithContext(ctx).Create(plant).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePlant
	}
	return err
}

// liveRows matches the partial unique index on plants.scientific_name.
var liveRows = clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "deleted_at IS NULL"}}}

// EnsurePlant returns the live catalog entry with the plant's scientific
// name, inserting the given plant when none exists. created reports the
// insert. A soft-deleted entry does not count as existing.
func (s *Store) EnsurePlant(ctx context.Context, plant *models.Plant) (*models.Plant, bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "scientific_name"}},
			TargetWhere: liveRows,
			DoNothing:   true,
		}).
		Create(plant)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return plant, true, nil
	}
	var existing models.Plant
	err := s.db.WithContext(ctx).
		Where("scientific_name = ?", plant.ScientificName).
		First(&existing).Error
	if err != nil {
		return nil, false, notFound(err, ErrNotFound)
	}
	return &existing, false, nil
}

func (s *Store) UpdatePlant(ctx context.Context, plant *models.Plant) error {
	res := s.db.WithContext(ctx).Model(plant).
		Select("common_name", "scientific_name", "family", "category", "description", "image_url",
			"light", "water", "humidity", "temperature", "soil", "toxicity", "difficulty").
		Updates(plant)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePlant
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeletePlant(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Plant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
