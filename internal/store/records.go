package store

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateDiagnosis(ctx context.Context, d *models.Diagnosis) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *Store) ListDiagnoses(ctx context.Context, userID, userPlantID uuid.UUID) ([]models.Diagnosis, error) {
	var out []models.Diagnosis
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND user_plant_id = ?", userID, userPlantID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *Store) AppendChat(ctx context.Context, msgs ...*models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(msgs).Error
}

// ChatHistory returns the latest limit messages in chronological order.
func (s *Store) ChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Store) CreateCompatibility(ctx context.Context, c *models.Compatibility) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) ListCompatibilities(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.Compatibility, int64, error) {
	var (
		out   []models.Compatibility
		total int64
	)
	q := s.db.WithContext(ctx).Model(&models.Compatibility{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("PlantA").Preload("PlantB").
		Order("created_at DESC").
		Offset(offset(page, perPage)).
		Limit(perPage).
		Find(&out).Error
	return out, total, err
}
