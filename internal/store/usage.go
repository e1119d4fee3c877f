package store

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/entitlement"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

var _ entitlement.Usage = (*Store)(nil)

func (s *Store) CountOwnedPlants(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.UserPlant{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (s *Store) CountDiagnosesSince(ctx context.Context, userPlantID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Diagnosis{}).
		Where("user_plant_id = ? AND created_at >= ?", userPlantID, since).
		Count(&n).Error
	return n, err
}

func (s *Store) CountUserChatsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("user_id = ? AND role = ? AND created_at >= ?", userID, models.ChatRoleUser, since).
		Count(&n).Error
	return n, err
}
