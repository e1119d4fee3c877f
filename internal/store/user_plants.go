package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

// UserPlantUpdate holds editable fields of an owned plant.
type UserPlantUpdate struct {
	Nickname   *string
	Location   *string
	Notes      *string
	ImageURL   *string
	AcquiredAt *time.Time
}

func (s *Store) ListUserPlants(ctx context.Context, userID uuid.UUID) ([]models.UserPlant, error) {
	var plants []models.UserPlant
	err := s.db.WithContext(ctx).
		Preload("Plant").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plants).Error
	return plants, err
}

// GetUserPlant only returns the plant when userID owns it.
func (s *Store) GetUserPlant(ctx context.Context, userID, id uuid.UUID) (*models.UserPlant, error) {
	var up models.UserPlant
	err := s.db.WithContext(ctx).
		Preload("Plant").
		Where("id = ? AND user_id = ?", id, userID).
		First(&up).Error
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return &up, nil
}

func (s *Store) CreateUserPlant(ctx context.Context, up *models.UserPlant) error {
	return s.db.WithContext(ctx).Create(up).Error
}

func (s *Store) UpdateUserPlant(ctx context.Context, userID, id uuid.UUID, upd UserPlantUpdate) (*models.UserPlant, error) {
	fields := map[string]interface{}{}
	if upd.Nickname != nil {
		fields["nickname"] = *upd.Nickname
	}
	if upd.Location != nil {
		fields["location"] = *upd.Location
	}
	if upd.Notes != nil {
		fields["notes"] = *upd.Notes
	}
	if upd.ImageURL != nil {
		fields["image_url"] = *upd.ImageURL
	}
	if upd.AcquiredAt != nil {
		fields["acquired_at"] = *upd.AcquiredAt
	}
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&models.UserPlant{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetUserPlant(ctx, userID, id)
}

func (s *Store) DeleteUserPlant(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.UserPlant{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchCare stamps one care column (last_watered_at or last_repot_at).
func (s *Store) TouchCare(ctx context.Context, id uuid.UUID, column string, at time.Time) error {
	switch column {
	case "last_watered_at", "last_repot_at":
	default:
		return fmt.Errorf("store.TouchCare: unknown care column %q", column)
	}
	return s.db.WithContext(ctx).Model(&models.UserPlant{}).
		Where("id = ?", id).
		Update(column, at).Error
}

func (s *Store) SetHealthStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.db.WithContext(ctx).Model(&models.UserPlant{}).
		Where("id = ?", id).
		Update("health_status", status).Error
}
