package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ gamification.Store = (*Store)(nil)

func (s *Store) Tx(ctx context.Context, fn func(tx gamification.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) LockUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error
	if err != nil {
		return nil, notFound(err, gamification.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) SetPoints(ctx context.Context, userID uuid.UUID, total, level int) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"experience_points": total,
			"level":             level,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gamification.ErrUserNotFound
	}
	return nil
}

func (s *Store) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *Store) SumActivity(ctx context.Context, userID uuid.UUID) (int, error) {
	var sum int
	err := s.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&sum).Error
	return sum, err
}

func (s *Store) HasActivity(ctx context.Context, userID uuid.UUID, action gamification.ActionType, relatedID *uuid.UUID, since *time.Time) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("user_id = ? AND action_type = ?", userID, string(action))
	if relatedID != nil {
		q = q.Where("related_entity_id = ?", *relatedID)
	}
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var count int64
	if err := q.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) LockUserPlant(ctx context.Context, id uuid.UUID) (*models.UserPlant, error) {
	var up models.UserPlant
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&up, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, gamification.ErrUserPlantNotFound)
	}
	return &up, nil
}

func (s *Store) SaveStreak(ctx context.Context, id uuid.UUID, streak int, careAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.UserPlant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"streak_days":  streak,
			"last_care_at": careAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gamification.ErrUserPlantNotFound
	}
	return nil
}

func (s *Store) GrantBadge(ctx context.Context, userID uuid.UUID, badge string) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserBadge{ID: uuid.New(), UserID: userID, Badge: badge})
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert badge: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) ListActivity(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.ActivityLog, int64, error) {
	var (
		entries []models.ActivityLog
		total   int64
	)
	q := s.db.WithContext(ctx).Model(&models.ActivityLog{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset(offset(page, perPage)).
		Limit(perPage).
		Find(&entries).Error
	return entries, total, err
}

func (s *Store) ListBadges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&badges).Error
	return badges, err
}

// AllUserIDs is used by the rebuild-points command.
func (s *Store) AllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.User{}).Pluck("id", &ids).Error
	return ids, err
}
