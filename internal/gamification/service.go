package gamification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

// AwardResult describes a completed award.
type AwardResult struct {
	Action    ActionType          `json:"action"`
	Points    int                 `json:"points"`
	Total     int                 `json:"total"`
	Level     Level               `json:"level"`
	LeveledUp bool                `json:"leveled_up"`
	Entry     *models.ActivityLog `json:"-"`
}

// Service applies awards and streak updates. It must only be called from
// server-side handlers; no route accepts a caller-supplied amount.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// AwardPoints adds amount to the user's total, reclassifies the level and
// appends the award to the activity log, all in one transaction.
func (s *Service) AwardPoints(ctx context.Context, userID uuid.UUID, amount int, action ActionType, relatedID *uuid.UUID) (*AwardResult, error) {
	if err := validateAward(amount, action); err != nil {
		return nil, err
	}

	var result *AwardResult
	err := s.store.Tx(ctx, func(tx Store) error {
		var err error
		result, err = s.award(ctx, tx, userID, amount, action, relatedID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.observe(userID, result)
	return result, nil
}

// Award is AwardPoints with the fixed value of the action.
func (s *Service) Award(ctx context.Context, userID uuid.UUID, action ActionType, relatedID *uuid.UUID) (*AwardResult, error) {
	points, ok := action.Points()
	if !ok {
		return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidAward, action)
	}
	return s.AwardPoints(ctx, userID, points, action, relatedID)
}

// AwardOnce grants the action only if no matching award exists yet. A nil
// since means "ever". It returns nil, nil when the award was already given.
func (s *Service) AwardOnce(ctx context.Context, userID uuid.UUID, action ActionType, relatedID *uuid.UUID, since *time.Time) (*AwardResult, error) {
	points, ok := action.Points()
	if !ok {
		return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidAward, action)
	}

	var result *AwardResult
	err := s.store.Tx(ctx, func(tx Store) error {
		// Lock first so two concurrent requests cannot both see "not yet".
		if _, err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		done, err := tx.HasActivity(ctx, userID, action, relatedID, since)
		if err != nil {
			return fmt.Errorf("failed to check activity: %w", err)
		}
		if done {
			return nil
		}
		result, err = s.award(ctx, tx, userID, points, action, relatedID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result != nil {
		s.observe(userID, result)
	}
	return result, nil
}

// RebuildPoints recomputes the user's total and level from the activity log.
func (s *Service) RebuildPoints(ctx context.Context, userID uuid.UUID) (int, Level, error) {
	var (
		total int
		level Level
	)
	err := s.store.Tx(ctx, func(tx Store) error {
		if _, err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		sum, err := tx.SumActivity(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to sum activity: %w", err)
		}
		level, err = Classify(sum)
		if err != nil {
			return err
		}
		total = sum
		return tx.SetPoints(ctx, userID, total, level.Tier)
	})
	if err != nil {
		return 0, Level{}, err
	}
	slog.Info("points rebuilt", "user_id", userID.String(), "total", total, "tier", level.Tier)
	return total, level, nil
}

func (s *Service) award(ctx context.Context, tx Store, userID uuid.UUID, amount int, action ActionType, relatedID *uuid.UUID) (*AwardResult, error) {
	user, err := tx.LockUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	prev, err := Classify(user.ExperiencePoints)
	if err != nil {
		return nil, fmt.Errorf("stored total for user %s: %w", userID, err)
	}
	total := user.ExperiencePoints + amount
	level := MustClassify(total)

	if err := tx.SetPoints(ctx, userID, total, level.Tier); err != nil {
		return nil, fmt.Errorf("failed to update points: %w", err)
	}

	entry := &models.ActivityLog{
		ID:              uuid.New(),
		UserID:          userID,
		ActionType:      string(action),
		Points:          amount,
		RelatedEntityID: relatedID,
		CreatedAt:       s.now().UTC(),
	}
	if err := tx.AppendActivity(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append activity: %w", err)
	}

	return &AwardResult{
		Action:    action,
		Points:    amount,
		Total:     total,
		Level:     level,
		LeveledUp: level.Tier > prev.Tier,
		Entry:     entry,
	}, nil
}

func (s *Service) observe(userID uuid.UUID, r *AwardResult) {
	metrics.PointsAwarded.WithLabelValues(string(r.Action)).Add(float64(r.Points))
	if r.LeveledUp {
		metrics.LevelUps.Inc()
	}
	slog.Info("points awarded",
		"user_id", userID.String(),
		"action", string(r.Action),
		"points", r.Points,
		"total", r.Total,
		"tier", r.Level.Tier,
		"leveled_up", r.LeveledUp,
	)
}
