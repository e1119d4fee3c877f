package gamification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/metrics"
	"github.com/google/uuid"
)

// StreakResult is the outcome of a care event on an owned plant.
type StreakResult struct {
	UserPlantID uuid.UUID      `json:"user_plant_id"`
	Streak      int            `json:"streak"`
	Changed     bool           `json:"changed"`
	Bonuses     []*AwardResult `json:"bonuses,omitempty"`
}

// UpdateStreak records a care event on the owned plant. Days are UTC
// calendar days. Bonuses fire only on the exact 7th and 30th day and only
// if the owner does not hold the matching badge yet.
func (s *Service) UpdateStreak(ctx context.Context, userPlantID uuid.UUID) (*StreakResult, error) {
	now := s.now().UTC()
	result := &StreakResult{UserPlantID: userPlantID}

	err := s.store.Tx(ctx, func(tx Store) error {
		up, err := tx.LockUserPlant(ctx, userPlantID)
		if err != nil {
			return err
		}

		next, changed := nextStreak(up.StreakDays, up.LastCareAt, now)
		result.Streak = next
		result.Changed = changed
		if !changed {
			return nil
		}

		if err := tx.SaveStreak(ctx, userPlantID, next, now); err != nil {
			return fmt.Errorf("failed to save streak: %w", err)
		}

		for _, b := range streakBonuses {
			if next != b.days {
				continue
			}
			granted, err := tx.GrantBadge(ctx, up.UserID, b.badge)
			if err != nil {
				return fmt.Errorf("failed to grant badge %s: %w", b.badge, err)
			}
			if !granted {
				continue
			}
			points, _ := b.action.Points()
			award, err := s.award(ctx, tx, up.UserID, points, b.action, &userPlantID)
			if err != nil {
				return err
			}
			result.Bonuses = append(result.Bonuses, award)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, b := range result.Bonuses {
		metrics.StreakBonuses.WithLabelValues(string(b.Action)).Inc()
		if b.Entry != nil {
			s.observe(b.Entry.UserID, b)
		}
	}
	if result.Changed {
		slog.Info("streak updated", "plant_id", userPlantID.String(), "streak", result.Streak, "bonuses", len(result.Bonuses))
	}
	return result, nil
}

// nextStreak applies the day-transition rule. The bool is false when the
// event falls on the same UTC day as the last one and nothing changes.
func nextStreak(current int, lastCare *time.Time, now time.Time) (int, bool) {
	if lastCare == nil {
		return 1, true
	}
	today := utcDay(now)
	last := utcDay(*lastCare)

	switch {
	case !last.Before(today):
		return current, false
	case last.Equal(today.AddDate(0, 0, -1)):
		return current + 1, true
	default:
		return 1, true
	}
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfUTCDay returns midnight UTC of the day containing t.
func StartOfUTCDay(t time.Time) time.Time {
	return utcDay(t)
}
