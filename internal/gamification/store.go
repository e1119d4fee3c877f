package gamification

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserPlantNotFound = errors.New("plant not found in collection")
)

// Store is the persistence the engine needs. Implementations must make
// LockUser and LockUserPlant hold their row until the surrounding Tx ends.
type Store interface {
	// Tx runs fn in a single transaction. The Store passed to fn is bound
	// to that transaction; returning an error rolls everything back.
	Tx(ctx context.Context, fn func(tx Store) error) error

	LockUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	SetPoints(ctx context.Context, userID uuid.UUID, total, level int) error
	AppendActivity(ctx context.Context, entry *models.ActivityLog) error
	SumActivity(ctx context.Context, userID uuid.UUID) (int, error)
	// HasActivity reports whether a matching award exists. relatedID and
	// since are optional filters.
	HasActivity(ctx context.Context, userID uuid.UUID, action ActionType, relatedID *uuid.UUID, since *time.Time) (bool, error)

	LockUserPlant(ctx context.Context, id uuid.UUID) (*models.UserPlant, error)
	SaveStreak(ctx context.Context, id uuid.UUID, streak int, careAt time.Time) error
	// GrantBadge returns false when the user already holds the badge.
	GrantBadge(ctx context.Context, userID uuid.UUID, badge string) (bool, error)
}
