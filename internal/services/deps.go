package services

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/entitlement"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPlantNotFound     = errors.New("plant not found")
	ErrUserPlantNotFound = errors.New("plant not found in your collection")
	ErrInvalidInput      = errors.New("invalid input")
)

var (
	_ Awarder   = (*gamification.Service)(nil)
	_ Limits    = (*entitlement.Checker)(nil)
	_ Inference = (*ai.Client)(nil)
	_ JSONCache = (*cache.Cache)(nil)

	_ UserRepository          = (*store.Store)(nil)
	_ PlantRepository         = (*store.Store)(nil)
	_ CollectionRepository    = (*store.Store)(nil)
	_ DiagnosisRepository     = (*store.Store)(nil)
	_ ChatRepository          = (*store.Store)(nil)
	_ CompatibilityRepository = (*store.Store)(nil)
)

// Awarder is the points and streak engine.
type Awarder interface {
	Award(ctx context.Context, userID uuid.UUID, action gamification.ActionType, relatedID *uuid.UUID) (*gamification.AwardResult, error)
	AwardOnce(ctx context.Context, userID uuid.UUID, action gamification.ActionType, relatedID *uuid.UUID, since *time.Time) (*gamification.AwardResult, error)
	UpdateStreak(ctx context.Context, userPlantID uuid.UUID) (*gamification.StreakResult, error)
}

// Limits evaluates the freemium ceilings.
type Limits interface {
	IsPremium(user *models.User) bool
	CanAddPlant(ctx context.Context, user *models.User) (entitlement.Decision, error)
	CanDiagnose(ctx context.Context, user *models.User, userPlantID uuid.UUID) (entitlement.Decision, error)
	CanChat(ctx context.Context, user *models.User) (entitlement.Decision, error)
}

// Inference is the hosted model.
type Inference interface {
	Identify(ctx context.Context, img ai.Image) (*ai.Identification, error)
	Diagnose(ctx context.Context, img ai.Image, plantName string) (*ai.DiagnosisResult, error)
	Compatibility(ctx context.Context, a, b ai.PlantProfile) (*ai.CompatibilityResult, error)
	Chat(ctx context.Context, history []ai.ChatTurn, message string) (string, error)
}

// JSONCache is satisfied by *cache.Cache; a nil *cache.Cache always misses.
type JSONCache interface {
	Get(ctx context.Context, namespace, key string, result any) (bool, error)
	Set(ctx context.Context, namespace, key string, value any) error
	Invalidate(ctx context.Context, namespace, key string) error
}

type UserRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uuid.UUID, upd store.ProfileUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	ListActivity(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.ActivityLog, int64, error)
	ListBadges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error)
}

type PlantRepository interface {
	ListPlants(ctx context.Context, f store.PlantFilter) ([]models.Plant, int64, error)
	GetPlant(ctx context.Context, id uuid.UUID) (*models.Plant, error)
	CreatePlant(ctx context.Context, plant *models.Plant) error
	EnsurePlant(ctx context.Context, plant *models.Plant) (*models.Plant, bool, error)
	UpdatePlant(ctx context.Context, plant *models.Plant) error
	DeletePlant(ctx context.Context, id uuid.UUID) error
}

type CollectionRepository interface {
	ListUserPlants(ctx context.Context, userID uuid.UUID) ([]models.UserPlant, error)
	GetUserPlant(ctx context.Context, userID, id uuid.UUID) (*models.UserPlant, error)
	CreateUserPlant(ctx context.Context, up *models.UserPlant) error
	UpdateUserPlant(ctx context.Context, userID, id uuid.UUID, upd store.UserPlantUpdate) (*models.UserPlant, error)
	DeleteUserPlant(ctx context.Context, userID, id uuid.UUID) error
	TouchCare(ctx context.Context, id uuid.UUID, column string, at time.Time) error
	SetHealthStatus(ctx context.Context, id uuid.UUID, status string) error
}

type DiagnosisRepository interface {
	CreateDiagnosis(ctx context.Context, d *models.Diagnosis) error
	ListDiagnoses(ctx context.Context, userID, userPlantID uuid.UUID) ([]models.Diagnosis, error)
}

type ChatRepository interface {
	AppendChat(ctx context.Context, msgs ...*models.ChatMessage) error
	ChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type CompatibilityRepository interface {
	CreateCompatibility(ctx context.Context, c *models.Compatibility) error
	ListCompatibilities(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.Compatibility, int64, error)
}

type userGetter interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func loadUser(ctx context.Context, users userGetter, id uuid.UUID) (*models.User, error) {
	user, err := users.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return user, nil
}

func loadUserPlant(ctx context.Context, repo CollectionRepository, userID, id uuid.UUID) (*models.UserPlant, error) {
	up, err := repo.GetUserPlant(ctx, userID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrUserPlantNotFound)
	}
	return up, nil
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, store.ErrNotFound) {
		return sentinel
	}
	return err
}

// engineErr maps the points engine's lookups onto the service sentinels.
func engineErr(err error) error {
	switch {
	case errors.Is(err, gamification.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, gamification.ErrUserPlantNotFound):
		return ErrUserPlantNotFound
	}
	return err
}
