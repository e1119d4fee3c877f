package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/google/uuid"
)

// CollectionService manages the plants a user owns and the care events
// logged against them.
type CollectionService struct {
	users      UserRepository
	plants     PlantRepository
	collection CollectionRepository
	limits     Limits
	awards     Awarder
	now        func() time.Time
}

func NewCollectionService(users UserRepository, plants PlantRepository, collection CollectionRepository, limits Limits, awards Awarder) *CollectionService {
	return &CollectionService{
		users:      users,
		plants:     plants,
		collection: collection,
		limits:     limits,
		awards:     awards,
		now:        time.Now,
	}
}

func (s *CollectionService) List(ctx context.Context, userID uuid.UUID) ([]models.UserPlant, error) {
	plants, err := s.collection.ListUserPlants(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plants == nil {
		plants = []models.UserPlant{}
	}
	return plants, nil
}

func (s *CollectionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.UserPlant, error) {
	return loadUserPlant(ctx, s.collection, userID, id)
}

// Add puts a plant into the user's collection. Free accounts are capped;
// a denial comes back as *entitlement.DeniedError.
func (s *CollectionService) Add(ctx context.Context, userID uuid.UUID, req *dto.AddPlantRequest) (*models.UserPlant, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	decision, err := s.limits.CanAddPlant(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	up := &models.UserPlant{
		UserID:       userID,
		Nickname:     strings.TrimSpace(req.Nickname),
		Location:     strings.TrimSpace(req.Location),
		Notes:        req.Notes,
		ImageURL:     req.ImageURL,
		AcquiredAt:   req.AcquiredAt,
		HealthStatus: "unknown",
	}
	if req.PlantID != nil {
		plant, err := s.plants.GetPlant(ctx, *req.PlantID)
		if err != nil {
			return nil, notFoundAs(err, ErrPlantNotFound)
		}
		up.PlantID = &plant.ID
		up.Plant = plant
		if up.Nickname == "" {
			up.Nickname = plant.CommonName
		}
	}
	if up.Nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required when no catalog plant is given", ErrInvalidInput)
	}

	if err := s.collection.CreateUserPlant(ctx, up); err != nil {
		return nil, fmt.Errorf("failed to add plant: %w", err)
	}
	return up, nil
}

func (s *CollectionService) Update(ctx context.Context, userID, id uuid.UUID, req *dto.UpdatePlantRequest) (*models.UserPlant, error) {
	upd := store.UserPlantUpdate{
		Nickname:   trimmed(req.Nickname),
		Location:   trimmed(req.Location),
		Notes:      req.Notes,
		ImageURL:   req.ImageURL,
		AcquiredAt: req.AcquiredAt,
	}
	if upd.Nickname != nil && *upd.Nickname == "" {
		return nil, fmt.Errorf("%w: nickname cannot be blank", ErrInvalidInput)
	}
	up, err := s.collection.UpdateUserPlant(ctx, userID, id, upd)
	if err != nil {
		return nil, notFoundAs(err, ErrUserPlantNotFound)
	}
	return up, nil
}

func (s *CollectionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.collection.DeleteUserPlant(ctx, userID, id); err != nil {
		return notFoundAs(err, ErrUserPlantNotFound)
	}
	return nil
}

// Water stamps last_watered_at, awards watering and advances the streak.
func (s *CollectionService) Water(ctx context.Context, userID, id uuid.UUID) (*dto.CareResponse, error) {
	up, err := loadUserPlant(ctx, s.collection, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.collection.TouchCare(ctx, up.ID, "last_watered_at", s.now().UTC()); err != nil {
		return nil, err
	}
	award, err := s.awards.Award(ctx, userID, gamification.ActionWatering, &up.ID)
	if err != nil {
		return nil, engineErr(err)
	}
	return s.finishCare(ctx, userID, up.ID, award)
}

// Repot stamps last_repot_at. Only the user's first repot ever is
// rewarded.
func (s *CollectionService) Repot(ctx context.Context, userID, id uuid.UUID) (*dto.CareResponse, error) {
	up, err := loadUserPlant(ctx, s.collection, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.collection.TouchCare(ctx, up.ID, "last_repot_at", s.now().UTC()); err != nil {
		return nil, err
	}
	award, err := s.awards.AwardOnce(ctx, userID, gamification.ActionFirstRepot, nil, nil)
	if err != nil {
		return nil, engineErr(err)
	}
	return s.finishCare(ctx, userID, up.ID, award)
}

// Checkin records a daily photo of the plant. The award is paid once per
// plant per UTC day.
func (s *CollectionService) Checkin(ctx context.Context, userID, id uuid.UUID, req *dto.CheckinRequest) (*dto.CareResponse, error) {
	up, err := loadUserPlant(ctx, s.collection, userID, id)
	if err != nil {
		return nil, err
	}
	if req != nil && req.ImageURL != "" {
		if _, err := s.collection.UpdateUserPlant(ctx, userID, up.ID, store.UserPlantUpdate{ImageURL: &req.ImageURL}); err != nil {
			return nil, notFoundAs(err, ErrUserPlantNotFound)
		}
	}
	since := gamification.StartOfUTCDay(s.now())
	award, err := s.awards.AwardOnce(ctx, userID, gamification.ActionDailyCheckin, &up.ID, &since)
	if err != nil {
		return nil, engineErr(err)
	}
	return s.finishCare(ctx, userID, up.ID, award)
}

func (s *CollectionService) finishCare(ctx context.Context, userID, id uuid.UUID, award *gamification.AwardResult) (*dto.CareResponse, error) {
	streak, err := s.awards.UpdateStreak(ctx, id)
	if err != nil {
		return nil, engineErr(err)
	}
	up, err := loadUserPlant(ctx, s.collection, userID, id)
	if err != nil {
		return nil, err
	}
	return &dto.CareResponse{Plant: up, Award: award, Streak: streak}, nil
}
