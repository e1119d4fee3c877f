package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/google/uuid"
)

type ProfileService struct {
	users  UserRepository
	awards Awarder
	limits Limits
}

func NewProfileService(users UserRepository, awards Awarder, limits Limits) *ProfileService {
	return &ProfileService{users: users, awards: awards, limits: limits}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	level, err := gamification.Classify(user.ExperiencePoints)
	if err != nil {
		return nil, err
	}

	plants, err := s.limits.CanAddPlant(ctx, user)
	if err != nil {
		return nil, err
	}
	chats, err := s.limits.CanChat(ctx, user)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{
		User:     user,
		Level:    level,
		Premium:  s.limits.IsPremium(user),
		Usage:    dto.Usage{Plants: plants, Chats: chats},
		Complete: user.ProfileComplete(),
	}
	if n, ok := level.PointsToNext(user.ExperiencePoints); ok {
		resp.ToNext = &n
	}
	return resp, nil
}

// Update edits the profile. The first time every profile field is filled
// in, profile_completed is awarded.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error) {
	upd := store.ProfileUpdate{
		DisplayName: trimmed(req.DisplayName),
		Bio:         trimmed(req.Bio),
		AvatarURL:   trimmed(req.AvatarURL),
		Location:    trimmed(req.Location),
	}
	user, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	resp := &dto.UpdateProfileResponse{User: user}
	if user.ProfileComplete() {
		award, err := s.awards.AwardOnce(ctx, userID, gamification.ActionProfileCompleted, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to award profile completion: %w", engineErr(err))
		}
		if award != nil {
			resp.Award = award
			user.ExperiencePoints = award.Total
			user.Level = award.Level.Tier
		}
	}
	return resp, nil
}

func (s *ProfileService) Activity(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.ActivityLog, int64, error) {
	return s.users.ListActivity(ctx, userID, page, perPage)
}

func (s *ProfileService) Badges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	return s.users.ListBadges(ctx, userID)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
