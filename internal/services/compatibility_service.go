package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CompatibilityService struct {
	plants  PlantRepository
	records CompatibilityRepository
	ai      Inference
	awards  Awarder
}

func NewCompatibilityService(plants PlantRepository, records CompatibilityRepository, inference Inference, awards Awarder) *CompatibilityService {
	return &CompatibilityService{plants: plants, records: records, ai: inference, awards: awards}
}

// Check rates keeping two catalog plants together and awards
// compatibility_check for the stored result.
func (s *CompatibilityService) Check(ctx context.Context, userID uuid.UUID, req *dto.CompatibilityRequest) (*dto.CompatibilityResponse, error) {
	if req.PlantAID == uuid.Nil || req.PlantBID == uuid.Nil {
		return nil, fmt.Errorf("%w: two plant ids are required", ErrInvalidInput)
	}
	if req.PlantAID == req.PlantBID {
		return nil, fmt.Errorf("%w: pick two different plants", ErrInvalidInput)
	}

	a, err := s.plants.GetPlant(ctx, req.PlantAID)
	if err != nil {
		return nil, notFoundAs(err, ErrPlantNotFound)
	}
	b, err := s.plants.GetPlant(ctx, req.PlantBID)
	if err != nil {
		return nil, notFoundAs(err, ErrPlantNotFound)
	}

	result, err := s.ai.Compatibility(ctx, profileOf(a), profileOf(b))
	if err != nil {
		return nil, err
	}

	tips, err := json.Marshal(result.Tips)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tips: %w", err)
	}
	rec := &models.Compatibility{
		UserID:     userID,
		PlantAID:   a.ID,
		PlantBID:   b.ID,
		Score:      result.Score,
		Compatible: result.Compatible,
		Summary:    result.Summary,
		LightMatch: result.LightMatch,
		WaterMatch: result.WaterMatch,
		Tips:       datatypes.JSON(tips),
	}
	if err := s.records.CreateCompatibility(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save compatibility: %w", err)
	}
	rec.PlantA, rec.PlantB = a, b

	award, err := s.awards.Award(ctx, userID, gamification.ActionCompatibilityCheck, &rec.ID)
	if err != nil {
		return nil, engineErr(err)
	}
	return &dto.CompatibilityResponse{Result: rec, Award: award}, nil
}

func (s *CompatibilityService) List(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.Compatibility, int64, error) {
	list, total, err := s.records.ListCompatibilities(ctx, userID, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	if list == nil {
		list = []models.Compatibility{}
	}
	return list, total, nil
}

func profileOf(p *models.Plant) ai.PlantProfile {
	return ai.PlantProfile{
		CommonName:     p.CommonName,
		ScientificName: p.ScientificName,
		Light:          p.Light,
		Water:          p.Water,
		Humidity:       p.Humidity,
		Temperature:    p.Temperature,
	}
}
