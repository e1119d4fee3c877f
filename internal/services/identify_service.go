package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

const identifyCacheNamespace = "identify"

type IdentifyService struct {
	plants PlantRepository
	ai     Inference
	awards Awarder
	cache  JSONCache
}

func NewIdentifyService(plants PlantRepository, inference Inference, awards Awarder, cache JSONCache) *IdentifyService {
	return &IdentifyService{plants: plants, ai: inference, awards: awards, cache: cache}
}

// Identify names the plant in the photo, adds the species to the catalog
// when it is new and awards identify_new_species the first time this user
// identifies it. Identical photos are answered from the cache.
func (s *IdentifyService) Identify(ctx context.Context, userID uuid.UUID, image []byte) (*dto.IdentifyResponse, error) {
	img, err := ai.NewImage(image)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(img.Data)
	key := hex.EncodeToString(sum[:])

	var ident ai.Identification
	found, err := s.cache.Get(ctx, identifyCacheNamespace, key, &ident)
	if err != nil {
		slog.Warn("identify cache read failed", "user_id", userID, "error", err)
	}
	if !found {
		res, err := s.ai.Identify(ctx, img)
		if err != nil {
			return nil, err
		}
		ident = *res
		if err := s.cache.Set(ctx, identifyCacheNamespace, key, ident); err != nil {
			slog.Warn("identify cache write failed", "user_id", userID, "error", err)
		}
	}

	plant, created, err := s.plants.EnsurePlant(ctx, catalogEntry(&ident))
	if err != nil {
		return nil, fmt.Errorf("failed to store identified plant: %w", err)
	}

	award, err := s.awards.AwardOnce(ctx, userID, gamification.ActionIdentifyNewSpecies, &plant.ID, nil)
	if err != nil {
		return nil, engineErr(err)
	}

	return &dto.IdentifyResponse{
		Identification: &ident,
		Plant:          plant,
		NewToCatalog:   created,
		Award:          award,
	}, nil
}

func catalogEntry(id *ai.Identification) *models.Plant {
	difficulty := strings.ToLower(strings.TrimSpace(id.Difficulty))
	switch difficulty {
	case "easy", "medium", "hard":
	default:
		difficulty = "medium"
	}
	return &models.Plant{
		CommonName:     id.CommonName,
		ScientificName: strings.TrimSpace(id.ScientificName),
		Family:         id.Family,
		Category:       id.Category,
		Description:    id.Description,
		Light:          id.Care.Light,
		Water:          id.Care.Water,
		Humidity:       id.Care.Humidity,
		Temperature:    id.Care.Temperature,
		Soil:           id.Care.Soil,
		Toxicity:       id.Toxicity,
		Difficulty:     difficulty,
	}
}
