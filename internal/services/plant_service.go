package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/google/uuid"
)

var ErrDuplicatePlant = errors.New("a plant with this scientific name already exists")

const plantCacheNamespace = "plant"

// PlantService serves the shared species catalog. Single entries are read
// through the cache.
type PlantService struct {
	plants PlantRepository
	cache  JSONCache
}

func NewPlantService(plants PlantRepository, cache JSONCache) *PlantService {
	return &PlantService{plants: plants, cache: cache}
}

func (s *PlantService) List(ctx context.Context, f store.PlantFilter) (*dto.PlantListResponse, error) {
	f = f.Normalize()
	plants, total, err := s.plants.ListPlants(ctx, f)
	if err != nil {
		return nil, err
	}
	if plants == nil {
		plants = []models.Plant{}
	}
	return &dto.PlantListResponse{
		Data:       plants,
		Pagination: dto.NewPagination(f.Page, f.PerPage, total),
	}, nil
}

func (s *PlantService) Get(ctx context.Context, id uuid.UUID) (*models.Plant, error) {
	var cached models.Plant
	if found, err := s.cache.Get(ctx, plantCacheNamespace, id.String(), &cached); err != nil {
		slog.Warn("plant cache read failed", "plant_id", id, "error", err)
	} else if found {
		return &cached, nil
	}

	plant, err := s.plants.GetPlant(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrPlantNotFound)
	}
	if err := s.cache.Set(ctx, plantCacheNamespace, id.String(), plant); err != nil {
		slog.Warn("plant cache write failed", "plant_id", id, "error", err)
	}
	return plant, nil
}

func (s *PlantService) Create(ctx context.Context, req *dto.PlantRequest) (*models.Plant, error) {
	plant := req.Model()
	if plant.Difficulty == "" {
		plant.Difficulty = "medium"
	}
	if err := s.plants.CreatePlant(ctx, plant); err != nil {
		if errors.Is(err, store.ErrDuplicatePlant) {
			return nil, ErrDuplicatePlant
		}
		return nil, err
	}
	return plant, nil
}

func (s *PlantService) Update(ctx context.Context, id uuid.UUID, req *dto.PlantRequest) (*models.Plant, error) {
	plant := req.Model()
	plant.ID = id
	if plant.Difficulty == "" {
		plant.Difficulty = "medium"
	}
	if err := s.plants.UpdatePlant(ctx, plant); err != nil {
		if errors.Is(err, store.ErrDuplicatePlant) {
			return nil, ErrDuplicatePlant
		}
		return nil, notFoundAs(err, ErrPlantNotFound)
	}
	s.invalidate(ctx, id)
	return s.plants.GetPlant(ctx, id)
}

func (s *PlantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.plants.DeletePlant(ctx, id); err != nil {
		return notFoundAs(err, ErrPlantNotFound)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *PlantService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, plantCacheNamespace, id.String()); err != nil {
		slog.Warn("plant cache invalidate failed", "plant_id", id, "error", err)
	}
}
