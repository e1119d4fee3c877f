package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type plantService interface {
	List(ctx context.Context, f store.PlantFilter) (*dto.PlantListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Plant, error)
	Create(ctx context.Context, req *dto.PlantRequest) (*models.Plant, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.PlantRequest) (*models.Plant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pointsRebuilder interface {
	RebuildPoints(ctx context.Context, userID uuid.UUID) (int, gamification.Level, error)
}

// PlantHandler serves the species catalog. Writes are admin only.
type PlantHandler struct {
	plants plantService
}

func NewPlantHandler(plants plantService) *PlantHandler {
	return &PlantHandler{plants: plants}
}

func (h *PlantHandler) List(c *fiber.Ctx) error {
	page, perPage := paging(c)
	resp, err := h.plants.List(c.UserContext(), store.PlantFilter{
		Page:     page,
		PerPage:  perPage,
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *PlantHandler) Get(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	plant, err := h.plants.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(plant)
}

func (h *PlantHandler) Create(c *fiber.Ctx) error {
	var req dto.PlantRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	plant, err := h.plants.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plant)
}

func (h *PlantHandler) Update(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	var req dto.PlantRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	plant, err := h.plants.Update(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(plant)
}

func (h *PlantHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	if err := h.plants.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type AdminHandler struct {
	points pointsRebuilder
}

func NewAdminHandler(points pointsRebuilder) *AdminHandler {
	return &AdminHandler{points: points}
}

// RebuildPoints recomputes a user's total from the activity log.
func (h *AdminHandler) RebuildPoints(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	total, level, err := h.points.RebuildPoints(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user_id":           id,
		"experience_points": total,
		"level":             level,
	})
}
