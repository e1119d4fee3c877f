package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type compatibilityService interface {
	Check(ctx context.Context, userID uuid.UUID, req *dto.CompatibilityRequest) (*dto.CompatibilityResponse, error)
	List(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.Compatibility, int64, error)
}

type CompatibilityHandler struct {
	compat compatibilityService
}

func NewCompatibilityHandler(compat compatibilityService) *CompatibilityHandler {
	return &CompatibilityHandler{compat: compat}
}

func (h *CompatibilityHandler) Check(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.CompatibilityRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	resp, err := h.compat.Check(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CompatibilityHandler) List(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	page, perPage := paging(c)
	list, total, err := h.compat.List(c.UserContext(), userID, page, perPage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":       list,
		"pagination": dto.NewPagination(page, perPage, total),
	})
}
