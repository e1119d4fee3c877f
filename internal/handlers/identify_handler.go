package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type identifyService interface {
	Identify(ctx context.Context, userID uuid.UUID, image []byte) (*dto.IdentifyResponse, error)
}

type IdentifyHandler struct {
	identify identifyService
}

func NewIdentifyHandler(identify identifyService) *IdentifyHandler {
	return &IdentifyHandler{identify: identify}
}

func (h *IdentifyHandler) Identify(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	image, err := readImage(c)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.identify.Identify(c.UserContext(), userID, image)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
