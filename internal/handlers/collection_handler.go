package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type collectionService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.UserPlant, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.UserPlant, error)
	Add(ctx context.Context, userID uuid.UUID, req *dto.AddPlantRequest) (*models.UserPlant, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *dto.UpdatePlantRequest) (*models.UserPlant, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Water(ctx context.Context, userID, id uuid.UUID) (*dto.CareResponse, error)
	Repot(ctx context.Context, userID, id uuid.UUID) (*dto.CareResponse, error)
	Checkin(ctx context.Context, userID, id uuid.UUID, req *dto.CheckinRequest) (*dto.CareResponse, error)
}

type diagnosisService interface {
	Diagnose(ctx context.Context, userID, userPlantID uuid.UUID, image []byte) (*dto.DiagnoseResponse, error)
	List(ctx context.Context, userID, userPlantID uuid.UUID) ([]models.Diagnosis, error)
}

// CollectionHandler serves /my-plants: ownership, care events and
// diagnoses.
type CollectionHandler struct {
	collection collectionService
	diagnoses  diagnosisService
}

func NewCollectionHandler(collection collectionService, diagnoses diagnosisService) *CollectionHandler {
	return &CollectionHandler{collection: collection, diagnoses: diagnoses}
}

// owned resolves the caller and the :id parameter.
func owned(c *fiber.Ctx) (uuid.UUID, uuid.UUID, bool, error) {
	userID, ok, err := currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false, err
	}
	id, ok, err := paramID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false, err
	}
	return userID, id, true, nil
}

func (h *CollectionHandler) List(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	plants, err := h.collection.List(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": plants})
}

func (h *CollectionHandler) Add(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.AddPlantRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	up, err := h.collection.Add(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(up)
}

func (h *CollectionHandler) Get(c *fiber.Ctx) error {
	userID, id, ok, err := owned(c)
	if !ok {
		return err
	}
	up, err := h.collection.Get(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(up)
}

func (h *CollectionHandler) Update(c *fiber.Ctx) error {
	userID, id, ok, err := owned(c)
	if !ok {
		return err
	}
	var req dto.UpdatePlantRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	up, err := h.collection.Update(c.UserContext(), userID, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(up)
}

func (h *CollectionHandler) Delete(c *fiber.Ctx) error {
	userID, id, ok, err := owned(c)
	if !ok {
		return err
	}
	if err := h.collection.Delete(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CollectionHandler) Water(c *fiber.Ctx) error {
	userID, id, ok, err := owned(c)
	if !ok {
		return err
	}
	resp, err := h.collection.Water(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *CollectionHandler) Repot(c *fiber.Ctx) error {
	userID, id, ok, err := owned(c)
	if !ok {
		return err
	}
	resp, err := h.collection.Repot(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *CollectionHandler) Checkin(c *fiber.Ctx) error {
	userID, id, ok, err := owned(c)
	if !ok {
		return err
	}
	var req dto.CheckinRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
	}
	resp, err := h.collection.Checkin(c.UserContext(), userID, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *CollectionHandler) Diagnose(c *fiber.Ctx) error {
	userID, id, ok, err := owned(c)
	if !ok {
		return err
	}
	image, err := readImage(c)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.diagnoses.Diagnose(c.UserContext(), userID, id, image)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CollectionHandler) Diagnoses(c *fiber.Ctx) error {
	userID, id, ok, err := owned(c)
	if !ok {
		return err
	}
	list, err := h.diagnoses.List(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": list})
}
