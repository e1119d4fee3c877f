package handlers

import (
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/entitlement"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/gofiber/fiber/v2"
)

type tierLister interface {
	Tiers() []string
}

// ConfigHandler serves the client configuration: level table, award values,
// free limits and purchasable tiers. It is public and computed at startup.
type ConfigHandler struct {
	resp dto.AppConfigResponse
}

func NewConfigHandler(tiers tierLister) *ConfigHandler {
	return &ConfigHandler{resp: dto.AppConfigResponse{
		Levels:      gamification.Levels(),
		AwardValues: gamification.AwardValues(),
		Limits: map[string]int{
			entitlement.LimitPlants:    entitlement.FreePlantLimit,
			entitlement.LimitDiagnoses: entitlement.FreeDiagnosesPerPlantMonthly,
			entitlement.LimitChats:     entitlement.FreeChatsPerDay,
		},
		Tiers: tiers.Tiers(),
	}}
}

func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.JSON(h.resp)
}
