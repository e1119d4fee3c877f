package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/payments"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type billingService interface {
	Checkout(ctx context.Context, userID uuid.UUID, tier string) (*dto.CheckoutResponse, error)
	Status(ctx context.Context, userID uuid.UUID) (*dto.BillingStatusResponse, error)
}

type webhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error)
}

type BillingHandler struct {
	billing  billingService
	webhooks webhookProcessor
}

func NewBillingHandler(billing billingService, webhooks webhookProcessor) *BillingHandler {
	return &BillingHandler{billing: billing, webhooks: webhooks}
}

func (h *BillingHandler) Checkout(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.CheckoutRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	resp, err := h.billing.Checkout(c.UserContext(), userID, req.Tier)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *BillingHandler) Status(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	resp, err := h.billing.Status(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// StripeWebhook applies a signed Stripe event. A bad signature is rejected
// before anything is decoded. Events for accounts that no longer exist are
// acknowledged so Stripe stops retrying them.
func (h *BillingHandler) StripeWebhook(c *fiber.Ctx) error {
	eventType, err := h.webhooks.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"received": true})

	case errors.Is(err, payments.ErrInvalidSignature):
		slog.Warn("stripe webhook rejected", "error", err)
		return errorJSON(c, fiber.StatusBadRequest, "Invalid signature")

	case errors.Is(err, payments.ErrUserNotFound), errors.Is(err, store.ErrNotFound):
		slog.Warn("stripe webhook for unknown user", "event_type", eventType, "error", err)
		return c.JSON(fiber.Map{"received": true})

	case errors.Is(err, payments.ErrNotConfigured):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Webhooks not configured")
	}

	slog.Error("stripe webhook processing failed", "event_type", eventType, "error", err)
	return errorJSON(c, fiber.StatusInternalServerError, "Failed to process webhook event")
}
