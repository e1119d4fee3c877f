package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Stripe objects are decoded into these instead of the SDK types so only
// the fields used here have to match the account's API version.
type checkoutSession struct {
	ID                string `json:"id"`
	ClientReferenceID string `json:"client_reference_id"`
	Customer          string `json:"customer"`
	Subscription      string `json:"subscription"`
	Mode              string `json:"mode"`
}

type subscription struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	EndedAt          int64  `json:"ended_at"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
		} `json:"data"`
	} `json:"items"`
}

func (s subscription) periodEnd() int64 {
	if s.CurrentPeriodEnd != 0 {
		return s.CurrentPeriodEnd
	}
	for _, it := range s.Items.Data {
		if it.CurrentPeriodEnd > s.CurrentPeriodEnd {
			s.CurrentPeriodEnd = it.CurrentPeriodEnd
		}
	}
	return s.CurrentPeriodEnd
}

// HandleWebhook verifies the Stripe-Signature header and applies the event.
// Nothing is decoded before the signature checks out.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error) {
	if s.webhookSecret == "" {
		return "", ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	eventType := string(event.Type)
	err = s.apply(ctx, event)
	switch {
	case errors.Is(err, errIgnored):
		metrics.WebhookEvents.WithLabelValues(eventType, "ignored").Inc()
		return eventType, nil
	case err != nil:
		metrics.WebhookEvents.WithLabelValues(eventType, "error").Inc()
		return eventType, err
	}
	metrics.WebhookEvents.WithLabelValues(eventType, "applied").Inc()
	return eventType, nil
}

var errIgnored = errors.New("event ignored")

func (s *Service) apply(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var cs checkoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return fmt.Errorf("failed to decode checkout session: %w", err)
		}
		return s.checkoutCompleted(ctx, cs)

	case stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted,
		stripe.EventTypeCustomerSubscriptionPaused,
		stripe.EventTypeCustomerSubscriptionResumed:
		var sub subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to decode subscription: %w", err)
		}
		return s.subscriptionChanged(ctx, event.Type, sub)
	}
	return errIgnored
}

func (s *Service) checkoutCompleted(ctx context.Context, cs checkoutSession) error {
	if cs.Mode != "" && cs.Mode != string(stripe.CheckoutSessionModeSubscription) {
		return errIgnored
	}
	userID, err := uuid.Parse(cs.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("%w: bad client_reference_id %q", ErrUserNotFound, cs.ClientReferenceID)
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return fmt.Errorf("checkout %s: %w", cs.ID, err)
	}

	upd := SubscriptionUpdate{
		Plan:           models.PlanPremium,
		Status:         models.StatusActive,
		CustomerID:     cs.Customer,
		SubscriptionID: cs.Subscription,
		SetEnd:         true,
	}
	if err := s.store.UpdateSubscription(ctx, userID, upd); err != nil {
		return fmt.Errorf("failed to activate premium: %w", err)
	}
	slog.Info("premium activated", "user_id", userID.String(), "subscription", cs.Subscription)
	return nil
}

func (s *Service) subscriptionChanged(ctx context.Context, eventType stripe.EventType, sub subscription) error {
	if sub.Customer == "" {
		return fmt.Errorf("%w: subscription %s has no customer", ErrUserNotFound, sub.ID)
	}
	user, err := s.store.GetUserByStripeCustomer(ctx, sub.Customer)
	if err != nil {
		return fmt.Errorf("subscription %s: %w", sub.ID, err)
	}

	var upd SubscriptionUpdate
	switch eventType {
	case stripe.EventTypeCustomerSubscriptionDeleted:
		end := s.now().UTC()
		if sub.EndedAt != 0 {
			end = time.Unix(sub.EndedAt, 0).UTC()
		}
		upd = SubscriptionUpdate{Plan: models.PlanFree, Status: models.StatusCancelled, End: &end, SetEnd: true}
	case stripe.EventTypeCustomerSubscriptionPaused:
		upd = SubscriptionUpdate{Status: models.StatusPaused}
	default:
		upd = SubscriptionUpdate{Status: mapStatus(sub.Status), SubscriptionID: sub.ID}
		if upd.Status == models.StatusActive {
			upd.Plan = models.PlanPremium
		}
		if pe := sub.periodEnd(); pe != 0 {
			end := time.Unix(pe, 0).UTC()
			upd.End, upd.SetEnd = &end, true
		}
	}

	if err := s.store.UpdateSubscription(ctx, user.ID, upd); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	slog.Info("subscription updated",
		"user_id", user.ID.String(),
		"event", string(eventType),
		"status", upd.Status,
	)
	return nil
}

// mapStatus converts Stripe subscription statuses to the stored tags.
// Trials count as active.
func mapStatus(status string) string {
	switch stripe.SubscriptionStatus(status) {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.StatusActive
	case stripe.SubscriptionStatusCanceled:
		return models.StatusCancelled
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.StatusPastDue
	case stripe.SubscriptionStatusPaused:
		return models.StatusPaused
	case stripe.SubscriptionStatusIncompleteExpired:
		return models.StatusExpired
	}
	return status
}
