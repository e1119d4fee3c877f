// Package payments sells premium through Stripe Checkout and keeps the
// subscription fields on the user in sync with Stripe webhooks.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownTier      = errors.New("unknown price tier")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotConfigured    = errors.New("payments not configured")
)

// Checkout price tiers.
const (
	TierMonthly   = "monthly"
	TierQuarterly = "quarterly"
	TierYearly    = "yearly"
)

// SubscriptionUpdate is a partial write to the user's subscription fields.
// Empty strings leave a column unchanged; End is written only with SetEnd.
type SubscriptionUpdate struct {
	Plan           string
	Status         string
	End            *time.Time
	SetEnd         bool
	CustomerID     string
	SubscriptionID string
}

type SubscriptionStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByStripeCustomer(ctx context.Context, customerID string) (*models.User, error)
	UpdateSubscription(ctx context.Context, userID uuid.UUID, upd SubscriptionUpdate) error
}

// CheckoutSessions is the part of the Stripe client used to open a checkout.
type CheckoutSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Service struct {
	store         SubscriptionStore
	sessions      CheckoutSessions
	webhookSecret string
	prices        map[string]string
	successURL    string
	cancelURL     string
	now           func() time.Time
}

func NewService(store SubscriptionStore, cfg *config.Config) *Service {
	var sessions CheckoutSessions
	if cfg.StripeSecretKey != "" {
		sc := &client.API{}
		sc.Init(cfg.StripeSecretKey, nil)
		sessions = sc.CheckoutSessions
	}
	return newService(store, sessions, cfg)
}

func newService(store SubscriptionStore, sessions CheckoutSessions, cfg *config.Config) *Service {
	return &Service{
		store:         store,
		sessions:      sessions,
		webhookSecret: cfg.StripeWebhookSecret,
		prices:        cfg.PriceIDs(),
		successURL:    cfg.StripeSuccessURL,
		cancelURL:     cfg.StripeCancelURL,
		now:           time.Now,
	}
}

// Tiers lists the purchasable tiers.
func (s *Service) Tiers() []string {
	out := make([]string, 0, len(s.prices))
	for _, t := range []string{TierMonthly, TierQuarterly, TierYearly} {
		if _, ok := s.prices[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// CreateCheckout opens a subscription checkout for the user and returns the
// URL to redirect to. The user id travels as client_reference_id so the
// completion webhook can find the account.
func (s *Service) CreateCheckout(ctx context.Context, user *models.User, tier string) (string, error) {
	if s.sessions == nil {
		return "", ErrNotConfigured
	}
	price, ok := s.prices[tier]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(user.ID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
	}
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		params.Customer = user.StripeCustomerID
	} else {
		params.CustomerEmail = stripe.String(user.Email)
	}
	params.AddMetadata("user_id", user.ID.String())
	params.AddMetadata("tier", tier)
	params.Context = ctx

	sess, err := s.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}
