package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/payments"
	"github.com/google/uuid"
)

// Checkouts opens hosted payment pages.
type Checkouts interface {
	Tiers() []string
	CreateCheckout(ctx context.Context, user *models.User, tier string) (string, error)
}

var _ Checkouts = (*payments.Service)(nil)

type BillingService struct {
	users    UserRepository
	limits   Limits
	payments Checkouts
}

func NewBillingService(users UserRepository, limits Limits, checkouts Checkouts) *BillingService {
	return &BillingService{users: users, limits: limits, payments: checkouts}
}

func (s *BillingService) Checkout(ctx context.Context, userID uuid.UUID, tier string) (*dto.CheckoutResponse, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.payments.CreateCheckout(ctx, user, tier)
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutResponse{URL: url}, nil
}

func (s *BillingService) Status(ctx context.Context, userID uuid.UUID) (*dto.BillingStatusResponse, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return &dto.BillingStatusResponse{
		Plan:    user.SubscriptionPlan,
		Status:  user.SubscriptionStatus,
		EndsAt:  user.SubscriptionEnd,
		Premium: s.limits.IsPremium(user),
		Tiers:   s.payments.Tiers(),
	}, nil
}
