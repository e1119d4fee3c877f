package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

const testSecret = "whsec_test_secret"

type fakeStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeStore) add(u *models.User) *models.User {
	if u.SubscriptionPlan == "" {
		u.SubscriptionPlan = models.PlanFree
		u.SubscriptionStatus = models.StatusActive
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUserByStripeCustomer(ctx context.Context, customerID string) (*models.User, error) {
	for _, u := range f.users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) UpdateSubscription(ctx context.Context, userID uuid.UUID, upd SubscriptionUpdate) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if upd.Plan != "" {
		u.SubscriptionPlan = upd.Plan
	}
	if upd.Status != "" {
		u.SubscriptionStatus = upd.Status
	}
	if upd.SetEnd {
		u.SubscriptionEnd = upd.End
	}
	if upd.CustomerID != "" {
		id := upd.CustomerID
		u.StripeCustomerID = &id
	}
	if upd.SubscriptionID != "" {
		id := upd.SubscriptionID
		u.StripeSubscriptionID = &id
	}
	return nil
}

type fakeSessions struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		StripeWebhookSecret: testSecret,
		StripePriceMonthly:  "price_monthly",
		StripePriceYearly:   "price_yearly",
		StripeSuccessURL:    "https://app/success",
		StripeCancelURL:     "https://app/cancel",
	}
}

func signedEvent(t *testing.T, eventType string, object any) ([]byte, string) {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_%s","object":"event","api_version":"2020-08-27","type":%q,"data":{"object":%s}}`,
		uuid.NewString()[:8], eventType, raw,
	))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestCreateCheckout(t *testing.T) {
	sessions := &fakeSessions{}
	svc := newService(newFakeStore(), sessions, testConfig())
	user := &models.User{ID: uuid.New(), Email: "fern@example.com"}

	url, err := svc.CreateCheckout(context.Background(), user, TierMonthly)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", url)

	p := sessions.params
	require.NotNil(t, p)
	assert.Equal(t, "subscription", *p.Mode)
	assert.Equal(t, user.ID.String(), *p.ClientReferenceID)
	assert.Equal(t, "fern@example.com", *p.CustomerEmail)
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, "price_monthly", *p.LineItems[0].Price)
}

func TestCreateCheckout_ReusesCustomer(t *testing.T) {
	sessions := &fakeSessions{}
	svc := newService(newFakeStore(), sessions, testConfig())
	cus := "cus_123"
	user := &models.User{ID: uuid.New(), Email: "a@b.c", StripeCustomerID: &cus}

	_, err := svc.CreateCheckout(context.Background(), user, TierYearly)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", *sessions.params.Customer)
	assert.Nil(t, sessions.params.CustomerEmail)
}

func TestCreateCheckout_Errors(t *testing.T) {
	user := &models.User{ID: uuid.New()}

	svc := newService(newFakeStore(), &fakeSessions{}, testConfig())
	_, err := svc.CreateCheckout(context.Background(), user, TierQuarterly)
	require.ErrorIs(t, err, ErrUnknownTier, "quarterly has no price configured")

	svc = newService(newFakeStore(), nil, testConfig())
	_, err = svc.CreateCheckout(context.Background(), user, TierMonthly)
	require.ErrorIs(t, err, ErrNotConfigured)

	svc = newService(newFakeStore(), &fakeSessions{err: errors.New("card_declined")}, testConfig())
	_, err = svc.CreateCheckout(context.Background(), user, TierMonthly)
	require.Error(t, err)
}

func TestTiers(t *testing.T) {
	svc := newService(newFakeStore(), nil, testConfig())
	assert.Equal(t, []string{TierMonthly, TierYearly}, svc.Tiers())
}

func TestWebhook_InvalidSignatureMutatesNothing(t *testing.T) {
	store := newFakeStore()
	user := store.add(&models.User{ID: uuid.New()})
	svc := newService(store, nil, testConfig())

	payload, _ := signedEvent(t, "checkout.session.completed", map[string]any{
		"id": "cs_1", "client_reference_id": user.ID.String(), "customer": "cus_1", "subscription": "sub_1",
	})

	_, err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	require.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, models.PlanFree, user.SubscriptionPlan)
	assert.Nil(t, user.StripeCustomerID)

	_, err = svc.HandleWebhook(context.Background(), payload, "")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWebhook_CheckoutCompleted(t *testing.T) {
	store := newFakeStore()
	user := store.add(&models.User{ID: uuid.New()})
	svc := newService(store, nil, testConfig())

	payload, sig := signedEvent(t, "checkout.session.completed", map[string]any{
		"id": "cs_1", "mode": "subscription", "client_reference_id": user.ID.String(),
		"customer": "cus_1", "subscription": "sub_1",
	})

	eventType, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", eventType)
	assert.Equal(t, models.PlanPremium, user.SubscriptionPlan)
	assert.Equal(t, models.StatusActive, user.SubscriptionStatus)
	require.NotNil(t, user.StripeCustomerID)
	assert.Equal(t, "cus_1", *user.StripeCustomerID)
	require.NotNil(t, user.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *user.StripeSubscriptionID)
}

func TestWebhook_CheckoutCompletedUnknownUser(t *testing.T) {
	svc := newService(newFakeStore(), nil, testConfig())
	payload, sig := signedEvent(t, "checkout.session.completed", map[string]any{
		"id": "cs_1", "client_reference_id": uuid.NewString(), "customer": "cus_1",
	})

	_, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func premiumUser(store *fakeStore) *models.User {
	cus := "cus_9"
	return store.add(&models.User{
		ID:                 uuid.New(),
		SubscriptionPlan:   models.PlanPremium,
		SubscriptionStatus: models.StatusActive,
		StripeCustomerID:   &cus,
	})
}

func TestWebhook_SubscriptionUpdated(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{status: "active", want: models.StatusActive},
		{status: "trialing", want: models.StatusActive},
		{status: "past_due", want: models.StatusPastDue},
		{status: "canceled", want: models.StatusCancelled},
		{status: "unpaid", want: models.StatusPastDue},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			store := newFakeStore()
			user := premiumUser(store)
			svc := newService(store, nil, testConfig())
			periodEnd := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

			payload, sig := signedEvent(t, "customer.subscription.updated", map[string]any{
				"id": "sub_9", "customer": "cus_9", "status": tt.status,
				"current_period_end": periodEnd.Unix(),
			})
			_, err := svc.HandleWebhook(context.Background(), payload, sig)
			require.NoError(t, err)

			assert.Equal(t, tt.want, user.SubscriptionStatus)
			require.NotNil(t, user.SubscriptionEnd)
			assert.True(t, periodEnd.Equal(*user.SubscriptionEnd))
		})
	}
}

func TestWebhook_SubscriptionUpdatedPeriodEndOnItems(t *testing.T) {
	store := newFakeStore()
	user := premiumUser(store)
	svc := newService(store, nil, testConfig())
	periodEnd := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	payload, sig := signedEvent(t, "customer.subscription.updated", map[string]any{
		"id": "sub_9", "customer": "cus_9", "status": "active",
		"items": map[string]any{"data": []map[string]any{{"current_period_end": periodEnd.Unix()}}},
	})
	_, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	require.NotNil(t, user.SubscriptionEnd)
	assert.True(t, periodEnd.Equal(*user.SubscriptionEnd))
}

func TestWebhook_SubscriptionDeleted(t *testing.T) {
	store := newFakeStore()
	user := premiumUser(store)
	svc := newService(store, nil, testConfig())
	endedAt := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

	payload, sig := signedEvent(t, "customer.subscription.deleted", map[string]any{
		"id": "sub_9", "customer": "cus_9", "status": "canceled", "ended_at": endedAt.Unix(),
	})
	_, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)

	assert.Equal(t, models.PlanFree, user.SubscriptionPlan)
	assert.Equal(t, models.StatusCancelled, user.SubscriptionStatus)
	require.NotNil(t, user.SubscriptionEnd)
	assert.True(t, endedAt.Equal(*user.SubscriptionEnd))
}

func TestWebhook_SubscriptionDeletedWithoutEndedAt(t *testing.T) {
	store := newFakeStore()
	user := premiumUser(store)
	svc := newService(store, nil, testConfig())
	now := time.Date(2025, 4, 4, 4, 4, 4, 0, time.UTC)
	svc.now = func() time.Time { return now }

	payload, sig := signedEvent(t, "customer.subscription.deleted", map[string]any{
		"id": "sub_9", "customer": "cus_9", "status": "canceled",
	})
	_, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	require.NotNil(t, user.SubscriptionEnd)
	assert.True(t, now.Equal(*user.SubscriptionEnd))
}

func TestWebhook_SubscriptionPaused(t *testing.T) {
	store := newFakeStore()
	user := premiumUser(store)
	svc := newService(store, nil, testConfig())

	payload, sig := signedEvent(t, "customer.subscription.paused", map[string]any{
		"id": "sub_9", "customer": "cus_9", "status": "paused",
	})
	_, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, user.SubscriptionStatus)
	assert.Equal(t, models.PlanPremium, user.SubscriptionPlan)
}

func TestWebhook_UnhandledEventIsAcknowledged(t *testing.T) {
	svc := newService(newFakeStore(), nil, testConfig())
	payload, sig := signedEvent(t, "invoice.paid", map[string]any{"id": "in_1"})

	eventType, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, "invoice.paid", eventType)
}

func TestWebhook_NoSecretConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.StripeWebhookSecret = ""
	svc := newService(newFakeStore(), nil, cfg)

	_, err := svc.HandleWebhook(context.Background(), []byte(`{}`), "t=1,v1=x")
	require.ErrorIs(t, err, ErrNotConfigured)
}
