package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBilling struct{}

func (stubBilling) Checkout(context.Context, uuid.UUID, string) (*dto.CheckoutResponse, error) {
	return &dto.CheckoutResponse{}, nil
}

func (stubBilling) Status(context.Context, uuid.UUID) (*dto.BillingStatusResponse, error) {
	return &dto.BillingStatusResponse{}, nil
}

func (stubBilling) HandleWebhook(context.Context, []byte, string) (string, error) {
	return "customer.subscription.updated", nil
}

func newTestApp() *fiber.App {
	app := fiber.New()
	up := handlers.PingFunc(func(context.Context) error { return nil })
	Setup(app, &config.Config{JWTSecret: "test-secret-at-least-32-bytes-long!!"}, nil, Handlers{
		Health:  handlers.NewHealthHandler(up, nil),
		Billing: handlers.NewBillingHandler(stubBilling{}, stubBilling{}),
	})
	return app
}

func status(t *testing.T, app *fiber.App, method, path string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestSetup_StripeWebhookBypassesAPILimiter(t *testing.T) {
	app := newTestApp()

	for i := 0; i < 100; i++ {
		require.Equal(t, http.StatusOK, status(t, app, http.MethodPost, "/api/webhooks/stripe"), "event %d", i+1)
	}
}

func TestSetup_APILimiter(t *testing.T) {
	app := newTestApp()

	for i := 0; i < 60; i++ {
		require.Equal(t, http.StatusOK, status(t, app, http.MethodGet, "/api/health"), "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, status(t, app, http.MethodGet, "/api/health"))
}

func TestSetup_ProtectedRoutesNeedToken(t *testing.T) {
	app := newTestApp()
	assert.Equal(t, http.StatusUnauthorized, status(t, app, http.MethodGet, "/api/billing/status"))
}
