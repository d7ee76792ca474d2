package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiguelBorja/TechTix/internal/pkg/env"
)

func setWebhookEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	old := env.Env
	env.Env = vars
	t.Cleanup(func() { env.Env = old })
}

func TestHandleStripeWebhookFailsClosedWithoutSecret(t *testing.T) {
	setWebhookEnv(t, map[string]string{})

	app := fiber.New()
	app.Post("/webhooks/stripe", HandleStripeWebhook)

	req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(`{"id":"evt_1","type":"invoice.payment_succeeded"}`))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleStripeWebhookRejectsBadSignature(t *testing.T) {
	setWebhookEnv(t, map[string]string{"STRIPE_WEBHOOK_SECRET": "whsec_test"})

	app := fiber.New()
	app.Post("/webhooks/stripe", HandleStripeWebhook)

	req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandlePaymongoWebhookRejectsBadSignature(t *testing.T) {
	setWebhookEnv(t, map[string]string{"PAYMONGO_WEBHOOK_SECRET": "whsk_test"})

	app := fiber.New()
	app.Post("/webhooks/paymongo", HandlePaymongoWebhook)

	req := httptest.NewRequest("POST", "/webhooks/paymongo", strings.NewReader(`{"data":{"id":"evt_1"}}`))
	req.Header.Set("Paymongo-Signature", "t=1700000000,li=deadbeef")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
