package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/internal/pkg/billing"
	"github.com/MiguelBorja/TechTix/internal/pkg/database"
	"github.com/MiguelBorja/TechTix/internal/pkg/env"
)

// HandlePaymongoWebhook receives PayMongo events. The contract with the
// processor: 2xx stops redelivery, so processing errors are logged and
// acknowledged; only persistence failures and bad signatures are rejected.
func HandlePaymongoWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	signatureValid := false
	if secret := env.GetEnv("PAYMONGO_WEBHOOK_SECRET", ""); secret != "" {
		if !billing.VerifyPaymongoWebhookSignature(payload, c.Get("Paymongo-Signature"), secret) {
			return jsonError(c, fiber.StatusUnauthorized, "invalid_signature", "Webhook signature verification failed")
		}
		signatureValid = true
	}

	ev, parseErr := billing.ParsePaymongoEvent(payload)

	svc := billing.NewServiceFromDB(database.GetDB())
	in := billing.WebhookEventInput{
		Provider:       models.ProviderPaymongo,
		PayloadJSON:    string(payload),
		SignatureValid: signatureValid,
	}
	if ev != nil {
		in.ProviderEventID = ev.EventID
		in.EventType = ev.Type
	}
	created, record, err := svc.RecordWebhookEvent(c.Context(), in)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to persist webhook event")
	}
	if !created {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	var processErr error
	if parseErr != nil {
		processErr = parseErr
	} else {
		processErr = svc.ProcessPaymongoEvent(c.Context(), ev)
	}
	if processErr != nil {
		log.Printf("webhook: paymongo event %s failed: %v", record.ProviderEventID, processErr)
	}
	if err := svc.MarkWebhookProcessed(c.Context(), record.ID, processErr); err != nil {
		log.Printf("webhook: failed to mark paymongo event %d processed: %v", record.ID, err)
	}

	return c.JSON(fiber.Map{"received": true})
}

// HandleStripeWebhook receives Stripe events. Signature verification is
// mandatory; Stripe treats non-2xx as a redelivery trigger.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	if secret == "" {
		// Fail closed: without a secret no payload can be trusted. Stripe
		// redelivers once the endpoint is configured.
		return jsonError(c, fiber.StatusInternalServerError, "not_configured", "Stripe webhook secret is not configured")
	}
	event, err := webhook.ConstructEvent(payload, c.Get("Stripe-Signature"), secret)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_signature", "Webhook signature verification failed")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	created, record, err := svc.RecordWebhookEvent(c.Context(), billing.WebhookEventInput{
		Provider:        models.ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  secret != "",
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to persist webhook event")
	}
	if !created {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	processErr := svc.ProcessStripeEvent(c.Context(), event)
	if processErr != nil {
		log.Printf("webhook: stripe event %s failed: %v", event.ID, processErr)
	}
	if err := svc.MarkWebhookProcessed(c.Context(), record.ID, processErr); err != nil {
		log.Printf("webhook: failed to mark stripe event %d processed: %v", record.ID, err)
	}

	return c.JSON(fiber.Map{"received": true})
}
