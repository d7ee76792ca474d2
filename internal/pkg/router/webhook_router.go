package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MiguelBorja/TechTix/app/controllers"
)

type WebhookRouter struct {
}

// InstallRouter registers payment-processor webhook endpoints. These carry
// their own signature verification and must never be rate limited: a 429
// would make the processor treat the delivery as failed and back off.
func (h WebhookRouter) InstallRouter(app *fiber.App) {
	webhooks := app.Group("/webhooks")
	webhooks.Post("/paymongo", controllers.HandlePaymongoWebhook)
	webhooks.Post("/stripe", controllers.HandleStripeWebhook)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
