package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v78"
	checkoutsession "github.com/stripe/stripe-go/v78/checkout/session"
	"gorm.io/gorm"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/app/repository"
	"github.com/MiguelBorja/TechTix/internal/pkg/billing"
	"github.com/MiguelBorja/TechTix/internal/pkg/database"
	"github.com/MiguelBorja/TechTix/internal/pkg/env"
	"github.com/MiguelBorja/TechTix/internal/pkg/usercontext"
)

type checkoutRequest struct {
	PlanID     uint   `json:"plan_id"`
	Provider   string `json:"provider"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// HandleListPlans returns all active billing plans.
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().ListActive()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plans")
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleStartCheckout starts a subscription checkout with the chosen payment
// provider and creates the local incomplete subscription record.
func HandleStartCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	switch req.Provider {
	case models.ProviderPaymongo, "":
		return startPaymongoCheckout(c, svc, userCtx.UserID, req.PlanID)
	case models.ProviderStripe:
		return startStripeCheckout(c, svc, userCtx.UserID, req)
	default:
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "provider must be paymongo or stripe")
	}
}

func startPaymongoCheckout(c *fiber.Ctx, svc *billing.Service, userID, planID uint) error {
	plan, err := repository.GetGlobalFactory().GetPlanRepository().GetByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan")
	}

	client := billing.NewPaymongoClientFromEnv()
	intent, err := client.CreatePaymentIntent(c.Context(), plan.PriceMinor, plan.Currency,
		fmt.Sprintf("%s subscription", plan.Name),
		map[string]string{
			"plan_code": plan.Code,
			"user_id":   fmt.Sprintf("%d", userID),
		})
	if err != nil {
		return jsonError(c, fiber.StatusBadGateway, "payment_provider_error", "Failed to start payment with PayMongo")
	}

	sub, err := svc.StartCheckout(c.Context(), userID, plan.ID, models.ProviderPaymongo, intent.ID, "")
	if err != nil {
		return checkoutError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subscription": sub,
		"payment_intent": fiber.Map{
			"id":         intent.ID,
			"client_key": intent.ClientKey,
			"status":     intent.Status,
		},
	})
}

func startStripeCheckout(c *fiber.Ctx, svc *billing.Service, userID uint, req checkoutRequest) error {
	plan, err := repository.GetGlobalFactory().GetPlanRepository().GetByID(req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan")
	}
	if plan.StripePriceID == "" {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "This plan cannot be purchased via Stripe")
	}

	sub, err := svc.StartCheckout(c.Context(), userID, plan.ID, models.ProviderStripe, "", "")
	if err != nil {
		return checkoutError(c, err)
	}

	stripe.Key = env.GetEnv("STRIPE_SECRET_KEY", "")
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(plan.StripePriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(fmt.Sprintf("%d", sub.ID)),
	}
	params.AddMetadata("plan_code", plan.Code)
	params.AddMetadata("user_id", fmt.Sprintf("%d", userID))

	session, err := checkoutsession.New(params)
	if err != nil {
		return jsonError(c, fiber.StatusBadGateway, "payment_provider_error", "Failed to start payment with Stripe")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subscription": sub,
		"checkout_url": session.URL,
	})
}

func checkoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrActiveSubscriptionExists):
		return jsonError(c, fiber.StatusConflict, "subscription_exists", "You already have an active subscription")
	case errors.Is(err, billing.ErrPlanNotBillable):
		return jsonError(c, fiber.StatusUnprocessableEntity, "plan_not_billable", "This plan cannot be purchased")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to start checkout")
	}
}

// HandleGetSubscription returns the authenticated user's latest subscription.
func HandleGetSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := billing.NewServiceFromDB(database.GetDB())
	sub, err := svc.CurrentSubscription(c.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "No subscription found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscription")
	}
	return c.JSON(fiber.Map{"subscription": sub})
}

// HandleCancelSubscription flags the user's subscription to end at the period
// boundary. The terminal cancellation arrives via webhook.
func HandleCancelSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := billing.NewServiceFromDB(database.GetDB())
	sub, err := svc.RequestCancellation(c.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "No active subscription to cancel")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to cancel subscription")
	}
	return c.JSON(fiber.Map{"subscription": sub})
}
