package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MiguelBorja/TechTix/app/repository"
	"github.com/MiguelBorja/TechTix/internal/pkg/database"
	"github.com/MiguelBorja/TechTix/internal/pkg/ledger"
	"github.com/MiguelBorja/TechTix/internal/pkg/usercontext"
)

type payoutRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

// HandleGetBalance returns the organizer's withdrawable balance.
func HandleGetBalance(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	balance, err := ledger.AvailableBalance(database.GetDB(), userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to compute balance")
	}
	return c.JSON(fiber.Map{"available_minor": balance})
}

// HandleRequestPayout creates a pending payout against the organizer's balance.
func HandleRequestPayout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req payoutRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}
	currency := req.Currency
	if currency == "" {
		currency = "PHP"
	}

	payout, err := ledger.RequestPayout(database.GetDB(), userCtx.UserID, req.AmountMinor, currency)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return jsonError(c, fiber.StatusUnprocessableEntity, "insufficient_balance", "Requested amount exceeds your available balance")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to request payout")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payout": payout})
}

// HandleListMyPayouts returns the organizer's payout history.
func HandleListMyPayouts(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := paginate(c)

	payouts, err := repository.GetGlobalFactory().GetPayoutRepository().GetByOrganizerID(userCtx.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payouts")
	}
	return c.JSON(fiber.Map{"payouts": payouts})
}
