package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/app/repository"
	"github.com/MiguelBorja/TechTix/internal/pkg/usercontext"
)

type promoCodeRequest struct {
	Code          string     `json:"code"`
	EventUUID     string     `json:"event_uuid"`
	DiscountType  string     `json:"discount_type"`
	Value         int64      `json:"value"`
	MinSpendMinor int64      `json:"min_spend_minor"`
	MaxUses       int        `json:"max_uses"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
}

// HandleCreatePromoCode creates a discount code owned by the organizer,
// optionally scoped to one of their events. Requires a plan with promo codes.
func HandleCreatePromoCode(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if plan := organizerPlan(c, userCtx.UserID); !plan.AllowPromoCodes {
		return jsonError(c, fiber.StatusForbidden, "plan_limit_reached", "Your plan does not include promo codes")
	}

	var req promoCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}

	code := models.NormalizeCode(req.Code)
	if len(code) < 3 || len(code) > 50 {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "code must be 3-50 characters")
	}
	switch req.DiscountType {
	case models.DiscountTypePercentage:
		if req.Value < 1 || req.Value > 100 {
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "percentage value must be 1-100")
		}
	case models.DiscountTypeFixed:
		if req.Value < 1 {
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "fixed value must be positive")
		}
	default:
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "discount_type must be percentage or fixed")
	}

	factory := repository.GetGlobalFactory()
	promoCode := &models.PromoCode{
		Code:          code,
		OrganizerID:   userCtx.UserID,
		DiscountType:  req.DiscountType,
		Value:         req.Value,
		MinSpendMinor: req.MinSpendMinor,
		MaxUses:       req.MaxUses,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      true,
	}
	if req.EventUUID != "" {
		event, err := factory.GetEventRepository().GetByUUID(req.EventUUID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return jsonError(c, fiber.StatusNotFound, "not_found", "Event not found")
			}
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load event")
		}
		if event.OrganizerID != userCtx.UserID {
			return jsonError(c, fiber.StatusForbidden, "forbidden", "You do not own this event")
		}
		promoCode.EventID = &event.ID
	}

	if _, err := factory.GetPromoCodeRepository().GetByCode(code); err == nil {
		return jsonError(c, fiber.StatusConflict, "code_taken", "A promo code with this code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to check code")
	}

	if err := factory.GetPromoCodeRepository().Create(promoCode); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create promo code")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"promo_code": promoCode})
}

// HandleListMyPromoCodes returns the organizer's promo codes.
func HandleListMyPromoCodes(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	codes, err := repository.GetGlobalFactory().GetPromoCodeRepository().GetByOrganizerID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load promo codes")
	}
	return c.JSON(fiber.Map{"promo_codes": codes})
}

// HandleDeactivatePromoCode turns a promo code off without deleting usage history.
func HandleDeactivatePromoCode(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetPromoCodeRepository()
	code, err := repo.GetByCode(c.Params("code"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Promo code not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load promo code")
	}
	if code.OrganizerID != userCtx.UserID && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "You do not own this promo code")
	}

	code.IsActive = false
	if err := repo.Update(code); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update promo code")
	}
	return c.JSON(fiber.Map{"promo_code": code})
}
