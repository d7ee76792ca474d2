package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/app/repository"
	"github.com/MiguelBorja/TechTix/internal/pkg/billing"
	"github.com/MiguelBorja/TechTix/internal/pkg/database"
	"github.com/MiguelBorja/TechTix/internal/pkg/metrics/counter"
	"github.com/MiguelBorja/TechTix/internal/pkg/usercontext"
)

// Organizers without an entitling subscription get the free tier: one active
// event, capped capacity, no promo codes.
const (
	freeTierMaxActiveEvents = 1
	freeTierMaxTickets      = 50
)

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	City        string    `json:"city"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	PriceMinor  int64     `json:"price_minor"`
	Currency    string    `json:"currency"`
	Capacity    int       `json:"capacity"`
}

// HandleListEvents returns published events, filterable by city and text query.
func HandleListEvents(c *fiber.Ctx) error {
	offset, limit := paginate(c)
	repo := repository.GetGlobalFactory().GetEventRepository()
	events, err := repo.ListPublished(c.Query("city"), c.Query("q"), offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load events")
	}
	return c.JSON(fiber.Map{"events": events})
}

// HandleGetEvent returns a single published event by UUID and counts the view.
func HandleGetEvent(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetEventRepository()
	event, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Event not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load event")
	}

	userCtx := usercontext.GetUserContext(c)
	isOwner := userCtx.IsLoggedIn && userCtx.UserID == event.OrganizerID
	if !event.IsPublished() && !isOwner && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Event not found")
	}

	if event.IsPublished() {
		counter.AddEventView(event.ID)
	}

	return c.JSON(fiber.Map{
		"event":              event,
		"remaining_capacity": event.RemainingCapacity(),
	})
}

// HandleCreateEvent creates a pending event for the authenticated organizer.
// The organizer's plan caps how many active events they may run at once.
func HandleCreateEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "ends_at must be after starts_at")
	}
	if req.Capacity < 1 {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "capacity must be at least 1")
	}
	if req.PriceMinor < 0 {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "price_minor must not be negative")
	}

	repo := repository.GetGlobalFactory().GetEventRepository()
	active, err := repo.CountActiveByOrganizerID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to check event limit")
	}
	plan := organizerPlan(c, userCtx.UserID)
	if plan.MaxActiveEvents > 0 && active >= int64(plan.MaxActiveEvents) {
		return jsonError(c, fiber.StatusForbidden, "plan_limit_reached", "Your plan does not allow more active events")
	}
	if plan.MaxTicketsPer > 0 && req.Capacity > plan.MaxTicketsPer {
		return jsonError(c, fiber.StatusForbidden, "plan_limit_reached", "Your plan does not allow events of this capacity")
	}

	currency := req.Currency
	if currency == "" {
		currency = "PHP"
	}
	event := &models.Event{
		OrganizerID: userCtx.UserID,
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		City:        req.City,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		PriceMinor:  req.PriceMinor,
		Currency:    currency,
		Capacity:    req.Capacity,
		Status:      models.EventStatusPending,
	}
	if err := event.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if err := repo.Create(event); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create event")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"event": event})
}

// HandleUpdateEvent lets the owning organizer edit an event. Edits to a
// published event send it back to pending for re-approval.
func HandleUpdateEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetEventRepository()
	event, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Event not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load event")
	}
	if event.OrganizerID != userCtx.UserID && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "You do not own this event")
	}

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "ends_at must be after starts_at")
	}
	if req.Capacity < event.TicketsSold {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "capacity cannot drop below tickets already sold")
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Venue = req.Venue
	event.City = req.City
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.PriceMinor = req.PriceMinor
	event.Capacity = req.Capacity
	if event.Status == models.EventStatusPublished {
		event.Status = models.EventStatusPending
	}
	if err := event.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if err := repo.Update(event); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update event")
	}

	return c.JSON(fiber.Map{"event": event})
}

// HandleListMyEvents returns the authenticated organizer's own events.
func HandleListMyEvents(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := paginate(c)

	repo := repository.GetGlobalFactory().GetEventRepository()
	events, err := repo.GetByOrganizerID(userCtx.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load events")
	}
	return c.JSON(fiber.Map{"events": events})
}

// organizerPlan resolves the plan limits applying to an organizer. Without an
// entitling subscription the free-tier defaults apply.
func organizerPlan(c *fiber.Ctx, userID uint) *models.Plan {
	svc := billing.NewServiceFromDB(database.GetDB())
	sub, err := svc.CurrentSubscription(c.Context(), userID)
	if err != nil || !sub.IsEntitling() {
		return &models.Plan{
			MaxActiveEvents: freeTierMaxActiveEvents,
			MaxTicketsPer:   freeTierMaxTickets,
			AllowPromoCodes: false,
		}
	}
	return &sub.Plan
}
