package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/app/repository"
	"github.com/MiguelBorja/TechTix/internal/pkg/database"
	"github.com/MiguelBorja/TechTix/internal/pkg/jobqueue"
	"github.com/MiguelBorja/TechTix/internal/pkg/statistics"
	"github.com/MiguelBorja/TechTix/internal/pkg/usercontext"
)

// payoutTransitions maps a target payout status to the statuses it may come
// from. Enforced with a compare-and-set so two admins cannot double-process.
var payoutTransitions = map[string][]string{
	models.PayoutStatusProcessing: {models.PayoutStatusPending},
	models.PayoutStatusCompleted:  {models.PayoutStatusProcessing},
	models.PayoutStatusFailed:     {models.PayoutStatusPending, models.PayoutStatusProcessing},
	models.PayoutStatusCancelled:  {models.PayoutStatusPending},
}

// HandleAdminListPendingEvents returns events awaiting moderation.
func HandleAdminListPendingEvents(c *fiber.Ctx) error {
	offset, limit := paginate(c)
	events, err := repository.GetGlobalFactory().GetEventRepository().ListPending(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load events")
	}
	return c.JSON(fiber.Map{"events": events})
}

// HandleAdminApproveEvent publishes a pending event.
func HandleAdminApproveEvent(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetEventRepository()
	event, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Event not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load event")
	}
	if event.Status != models.EventStatusPending {
		return jsonError(c, fiber.StatusConflict, "invalid_state", "Only pending events can be approved")
	}

	event.Status = models.EventStatusPublished
	event.RejectReason = ""
	if err := repo.Update(event); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update event")
	}

	if err := models.CreateNotification(database.GetDB(), event.OrganizerID, "event",
		"Your event "+event.Title+" has been approved and is now live", event.ID); err != nil {
		log.Printf("admin: failed to notify organizer %d: %v", event.OrganizerID, err)
	}
	return c.JSON(fiber.Map{"event": event})
}

// HandleAdminRejectEvent rejects a pending event with a reason.
func HandleAdminRejectEvent(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}

	repo := repository.GetGlobalFactory().GetEventRepository()
	event, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Event not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load event")
	}
	if event.Status != models.EventStatusPending {
		return jsonError(c, fiber.StatusConflict, "invalid_state", "Only pending events can be rejected")
	}

	event.Status = models.EventStatusRejected
	event.RejectReason = req.Reason
	if err := repo.Update(event); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update event")
	}

	if err := models.CreateNotification(database.GetDB(), event.OrganizerID, "event",
		"Your event "+event.Title+" was rejected: "+req.Reason, event.ID); err != nil {
		log.Printf("admin: failed to notify organizer %d: %v", event.OrganizerID, err)
	}
	return c.JSON(fiber.Map{"event": event})
}

// HandleAdminListUsers returns users, optionally filtered by a search query.
func HandleAdminListUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	if query := c.Query("q"); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to search users")
		}
		return c.JSON(fiber.Map{"users": users})
	}

	offset, limit := paginate(c)
	users, err := repo.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load users")
	}
	total, err := repo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to count users")
	}
	return c.JSON(fiber.Map{"users": users, "total": total})
}

// HandleAdminBanUser suspends a user account.
func HandleAdminBanUser(c *fiber.Ctx) error {
	adminCtx := usercontext.GetUserContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Invalid user id")
	}
	if id == adminCtx.UserID {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "You cannot ban yourself")
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	user.Ban(req.Reason)
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to ban user")
	}
	return c.JSON(fiber.Map{"user": user})
}

// HandleAdminUnbanUser restores a banned user account.
func HandleAdminUnbanUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Invalid user id")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	user.Unban()
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to unban user")
	}
	return c.JSON(fiber.Map{"user": user})
}

// HandleAdminListPayouts returns payouts, filterable by status.
func HandleAdminListPayouts(c *fiber.Ctx) error {
	offset, limit := paginate(c)
	payouts, err := repository.GetGlobalFactory().GetPayoutRepository().List(c.Query("status"), offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payouts")
	}
	return c.JSON(fiber.Map{"payouts": payouts})
}

// HandleAdminUpdatePayout moves a payout to a new status. The transition is a
// compare-and-set; a lost race returns conflict instead of double-processing.
func HandleAdminUpdatePayout(c *fiber.Ctx) error {
	adminCtx := usercontext.GetUserContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Invalid payout id")
	}

	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}
	fromStatuses, ok := payoutTransitions[req.Status]
	if !ok {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "status must be processing, completed, failed or cancelled")
	}

	repo := repository.GetGlobalFactory().GetPayoutRepository()
	applied, err := repo.UpdateStatusIf(id, fromStatuses, req.Status, adminCtx.UserID, time.Now())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update payout")
	}
	if !applied {
		return jsonError(c, fiber.StatusConflict, "invalid_state", "Payout is not in a state that allows this transition")
	}

	payout, err := repo.GetByID(id)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payout")
	}
	if req.Note != "" {
		payout.Note = req.Note
		if err := database.GetDB().Model(payout).Update("note", req.Note).Error; err != nil {
			log.Printf("admin: failed to store payout note for %d: %v", payout.ID, err)
		}
	}

	payload := jobqueue.PayoutNotificationJobPayload{PayoutID: payout.ID, Status: req.Status}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypePayoutNotification, payload.ToMap()); err != nil {
		log.Printf("admin: failed to enqueue payout notification for %d: %v", payout.ID, err)
	}

	return c.JSON(fiber.Map{"payout": payout})
}

// HandleAdminCreatePlan creates a new billing plan.
func HandleAdminCreatePlan(c *fiber.Ctx) error {
	var plan models.Plan
	if err := c.BodyParser(&plan); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}
	if plan.Code == "" || plan.Name == "" {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "code and name are required")
	}
	if plan.PriceMinor < 0 {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "price_minor must not be negative")
	}

	repo := repository.GetGlobalFactory().GetPlanRepository()
	if _, err := repo.GetByCode(plan.Code); err == nil {
		return jsonError(c, fiber.StatusConflict, "code_taken", "A plan with this code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to check plan code")
	}

	if err := repo.Create(&plan); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create plan")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

// HandleAdminListPlans returns all plans including inactive ones.
func HandleAdminListPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().ListAll()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plans")
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleAdminUpdatePlan edits an existing plan.
func HandleAdminUpdatePlan(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Invalid plan id")
	}

	repo := repository.GetGlobalFactory().GetPlanRepository()
	plan, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan")
	}

	var req models.Plan
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}

	// The code is the join key used by webhook metadata; it never changes.
	plan.Name = req.Name
	plan.Description = req.Description
	plan.PriceMinor = req.PriceMinor
	plan.BillingInterval = req.BillingInterval
	plan.StripePriceID = req.StripePriceID
	plan.MaxActiveEvents = req.MaxActiveEvents
	plan.MaxTicketsPer = req.MaxTicketsPer
	plan.AllowPromoCodes = req.AllowPromoCodes
	plan.TrialDays = req.TrialDays
	plan.IsActive = req.IsActive
	plan.IsPopular = req.IsPopular
	if err := repo.Update(plan); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update plan")
	}
	return c.JSON(fiber.Map{"plan": plan})
}

// HandleAdminDeletePlan removes a plan with no live subscriptions.
func HandleAdminDeletePlan(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Invalid plan id")
	}

	repo := repository.GetGlobalFactory().GetPlanRepository()
	count, err := repo.CountLiveSubscriptions(id)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to check subscriptions")
	}
	if count > 0 {
		return jsonError(c, fiber.StatusConflict, "plan_in_use", "This plan still has live subscriptions")
	}

	if err := repo.Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete plan")
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// HandleAdminFinancialReport returns cached platform revenue figures.
func HandleAdminFinancialReport(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"report": statistics.GetFinancialReport()})
}
