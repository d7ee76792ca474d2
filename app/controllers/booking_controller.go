package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/app/repository"
	"github.com/MiguelBorja/TechTix/internal/pkg/billing"
	"github.com/MiguelBorja/TechTix/internal/pkg/jobqueue"
	"github.com/MiguelBorja/TechTix/internal/pkg/ledger"
	"github.com/MiguelBorja/TechTix/internal/pkg/promo"
	"github.com/MiguelBorja/TechTix/internal/pkg/usercontext"
)

const maxTicketsPerBooking = 10

type bookingRequest struct {
	EventUUID string `json:"event_uuid"`
	Quantity  int    `json:"quantity"`
	PromoCode string `json:"promo_code"`
}

var (
	errSoldOut        = errors.New("not enough tickets remaining")
	errPromoExhausted = errors.New("promo code has reached its usage limit")
)

// claimBookingInventory claims event capacity and, when a promo code is used,
// one promo use. On any failure nothing stays held.
func claimBookingInventory(events repository.EventRepository, promos repository.PromoCodeRepository, eventID uint, quantity int, promoID *uint) error {
	claimed, err := events.IncrementTicketsSold(eventID, quantity)
	if err != nil {
		return err
	}
	if !claimed {
		return errSoldOut
	}
	if promoID == nil {
		return nil
	}
	consumed, err := promos.IncrementUsage(*promoID)
	if err != nil {
		_ = events.DecrementTicketsSold(eventID, quantity)
		return err
	}
	if !consumed {
		_ = events.DecrementTicketsSold(eventID, quantity)
		return errPromoExhausted
	}
	return nil
}

// releaseBookingInventory undoes a successful claim when a later step fails.
func releaseBookingInventory(events repository.EventRepository, promos repository.PromoCodeRepository, eventID uint, quantity int, promoID *uint) {
	_ = events.DecrementTicketsSold(eventID, quantity)
	if promoID != nil {
		_ = promos.DecrementUsage(*promoID)
	}
}

// HandleCreateBooking reserves tickets for a published event. Capacity is
// claimed atomically before the booking row is written, so concurrent requests
// cannot oversell.
func HandleCreateBooking(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req bookingRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}
	if req.Quantity < 1 || req.Quantity > maxTicketsPerBooking {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "quantity must be between 1 and 10")
	}

	factory := repository.GetGlobalFactory()
	eventRepo := factory.GetEventRepository()
	event, err := eventRepo.GetByUUID(req.EventUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Event not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load event")
	}
	if !event.IsPublished() {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Event not found")
	}
	if time.Now().After(event.EndsAt) {
		return jsonError(c, fiber.StatusGone, "event_ended", "This event has already ended")
	}

	total := event.PriceMinor * int64(req.Quantity)
	var discount int64
	var promoID *uint
	promoRepo := factory.GetPromoCodeRepository()
	if req.PromoCode != "" {
		code, err := promoRepo.GetByCode(req.PromoCode)
		if err != nil {
			return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_promo_code", "Promo code not found")
		}
		discount, err = promo.Apply(code, event.ID, total, time.Now())
		if err != nil {
			return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_promo_code", err.Error())
		}
		promoID = &code.ID
	}

	if err := claimBookingInventory(eventRepo, promoRepo, event.ID, req.Quantity, promoID); err != nil {
		switch {
		case errors.Is(err, errSoldOut):
			return jsonError(c, fiber.StatusConflict, "sold_out", "Not enough tickets remaining")
		case errors.Is(err, errPromoExhausted):
			return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_promo_code", "Promo code has reached its usage limit")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to reserve tickets")
		}
	}

	booking := &models.Booking{
		UserID:        userCtx.UserID,
		EventID:       event.ID,
		PromoCodeID:   promoID,
		Quantity:      req.Quantity,
		UnitMinor:     event.PriceMinor,
		DiscountMinor: discount,
		TotalMinor:    total - discount,
		Currency:      event.Currency,
		Status:        models.BookingStatusPending,
	}
	bookingRepo := factory.GetBookingRepository()
	if err := bookingRepo.Create(booking); err != nil {
		releaseBookingInventory(eventRepo, promoRepo, event.ID, req.Quantity, promoID)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create booking")
	}

	tx := ledger.NewTransaction(booking, models.ProviderPaymongo)
	clientKey := ""
	if booking.TotalMinor == 0 {
		// Free tickets settle immediately.
		now := time.Now()
		tx.Status = models.TransactionStatusCompleted
		tx.PaidAt = &now
		booking.Status = models.BookingStatusConfirmed
	} else {
		// The intent id is the join key the webhook uses to settle this
		// transaction on payment.paid.
		intent, err := billing.NewPaymongoClientFromEnv().CreatePaymentIntent(
			c.Context(), booking.TotalMinor, booking.Currency,
			"TechTix tickets "+booking.TicketCode,
			map[string]string{
				"booking_id":  strconv.FormatUint(uint64(booking.ID), 10),
				"ticket_code": booking.TicketCode,
			})
		if err != nil {
			log.Printf("booking: payment intent creation failed for booking %d: %v", booking.ID, err)
			booking.Status = models.BookingStatusCancelled
			_ = bookingRepo.Update(booking)
			releaseBookingInventory(eventRepo, promoRepo, event.ID, req.Quantity, promoID)
			return jsonError(c, fiber.StatusBadGateway, "payment_provider_error", "Failed to start the payment")
		}
		tx.ProviderPaymentID = intent.ID
		clientKey = intent.ClientKey
	}
	if err := bookingRepo.CreateTransaction(tx); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to record payment")
	}
	if booking.Status == models.BookingStatusConfirmed {
		if err := bookingRepo.Update(booking); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to confirm booking")
		}
		payload := jobqueue.BookingConfirmationJobPayload{BookingID: booking.ID}
		if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeBookingConfirmation, payload.ToMap()); err != nil {
			log.Printf("booking: failed to enqueue confirmation for booking %d: %v", booking.ID, err)
		}
	}

	resp := fiber.Map{
		"booking":     booking,
		"transaction": tx,
	}
	if clientKey != "" {
		resp["client_key"] = clientKey
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleListMyBookings returns the authenticated user's bookings.
func HandleListMyBookings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := paginate(c)

	bookings, err := repository.GetGlobalFactory().GetBookingRepository().GetByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load bookings")
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

// HandleGetBooking returns one booking by ticket code, owner only.
func HandleGetBooking(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	booking, err := repository.GetGlobalFactory().GetBookingRepository().GetByTicketCode(c.Params("code"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Booking not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load booking")
	}
	if booking.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Booking not found")
	}
	return c.JSON(fiber.Map{"booking": booking})
}

// HandleCancelBooking cancels a booking before the event starts and refunds
// settled payments in full. Capacity returns to the pool.
func HandleCancelBooking(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	factory := repository.GetGlobalFactory()
	bookingRepo := factory.GetBookingRepository()
	booking, err := bookingRepo.GetByTicketCode(c.Params("code"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Booking not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load booking")
	}
	if booking.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Booking not found")
	}
	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusRefunded {
		return jsonError(c, fiber.StatusConflict, "already_cancelled", "This booking is already cancelled")
	}
	if time.Now().After(booking.Event.StartsAt) {
		return jsonError(c, fiber.StatusConflict, "event_started", "Bookings cannot be cancelled after the event starts")
	}

	tx, err := bookingRepo.GetTransactionByBookingID(booking.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payment")
	}

	booking.Status = models.BookingStatusCancelled
	if tx != nil && tx.IsSettled() {
		remaining := tx.AmountMinor - tx.RefundedMinor
		if remaining > 0 {
			if err := ledger.ApplyRefund(tx, remaining, time.Now()); err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to apply refund")
			}
			if err := bookingRepo.UpdateTransaction(tx); err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to record refund")
			}
		}
		booking.Status = models.BookingStatusRefunded
	}
	if err := bookingRepo.Update(booking); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to cancel booking")
	}
	if err := factory.GetEventRepository().DecrementTicketsSold(booking.EventID, booking.Quantity); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to release tickets")
	}

	return c.JSON(fiber.Map{"booking": booking, "transaction": tx})
}
