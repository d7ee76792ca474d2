package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/internal/pkg/database"
	"github.com/MiguelBorja/TechTix/internal/pkg/mail"
)

// processPayoutNotificationJob writes the in-app notification and emails the
// organizer after an admin moved their payout to a new status.
func (q *Queue) processPayoutNotificationJob(ctx context.Context, job *Job) error {
	payload, err := PayoutNotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid payout notification payload: %w", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	var payout models.Payout
	if err := db.Preload("Organizer").First(&payout, payload.PayoutID).Error; err != nil {
		return fmt.Errorf("payout %d not found: %w", payload.PayoutID, err)
	}

	content := fmt.Sprintf("Your payout of %d.%02d %s is now %s",
		payout.AmountMinor/100, payout.AmountMinor%100, payout.Currency, payload.Status)
	if err := models.CreateNotification(db, payout.OrganizerID, "payout", content, payout.ID); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	subject, body := mail.PayoutStatusBody(payout.Organizer.Name, payout.AmountMinor, payout.Currency, payload.Status)
	if err := mail.SendMail(payout.Organizer.Email, subject, body); err != nil {
		// The in-app notification exists; a mail failure is not worth a retry storm.
		log.Errorf("[JobQueue] Payout notification mail to %s failed: %v", payout.Organizer.Email, err)
	}
	return nil
}

// processBookingConfirmationJob emails the ticket code after a booking confirms.
func (q *Queue) processBookingConfirmationJob(ctx context.Context, job *Job) error {
	payload, err := BookingConfirmationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid booking confirmation payload: %w", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	var booking models.Booking
	if err := db.Preload("User").Preload("Event").First(&booking, payload.BookingID).Error; err != nil {
		return fmt.Errorf("booking %d not found: %w", payload.BookingID, err)
	}

	content := fmt.Sprintf("Your booking for %s is confirmed. Ticket code: %s", booking.Event.Title, booking.TicketCode)
	if err := models.CreateNotification(db, booking.UserID, "booking", content, booking.ID); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	subject := fmt.Sprintf("Your tickets for %s", booking.Event.Title)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your booking for <strong>%s</strong> is confirmed.</p><p>Ticket code: <strong>%s</strong> (%d tickets)</p><p>The TechTix team</p>",
		booking.User.Name, booking.Event.Title, booking.TicketCode, booking.Quantity,
	)
	if err := mail.SendMail(booking.User.Email, subject, body); err != nil {
		log.Errorf("[JobQueue] Booking confirmation mail to %s failed: %v", booking.User.Email, err)
	}
	return nil
}
