package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/internal/pkg/jobqueue"
	"gorm.io/gorm"
)

var (
	// ErrNoMatchingSubscription is returned when neither the payment-intent
	// lookup nor the amount fallback resolves an event to a subscription.
	ErrNoMatchingSubscription = errors.New("no subscription matches the payment event")
	// ErrActiveSubscriptionExists guards the one-entitling-subscription-per-user
	// invariant at checkout time.
	ErrActiveSubscriptionExists = errors.New("user already has an active or trialing subscription")
	// ErrPlanNotBillable rejects checkout against free or disabled plans.
	ErrPlanNotBillable = errors.New("plan is not billable")
)

// Service reconciles processor payment events into subscription and booking
// payment state.
type Service struct {
	repo Repository

	// onBookingSettled runs after a booking payment settles, outside the
	// settlement transaction. Nil when no notification hookup is wanted.
	onBookingSettled func(bookingID uint)
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle with
// booking-confirmation notifications wired to the job queue.
func NewServiceFromDB(db *gorm.DB) *Service {
	svc := NewService(NewRepository(db))
	svc.onBookingSettled = enqueueBookingConfirmation
	return svc
}

func enqueueBookingConfirmation(bookingID uint) {
	payload := jobqueue.BookingConfirmationJobPayload{BookingID: bookingID}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeBookingConfirmation, payload.ToMap()); err != nil {
		log.Printf("billing: failed to enqueue confirmation for booking %d: %v", bookingID, err)
	}
}

// settleBookingPayment completes the pending transaction recorded for a
// ticket purchase. The settle is a compare-and-set from pending, so webhook
// redelivery confirms the booking once. Returns false when the payment intent
// does not belong to a booking transaction.
func (s *Service) settleBookingPayment(paymentIntentID string) (bool, error) {
	tx, err := s.repo.FindTransactionByProviderPaymentID(paymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	applied, err := s.repo.SettleTransactionIf(tx.ID, time.Now())
	if err != nil {
		return true, err
	}
	if !applied {
		log.Printf("billing: transaction %d already settled, ignoring redelivery", tx.ID)
		return true, nil
	}
	if err := s.repo.MarkBookingConfirmed(tx.BookingID); err != nil {
		return true, err
	}
	if s.onBookingSettled != nil {
		s.onBookingSettled(tx.BookingID)
	}
	return true, nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ResolveSubscription locates the subscription a payment event refers to.
// Primary key is the stored payment-intent id. The amount fallback applies
// only when the processor omitted the id entirely: it scans incomplete
// subscriptions for a plan priced exactly at the event amount and takes the
// FIRST match; under concurrent incomplete subscriptions of equal price this
// is best-effort, not guaranteed unique. An id that is present but unknown is
// a lookup miss, never a fallback trigger, otherwise any unrelated payment of
// a plan-priced amount could activate an unpaid subscription.
func (s *Service) ResolveSubscription(ctx context.Context, paymentIntentID string, amountMinor int64) (*models.Subscription, error) {
	if id := strings.TrimSpace(paymentIntentID); id != "" {
		sub, err := s.repo.FindSubscriptionByPaymentIntentID(id)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, ErrNoMatchingSubscription
	}
	return s.resolveByAmount(amountMinor)
}

func (s *Service) resolveByAmount(amountMinor int64) (*models.Subscription, error) {
	if amountMinor <= 0 {
		return nil, ErrNoMatchingSubscription
	}
	subs, err := s.repo.ListIncompleteSubscriptions()
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].Plan.PriceMinor == amountMinor {
			return &subs[i], nil
		}
	}
	return nil, ErrNoMatchingSubscription
}

// HandlePaymentSucceeded settles the matching booking transaction when the
// payment belongs to a ticket purchase; otherwise it activates the matching
// subscription and, when the event metadata names a plan, reassigns the
// subscription to it.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, ev PaymentEvent) error {
	if id := strings.TrimSpace(ev.PaymentIntentID); id != "" {
		settled, err := s.settleBookingPayment(id)
		if err != nil {
			return err
		}
		if settled {
			return nil
		}
	}

	sub, err := s.ResolveSubscription(ctx, ev.PaymentIntentID, ev.AmountMinor)
	if err != nil {
		if errors.Is(err, ErrNoMatchingSubscription) {
			log.Printf("billing: %s %s: no matching subscription, dropping", ev.Provider, ev.Type)
			return nil
		}
		return err
	}

	updates := map[string]interface{}{
		"status": models.SubscriptionStatusActive,
	}
	if ev.PaymentIntentID != "" && sub.PaymongoPaymentIntentID == "" {
		updates["paymongo_payment_intent_id"] = ev.PaymentIntentID
	}
	if ev.CustomerID != "" {
		updates["provider_customer_id"] = ev.CustomerID
	}
	if plan := s.planFromMetadata(ev.PlanCode); plan != nil {
		updates["plan_id"] = plan.ID
	}
	applied, err := s.repo.UpdateSubscriptionIf(sub.ID, allowedSources(models.SubscriptionStatusActive), updates)
	if err != nil {
		return err
	}
	if !applied {
		// Terminal or already newer state; redelivery lands here and is a no-op.
		log.Printf("billing: %s %s: subscription %d not transitioned (status=%s)", ev.Provider, ev.Type, sub.ID, sub.Status)
	}
	return nil
}

// HandlePaymentFailed is intentionally status-preserving: a failed payment
// leaves an incomplete subscription incomplete so the user can retry.
func (s *Service) HandlePaymentFailed(ctx context.Context, ev PaymentEvent) error {
	sub, err := s.ResolveSubscription(ctx, ev.PaymentIntentID, ev.AmountMinor)
	if err != nil {
		if errors.Is(err, ErrNoMatchingSubscription) {
			log.Printf("billing: %s %s: no matching subscription, dropping", ev.Provider, ev.Type)
			return nil
		}
		return err
	}
	log.Printf("billing: %s payment failed for subscription %d (status=%s), leaving status unchanged", ev.Provider, sub.ID, sub.Status)
	return nil
}

// HandleSubscriptionUpdated applies processor-reported lifecycle state:
// status mapping, plan reassignment from metadata, and period boundaries.
// Covers created and updated events for both processors.
func (s *Service) HandleSubscriptionUpdated(ctx context.Context, ev PaymentEvent) error {
	sub, err := s.findByProviderRef(ctx, ev)
	if err != nil {
		if errors.Is(err, ErrNoMatchingSubscription) {
			log.Printf("billing: %s %s: no matching subscription, dropping", ev.Provider, ev.Type)
			return nil
		}
		return err
	}

	target := MapProviderStatus(ev.ProviderStatus)
	sources := allowedSources(target)
	if sources == nil {
		log.Printf("billing: %s %s: unmapped provider status %q, ignoring", ev.Provider, ev.Type, ev.ProviderStatus)
		return nil
	}

	updates := map[string]interface{}{
		"status":               target,
		"cancel_at_period_end": ev.CancelAtPeriodEnd,
	}
	if ev.SubscriptionID != "" && sub.StripeSubscriptionID == "" {
		updates["stripe_subscription_id"] = ev.SubscriptionID
	}
	if ev.CustomerID != "" {
		updates["provider_customer_id"] = ev.CustomerID
	}
	if start := unixToTime(ev.PeriodStart); start != nil {
		updates["current_period_start"] = start
	}
	if end := unixToTime(ev.PeriodEnd); end != nil {
		updates["current_period_end"] = end
	}
	if trialEnd := unixToTime(ev.TrialEnd); trialEnd != nil {
		updates["trial_end"] = trialEnd
	}
	if plan := s.planFromMetadata(ev.PlanCode); plan != nil {
		updates["plan_id"] = plan.ID
	}

	_, err = s.repo.UpdateSubscriptionIf(sub.ID, sources, updates)
	return err
}

// HandleSubscriptionDeleted cancels the subscription and stamps canceled_at.
func (s *Service) HandleSubscriptionDeleted(ctx context.Context, ev PaymentEvent) error {
	sub, err := s.findByProviderRef(ctx, ev)
	if err != nil {
		if errors.Is(err, ErrNoMatchingSubscription) {
			log.Printf("billing: %s %s: no matching subscription, dropping", ev.Provider, ev.Type)
			return nil
		}
		return err
	}

	now := time.Now()
	_, err = s.repo.UpdateSubscriptionIf(sub.ID, allowedSources(models.SubscriptionStatusCanceled), map[string]interface{}{
		"status":      models.SubscriptionStatusCanceled,
		"canceled_at": &now,
	})
	return err
}

// HandleInvoiceFailed moves a billed subscription to past_due. Subscriptions
// still in incomplete are left untouched (retry-pending state).
func (s *Service) HandleInvoiceFailed(ctx context.Context, ev PaymentEvent) error {
	sub, err := s.findByProviderRef(ctx, ev)
	if err != nil {
		if errors.Is(err, ErrNoMatchingSubscription) {
			log.Printf("billing: %s %s: no matching subscription, dropping", ev.Provider, ev.Type)
			return nil
		}
		return err
	}

	_, err = s.repo.UpdateSubscriptionIf(sub.ID, allowedSources(models.SubscriptionStatusPastDue), map[string]interface{}{
		"status": models.SubscriptionStatusPastDue,
	})
	return err
}

// HandleInvoicePaid re-activates a subscription after a successful renewal
// invoice and refreshes the billing period.
func (s *Service) HandleInvoicePaid(ctx context.Context, ev PaymentEvent) error {
	sub, err := s.findByProviderRef(ctx, ev)
	if err != nil {
		if errors.Is(err, ErrNoMatchingSubscription) {
			log.Printf("billing: %s %s: no matching subscription, dropping", ev.Provider, ev.Type)
			return nil
		}
		return err
	}

	updates := map[string]interface{}{
		"status": models.SubscriptionStatusActive,
	}
	if start := unixToTime(ev.PeriodStart); start != nil {
		updates["current_period_start"] = start
	}
	if end := unixToTime(ev.PeriodEnd); end != nil {
		updates["current_period_end"] = end
	}
	_, err = s.repo.UpdateSubscriptionIf(sub.ID, allowedSources(models.SubscriptionStatusActive), updates)
	return err
}

// findByProviderRef resolves subscription-lifecycle events: by the provider
// subscription id first, then through the shared payment-intent/amount path.
func (s *Service) findByProviderRef(ctx context.Context, ev PaymentEvent) (*models.Subscription, error) {
	if id := strings.TrimSpace(ev.SubscriptionID); id != "" {
		sub, err := s.repo.FindSubscriptionByProviderSubscriptionID(id)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.ResolveSubscription(ctx, ev.PaymentIntentID, ev.AmountMinor)
}

func (s *Service) planFromMetadata(planCode string) *models.Plan {
	code := strings.TrimSpace(planCode)
	if code == "" {
		return nil
	}
	plan, err := s.repo.GetPlanByCode(code)
	if err != nil {
		log.Printf("billing: event metadata names unknown plan %q, keeping current plan", code)
		return nil
	}
	return plan
}

// StartCheckout creates the local subscription record for a checkout attempt.
// The one-entitling-subscription-per-user invariant is enforced by a
// query-time check, not a database constraint.
func (s *Service) StartCheckout(ctx context.Context, userID uint, planID uint, provider string, paymentIntentID string, customerID string) (*models.Subscription, error) {
	plan, err := s.repo.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive || !plan.IsBillable() {
		return nil, ErrPlanNotBillable
	}

	count, err := s.repo.CountEntitledSubscriptions(userID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrActiveSubscriptionExists
	}

	sub := &models.Subscription{
		UserID:                  userID,
		PlanID:                  plan.ID,
		Provider:                strings.ToLower(strings.TrimSpace(provider)),
		PaymongoPaymentIntentID: strings.TrimSpace(paymentIntentID),
		ProviderCustomerID:      strings.TrimSpace(customerID),
		Status:                  models.SubscriptionStatusIncomplete,
	}
	if plan.TrialDays > 0 {
		trialEnd := time.Now().AddDate(0, 0, plan.TrialDays)
		sub.Status = models.SubscriptionStatusTrialing
		sub.TrialEnd = &trialEnd
	}
	if err := s.repo.CreateSubscription(sub); err != nil {
		return nil, err
	}
	sub.Plan = *plan
	return sub, nil
}

// RequestCancellation flags the user's entitling subscription to end at the
// period boundary. Terminal cancellation arrives later via webhook.
func (s *Service) RequestCancellation(ctx context.Context, userID uint) (*models.Subscription, error) {
	sub, err := s.repo.GetLatestSubscriptionByUser(userID)
	if err != nil {
		return nil, err
	}
	if !sub.IsEntitling() {
		return nil, gorm.ErrRecordNotFound
	}
	_, err = s.repo.UpdateSubscriptionIf(sub.ID,
		[]string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing},
		map[string]interface{}{"cancel_at_period_end": true})
	if err != nil {
		return nil, err
	}
	sub.CancelAtPeriodEnd = true
	return sub, nil
}

// CurrentSubscription returns the user's most recent subscription with plan.
func (s *Service) CurrentSubscription(ctx context.Context, userID uint) (*models.Subscription, error) {
	return s.repo.GetLatestSubscriptionByUser(userID)
}
