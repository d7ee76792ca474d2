package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stripe/stripe-go/v78"

	"github.com/MiguelBorja/TechTix/app/models"
)

func stripeEvent(t *testing.T, eventType string, resource interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(resource)
	if err != nil {
		t.Fatalf("marshal resource: %v", err)
	}
	return stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestProcessStripeEventCheckoutCompleted(t *testing.T) {
	svc, repo := setupFakeService()
	sub := repo.addSubscription(&models.Subscription{
		UserID: 1, PlanID: 2, Status: models.SubscriptionStatusIncomplete, Provider: models.ProviderStripe,
	})

	event := stripeEvent(t, "checkout.session.completed", map[string]interface{}{
		"amount_total": 99900,
		"subscription": map[string]interface{}{"id": "sub_stripe_1"},
		"customer":     map[string]interface{}{"id": "cus_1"},
		"metadata":     map[string]string{"plan_code": "plan_pro"},
	})
	if err := svc.ProcessStripeEvent(context.Background(), event); err != nil {
		t.Fatalf("ProcessStripeEvent: %v", err)
	}

	got := repo.subs[sub.ID]
	if got.Status != models.SubscriptionStatusActive {
		t.Fatalf("status = %q, want active", got.Status)
	}
	if got.StripeSubscriptionID != "sub_stripe_1" {
		t.Fatalf("stripe subscription id = %q, want sub_stripe_1", got.StripeSubscriptionID)
	}
	if got.ProviderCustomerID != "cus_1" {
		t.Fatalf("customer id = %q, want cus_1", got.ProviderCustomerID)
	}
}

func TestProcessStripeEventSubscriptionDeleted(t *testing.T) {
	svc, repo := setupFakeService()
	sub := repo.addSubscription(&models.Subscription{
		UserID: 1, PlanID: 2, Status: models.SubscriptionStatusActive,
		Provider: models.ProviderStripe, StripeSubscriptionID: "sub_gone",
	})

	event := stripeEvent(t, "customer.subscription.deleted", map[string]interface{}{
		"id":     "sub_gone",
		"status": "canceled",
	})
	if err := svc.ProcessStripeEvent(context.Background(), event); err != nil {
		t.Fatalf("ProcessStripeEvent: %v", err)
	}
	if repo.subs[sub.ID].Status != models.SubscriptionStatusCanceled {
		t.Fatalf("status = %q, want canceled", repo.subs[sub.ID].Status)
	}
}

func TestProcessStripeEventInvoiceFailed(t *testing.T) {
	svc, repo := setupFakeService()
	sub := repo.addSubscription(&models.Subscription{
		UserID: 1, PlanID: 2, Status: models.SubscriptionStatusActive,
		Provider: models.ProviderStripe, StripeSubscriptionID: "sub_due",
	})

	event := stripeEvent(t, "invoice.payment_failed", map[string]interface{}{
		"subscription": map[string]interface{}{"id": "sub_due"},
	})
	if err := svc.ProcessStripeEvent(context.Background(), event); err != nil {
		t.Fatalf("ProcessStripeEvent: %v", err)
	}
	if repo.subs[sub.ID].Status != models.SubscriptionStatusPastDue {
		t.Fatalf("status = %q, want past_due", repo.subs[sub.ID].Status)
	}
}

func TestProcessStripeEventIgnoresUnknownType(t *testing.T) {
	svc, _ := setupFakeService()
	event := stripeEvent(t, "charge.dispute.created", map[string]interface{}{})
	if err := svc.ProcessStripeEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown event types must be ignored, got %v", err)
	}
}

func TestProcessPaymongoEventDispatch(t *testing.T) {
	svc, repo := setupFakeService()
	sub := repo.addSubscription(&models.Subscription{
		UserID: 1, PlanID: 1, Status: models.SubscriptionStatusIncomplete,
		Provider: models.ProviderPaymongo, PaymongoPaymentIntentID: "pi_disp",
	})

	// payment.failed keeps the subscription incomplete.
	if err := svc.ProcessPaymongoEvent(context.Background(), &PaymentEvent{
		Provider: models.ProviderPaymongo, Type: "payment.failed", PaymentIntentID: "pi_disp",
	}); err != nil {
		t.Fatalf("ProcessPaymongoEvent(payment.failed): %v", err)
	}
	if repo.subs[sub.ID].Status != models.SubscriptionStatusIncomplete {
		t.Fatalf("status after failure = %q, want incomplete", repo.subs[sub.ID].Status)
	}

	// payment.paid activates it.
	if err := svc.ProcessPaymongoEvent(context.Background(), &PaymentEvent{
		Provider: models.ProviderPaymongo, Type: "payment.paid", PaymentIntentID: "pi_disp",
	}); err != nil {
		t.Fatalf("ProcessPaymongoEvent(payment.paid): %v", err)
	}
	if repo.subs[sub.ID].Status != models.SubscriptionStatusActive {
		t.Fatalf("status after payment = %q, want active", repo.subs[sub.ID].Status)
	}

	// Unknown types are acknowledged without error.
	if err := svc.ProcessPaymongoEvent(context.Background(), &PaymentEvent{
		Provider: models.ProviderPaymongo, Type: "link.payment.refunded",
	}); err != nil {
		t.Fatalf("unknown paymongo event types must be ignored, got %v", err)
	}
}

func TestPlanCodeFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		md   map[string]string
		want string
	}{
		{"nil", nil, ""},
		{"plan_code", map[string]string{"plan_code": "plan_pro"}, "plan_pro"},
		{"plan_id fallback", map[string]string{"plan_id": "plan_basic"}, "plan_basic"},
		{"plan_code wins", map[string]string{"plan_code": "plan_pro", "plan_id": "plan_basic"}, "plan_pro"},
		{"whitespace", map[string]string{"plan_code": "  "}, ""},
	}
	for _, tt := range tests {
		if got := planCodeFromMetadata(tt.md); got != tt.want {
			t.Fatalf("%s: planCodeFromMetadata = %q, want %q", tt.name, got, tt.want)
		}
	}
}
