package billing

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/stripe/stripe-go/v78"
)

// ProcessStripeEvent maps a verified Stripe event onto the reconciliation
// handlers. Unrecognized event types are logged and ignored.
func (s *Service) ProcessStripeEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return err
		}
		ev := PaymentEvent{
			Provider:       models.ProviderStripe,
			EventID:        event.ID,
			Type:           string(event.Type),
			AmountMinor:    session.AmountTotal,
			ProviderStatus: "active",
			PlanCode:       planCodeFromMetadata(session.Metadata),
		}
		if session.Subscription != nil {
			ev.SubscriptionID = session.Subscription.ID
		}
		if session.Customer != nil {
			ev.CustomerID = session.Customer.ID
		}
		return s.HandleSubscriptionUpdated(ctx, ev)

	case "customer.subscription.created", "customer.subscription.updated":
		sub, err := unmarshalStripeSubscription(event)
		if err != nil {
			return err
		}
		return s.HandleSubscriptionUpdated(ctx, stripeSubscriptionEvent(event, sub))

	case "customer.subscription.deleted":
		sub, err := unmarshalStripeSubscription(event)
		if err != nil {
			return err
		}
		return s.HandleSubscriptionDeleted(ctx, stripeSubscriptionEvent(event, sub))

	case "invoice.payment_succeeded":
		inv, err := unmarshalStripeInvoice(event)
		if err != nil {
			return err
		}
		return s.HandleInvoicePaid(ctx, stripeInvoiceEvent(event, inv))

	case "invoice.payment_failed":
		inv, err := unmarshalStripeInvoice(event)
		if err != nil {
			return err
		}
		return s.HandleInvoiceFailed(ctx, stripeInvoiceEvent(event, inv))

	default:
		log.Printf("billing: ignoring stripe event type %s", event.Type)
		return nil
	}
}

func unmarshalStripeSubscription(event stripe.Event) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func unmarshalStripeInvoice(event stripe.Event) (*stripe.Invoice, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func stripeSubscriptionEvent(event stripe.Event, sub *stripe.Subscription) PaymentEvent {
	ev := PaymentEvent{
		Provider:          models.ProviderStripe,
		EventID:           event.ID,
		Type:              string(event.Type),
		SubscriptionID:    sub.ID,
		ProviderStatus:    string(sub.Status),
		PeriodStart:       sub.CurrentPeriodStart,
		PeriodEnd:         sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		TrialEnd:          sub.TrialEnd,
		PlanCode:          planCodeFromMetadata(sub.Metadata),
	}
	if sub.Customer != nil {
		ev.CustomerID = sub.Customer.ID
	}
	return ev
}

func stripeInvoiceEvent(event stripe.Event, inv *stripe.Invoice) PaymentEvent {
	ev := PaymentEvent{
		Provider:    models.ProviderStripe,
		EventID:     event.ID,
		Type:        string(event.Type),
		AmountMinor: inv.AmountPaid,
		PeriodStart: inv.PeriodStart,
		PeriodEnd:   inv.PeriodEnd,
	}
	if inv.Subscription != nil {
		ev.SubscriptionID = inv.Subscription.ID
	}
	if inv.Customer != nil {
		ev.CustomerID = inv.Customer.ID
	}
	return ev
}

func planCodeFromMetadata(metadata map[string]string) string {
	if metadata == nil {
		return ""
	}
	if code := strings.TrimSpace(metadata["plan_code"]); code != "" {
		return code
	}
	return strings.TrimSpace(metadata["plan_id"])
}

// ProcessPaymongoEvent dispatches a parsed PayMongo event. Unrecognized event
// types are logged and ignored so the processor stops redelivering them.
func (s *Service) ProcessPaymongoEvent(ctx context.Context, ev *PaymentEvent) error {
	switch ev.Type {
	case "payment.paid", "checkout_session.payment.paid":
		return s.HandlePaymentSucceeded(ctx, *ev)
	case "payment.failed":
		return s.HandlePaymentFailed(ctx, *ev)
	case "source.chargeable":
		// The source has funds waiting; the payment resource follows in a
		// later payment.paid event, so nothing transitions yet.
		log.Printf("billing: paymongo source chargeable (amount=%d), awaiting payment event", ev.AmountMinor)
		return nil
	default:
		log.Printf("billing: ignoring paymongo event type %s", ev.Type)
		return nil
	}
}
