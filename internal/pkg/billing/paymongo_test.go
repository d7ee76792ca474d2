package billing

import (
	"testing"
)

func TestParsePaymongoEventPaymentResource(t *testing.T) {
	payload := []byte(`{
		"data": {
			"id": "evt_abc",
			"attributes": {
				"type": "payment.paid",
				"data": {
					"id": "pay_123",
					"type": "payment",
					"attributes": {
						"amount": 49900,
						"currency": "PHP",
						"status": "paid",
						"payment_intent_id": "pi_789",
						"metadata": {"plan_code": "plan_pro", "user_id": "7"}
					}
				}
			}
		}
	}`)

	ev, err := ParsePaymongoEvent(payload)
	if err != nil {
		t.Fatalf("ParsePaymongoEvent: %v", err)
	}
	if ev.EventID != "evt_abc" {
		t.Fatalf("event id = %q, want evt_abc", ev.EventID)
	}
	if ev.Type != "payment.paid" {
		t.Fatalf("type = %q, want payment.paid", ev.Type)
	}
	if ev.PaymentIntentID != "pi_789" {
		t.Fatalf("payment intent = %q, want pi_789", ev.PaymentIntentID)
	}
	if ev.AmountMinor != 49900 {
		t.Fatalf("amount = %d, want 49900", ev.AmountMinor)
	}
	if ev.PlanCode != "plan_pro" {
		t.Fatalf("plan code = %q, want plan_pro", ev.PlanCode)
	}
}

func TestParsePaymongoEventNestedPaymentIntent(t *testing.T) {
	payload := []byte(`{
		"data": {
			"id": "evt_nested",
			"attributes": {
				"type": "payment.paid",
				"data": {
					"id": "pay_456",
					"attributes": {
						"amount": 99900,
						"payment_intent": {"id": "pi_nested"}
					}
				}
			}
		}
	}`)

	ev, err := ParsePaymongoEvent(payload)
	if err != nil {
		t.Fatalf("ParsePaymongoEvent: %v", err)
	}
	if ev.PaymentIntentID != "pi_nested" {
		t.Fatalf("payment intent = %q, want pi_nested", ev.PaymentIntentID)
	}
}

func TestParsePaymongoEventIntentResource(t *testing.T) {
	// Some variants deliver the payment intent itself as the event resource.
	payload := []byte(`{
		"data": {
			"id": "evt_intent",
			"attributes": {
				"type": "payment_intent.succeeded",
				"data": {
					"id": "pi_direct",
					"attributes": {"amount": 49900, "status": "succeeded"}
				}
			}
		}
	}`)

	ev, err := ParsePaymongoEvent(payload)
	if err != nil {
		t.Fatalf("ParsePaymongoEvent: %v", err)
	}
	if ev.PaymentIntentID != "pi_direct" {
		t.Fatalf("payment intent = %q, want pi_direct", ev.PaymentIntentID)
	}
	if ev.ProviderStatus != "succeeded" {
		t.Fatalf("provider status = %q, want succeeded", ev.ProviderStatus)
	}
}

func TestParsePaymongoEventPlanIDFallback(t *testing.T) {
	payload := []byte(`{
		"data": {
			"id": "evt_md",
			"attributes": {
				"type": "payment.paid",
				"data": {
					"id": "pay_md",
					"attributes": {
						"amount": 49900,
						"metadata": {"plan_id": "plan_basic"}
					}
				}
			}
		}
	}`)

	ev, err := ParsePaymongoEvent(payload)
	if err != nil {
		t.Fatalf("ParsePaymongoEvent: %v", err)
	}
	if ev.PlanCode != "plan_basic" {
		t.Fatalf("plan code = %q, want plan_basic (plan_id fallback)", ev.PlanCode)
	}
}

func TestParsePaymongoEventRejectsMissingType(t *testing.T) {
	if _, err := ParsePaymongoEvent([]byte(`{"data":{"id":"evt_x","attributes":{}}}`)); err == nil {
		t.Fatalf("expected error for missing event type")
	}
	if _, err := ParsePaymongoEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
