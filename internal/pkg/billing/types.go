package billing

// PaymentEvent is the processor-neutral shape of a webhook event after
// envelope parsing. Fields are zero-valued when the processor omits them.
type PaymentEvent struct {
	Provider          string
	EventID           string
	Type              string
	PaymentIntentID   string
	SubscriptionID    string // provider-side subscription id (Stripe)
	CustomerID        string
	AmountMinor       int64
	PlanCode          string // from event metadata, empty when absent
	ProviderStatus    string // processor-reported subscription status
	PeriodStart       int64  // epoch seconds
	PeriodEnd         int64
	CancelAtPeriodEnd bool
	TrialEnd          int64
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
