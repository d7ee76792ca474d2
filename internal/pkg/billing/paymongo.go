package billing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
	"github.com/MiguelBorja/TechTix/internal/pkg/env"
)

const defaultPaymongoAPIBaseURL = "https://api.paymongo.com/v1"

// PaymongoClient talks to the PayMongo REST API using secret-key basic auth.
type PaymongoClient struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewPaymongoClientFromEnv() *PaymongoClient {
	return &PaymongoClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("PAYMONGO_SECRET_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("PAYMONGO_API_BASE_URL", defaultPaymongoAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PaymongoPaymentIntent is the subset of the payment-intent resource we use.
type PaymongoPaymentIntent struct {
	ID        string
	ClientKey string
	Status    string
}

// CreatePaymentIntent registers a payment attempt with PayMongo and returns
// the intent whose id becomes the join key for webhook reconciliation.
func (c *PaymongoClient) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, description string, metadata map[string]string) (*PaymongoPaymentIntent, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("PAYMONGO_SECRET_KEY is not configured")
	}
	if amountMinor <= 0 {
		return nil, errors.New("amount must be positive")
	}

	attributes := map[string]interface{}{
		"amount":                 amountMinor,
		"currency":               strings.ToUpper(strings.TrimSpace(currency)),
		"description":            description,
		"payment_method_allowed": []string{"card", "gcash", "paymaya"},
	}
	if len(metadata) > 0 {
		attributes["metadata"] = metadata
	}
	body, err := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{"attributes": attributes},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.APIBaseURL, "/")+"/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.SecretKey+":")))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paymongo payment intent request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var raw struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				ClientKey string `json:"client_key"`
				Status    string `json:"status"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Data.ID) == "" {
		return nil, errors.New("paymongo payment intent response missing id")
	}
	return &PaymongoPaymentIntent{
		ID:        raw.Data.ID,
		ClientKey: raw.Data.Attributes.ClientKey,
		Status:    raw.Data.Attributes.Status,
	}, nil
}

// ParsePaymongoEvent unwraps the PayMongo event envelope
// { data: { id, attributes: { type, data: <resource> } } } into a PaymentEvent.
func ParsePaymongoEvent(payload []byte) (*PaymentEvent, error) {
	type resource struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			Amount          int64             `json:"amount"`
			Currency        string            `json:"currency"`
			Status          string            `json:"status"`
			PaymentIntentID string            `json:"payment_intent_id"`
			Metadata        map[string]string `json:"metadata"`
			PaymentIntent   struct {
				ID string `json:"id"`
			} `json:"payment_intent"`
		} `json:"attributes"`
	}
	var raw struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				Type string   `json:"type"`
				Data resource `json:"data"`
			} `json:"attributes"`
		} `json:"data"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	eventType := strings.TrimSpace(raw.Data.Attributes.Type)
	if eventType == "" {
		return nil, errors.New("paymongo webhook payload missing event type")
	}

	res := raw.Data.Attributes.Data
	intentID := strings.TrimSpace(res.Attributes.PaymentIntentID)
	if intentID == "" {
		intentID = strings.TrimSpace(res.Attributes.PaymentIntent.ID)
	}
	// Some payload variants carry the intent itself as the resource.
	if intentID == "" && strings.HasPrefix(res.ID, "pi_") {
		intentID = res.ID
	}

	ev := &PaymentEvent{
		Provider:        models.ProviderPaymongo,
		EventID:         strings.TrimSpace(raw.Data.ID),
		Type:            eventType,
		PaymentIntentID: intentID,
		AmountMinor:     res.Attributes.Amount,
		ProviderStatus:  strings.TrimSpace(res.Attributes.Status),
	}
	if md := res.Attributes.Metadata; md != nil {
		if code := strings.TrimSpace(md["plan_code"]); code != "" {
			ev.PlanCode = code
		} else if code := strings.TrimSpace(md["plan_id"]); code != "" {
			ev.PlanCode = code
		}
	}
	return ev, nil
}
