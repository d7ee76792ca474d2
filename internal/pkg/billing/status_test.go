package billing

import (
	"testing"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
)

func TestAllowedSources(t *testing.T) {
	contains := func(set []string, status string) bool {
		for _, s := range set {
			if s == status {
				return true
			}
		}
		return false
	}

	tests := []struct {
		target  string
		from    string
		allowed bool
	}{
		{models.SubscriptionStatusActive, models.SubscriptionStatusIncomplete, true},
		{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing, true},
		{models.SubscriptionStatusActive, models.SubscriptionStatusPastDue, true},
		{models.SubscriptionStatusActive, models.SubscriptionStatusCanceled, false},
		{models.SubscriptionStatusActive, models.SubscriptionStatusIncompleteExpired, false},
		{models.SubscriptionStatusPastDue, models.SubscriptionStatusActive, true},
		{models.SubscriptionStatusPastDue, models.SubscriptionStatusIncomplete, false},
		{models.SubscriptionStatusCanceled, models.SubscriptionStatusActive, true},
		{models.SubscriptionStatusCanceled, models.SubscriptionStatusIncomplete, true},
		{models.SubscriptionStatusCanceled, models.SubscriptionStatusCanceled, false},
		{models.SubscriptionStatusIncompleteExpired, models.SubscriptionStatusIncomplete, true},
		{models.SubscriptionStatusIncompleteExpired, models.SubscriptionStatusActive, false},
		{models.SubscriptionStatusTrialing, models.SubscriptionStatusIncomplete, true},
		{models.SubscriptionStatusTrialing, models.SubscriptionStatusActive, false},
	}
	for _, tt := range tests {
		got := contains(allowedSources(tt.target), tt.from)
		if got != tt.allowed {
			t.Fatalf("allowedSources(%q) contains %q = %v, want %v", tt.target, tt.from, got, tt.allowed)
		}
	}

	if allowedSources("bogus") != nil {
		t.Fatalf("allowedSources(bogus) should be nil")
	}
}

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"active", models.SubscriptionStatusActive},
		{"paid", models.SubscriptionStatusActive},
		{"succeeded", models.SubscriptionStatusActive},
		{"trialing", models.SubscriptionStatusTrialing},
		{"past_due", models.SubscriptionStatusPastDue},
		{"unpaid", models.SubscriptionStatusPastDue},
		{"canceled", models.SubscriptionStatusCanceled},
		{"cancelled", models.SubscriptionStatusCanceled},
		{"incomplete_expired", models.SubscriptionStatusIncompleteExpired},
		{"incomplete", models.SubscriptionStatusIncomplete},
		{" Active ", models.SubscriptionStatusActive},
		{"something_else", models.SubscriptionStatusIncomplete},
		{"", models.SubscriptionStatusIncomplete},
	}
	for _, tt := range tests {
		if got := MapProviderStatus(tt.in); got != tt.want {
			t.Fatalf("MapProviderStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnixToTime(t *testing.T) {
	if unixToTime(0) != nil {
		t.Fatalf("unixToTime(0) should be nil")
	}
	if unixToTime(-5) != nil {
		t.Fatalf("unixToTime(-5) should be nil")
	}
	sec := int64(1700000000)
	got := unixToTime(sec)
	if got == nil || !got.Equal(time.Unix(sec, 0)) {
		t.Fatalf("unixToTime(%d) = %v", sec, got)
	}
}
