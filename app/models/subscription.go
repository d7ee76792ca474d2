package models

import "time"

// Subscription status values follow the processor-neutral lifecycle:
// incomplete -> active on payment success, trialing on trial start,
// active/trialing -> past_due on invoice failure, any non-terminal -> canceled.
// canceled and incomplete_expired are terminal.
const (
	SubscriptionStatusIncomplete        = "incomplete"
	SubscriptionStatusIncompleteExpired = "incomplete_expired"
	SubscriptionStatusTrialing          = "trialing"
	SubscriptionStatusActive            = "active"
	SubscriptionStatusPastDue           = "past_due"
	SubscriptionStatusCanceled          = "canceled"
)

// Payment provider constants used across billing-related models.
const (
	ProviderPaymongo = "paymongo"
	ProviderStripe   = "stripe"
)

// Subscription is an organizer's recurring billing relationship to a Plan.
// Subscriptions are never hard-deleted, only status-mutated.
type Subscription struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	UserID                  uint       `gorm:"not null;index" json:"user_id"`
	PlanID                  uint       `gorm:"not null;index" json:"plan_id"`
	Status                  string     `gorm:"type:varchar(32);not null;default:'incomplete';index" json:"status"`
	Provider                string     `gorm:"type:varchar(20);not null;index" json:"provider"`
	PaymongoPaymentIntentID string     `gorm:"type:varchar(191);default:'';index" json:"-"`
	StripeSubscriptionID    string     `gorm:"type:varchar(191);default:'';index" json:"-"`
	ProviderCustomerID      string     `gorm:"type:varchar(191);default:''" json:"-"`
	CurrentPeriodStart      *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd        *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd       bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CanceledAt              *time.Time `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	TrialEnd                *time.Time `gorm:"type:timestamp;default:null" json:"trial_end,omitempty"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Plan Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// IsTerminal reports whether no further webhook-driven transition may apply.
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCanceled || s.Status == SubscriptionStatusIncompleteExpired
}

// IsEntitling reports whether the subscription currently grants plan features.
func (s *Subscription) IsEntitling() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return true
	default:
		return false
	}
}
