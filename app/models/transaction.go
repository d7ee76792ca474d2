package models

import "time"

const (
	TransactionStatusPending           = "pending"
	TransactionStatusCompleted         = "completed"
	TransactionStatusFailed            = "failed"
	TransactionStatusRefunded          = "refunded"
	TransactionStatusPartiallyRefunded = "partially_refunded"
)

// Transaction is a one-time payment record for an event booking. The platform
// fee and organizer share are computed once at creation and frozen, so later
// fee-rate changes never alter historical records. All amounts in minor units.
type Transaction struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;index" json:"user_id"`
	EventID           uint       `gorm:"not null;index" json:"event_id"`
	BookingID         uint       `gorm:"not null;index" json:"booking_id"`
	AmountMinor       int64      `gorm:"not null;default:0" json:"amount_minor"`
	PlatformFeeMinor  int64      `gorm:"not null;default:0" json:"platform_fee_minor"`
	OrganizerNetMinor int64      `gorm:"not null;default:0" json:"organizer_net_minor"`
	RefundedMinor     int64      `gorm:"not null;default:0" json:"refunded_minor"`
	Currency          string     `gorm:"type:varchar(3);not null;default:'PHP'" json:"currency"`
	Status            string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	Provider          string     `gorm:"type:varchar(20);not null;index" json:"provider"`
	ProviderPaymentID string     `gorm:"type:varchar(191);default:'';index" json:"-"`
	PaidAt            *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	RefundedAt        *time.Time `gorm:"type:timestamp;default:null" json:"refunded_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsSettled reports whether funds have moved and refunds may apply.
func (t *Transaction) IsSettled() bool {
	switch t.Status {
	case TransactionStatusCompleted, TransactionStatusPartiallyRefunded, TransactionStatusRefunded:
		return true
	default:
		return false
	}
}
