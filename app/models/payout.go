package models

import "time"

// Payout status transitions are admin-initiated, never webhook-driven:
// pending -> processing -> completed/failed, pending -> cancelled.
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
	PayoutStatusCancelled  = "cancelled"
)

// Payout is an organizer's withdrawal request against accumulated net revenue.
type Payout struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrganizerID uint       `gorm:"not null;index" json:"organizer_id"`
	AmountMinor int64      `gorm:"not null" json:"amount_minor"`
	Currency    string     `gorm:"type:varchar(3);not null;default:'PHP'" json:"currency"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Note        string     `gorm:"type:text" json:"note"`
	ProcessedBy *uint      `gorm:"index" json:"processed_by,omitempty"`
	ProcessedAt *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Organizer User `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
}

// IsOpen reports whether the payout still reserves organizer balance.
func (p *Payout) IsOpen() bool {
	switch p.Status {
	case PayoutStatusPending, PayoutStatusProcessing, PayoutStatusCompleted:
		return true
	default:
		return false
	}
}
