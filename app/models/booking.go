package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusRefunded  = "refunded"
)

// Booking is a user's ticket purchase for an event. The ticket code doubles
// as the public identifier presented at the venue.
type Booking struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TicketCode    string         `gorm:"type:varchar(36);uniqueIndex" json:"ticket_code"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	EventID       uint           `gorm:"not null;index" json:"event_id"`
	PromoCodeID   *uint          `gorm:"index" json:"promo_code_id,omitempty"`
	Quantity      int            `gorm:"not null;default:1" json:"quantity"`
	UnitMinor     int64          `gorm:"not null;default:0" json:"unit_minor"`
	DiscountMinor int64          `gorm:"not null;default:0" json:"discount_minor"`
	TotalMinor    int64          `gorm:"not null;default:0" json:"total_minor"`
	Currency      string         `gorm:"type:varchar(3);not null;default:'PHP'" json:"currency"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// BeforeCreate assigns the ticket code.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.TicketCode == "" {
		b.TicketCode = uuid.New().String()
	}
	return nil
}
