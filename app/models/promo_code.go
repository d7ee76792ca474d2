package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// PromoCode is a discount code, either scoped to a single event or global
// (EventID nil). Value is a percentage (0-100) or a fixed minor-unit amount
// depending on DiscountType.
type PromoCode struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Code          string         `gorm:"type:varchar(50);uniqueIndex" json:"code"`
	OrganizerID   uint           `gorm:"not null;index" json:"organizer_id"`
	EventID       *uint          `gorm:"index" json:"event_id,omitempty"`
	DiscountType  string         `gorm:"type:varchar(20);not null;default:'percentage'" json:"discount_type"`
	Value         int64          `gorm:"not null" json:"value"`
	MinSpendMinor int64          `gorm:"not null;default:0" json:"min_spend_minor"`
	MaxUses       int            `gorm:"not null;default:0" json:"max_uses"` // 0 = unlimited
	UsedCount     int            `gorm:"not null;default:0" json:"used_count"`
	ValidFrom     *time.Time     `gorm:"type:timestamp;default:null" json:"valid_from,omitempty"`
	ValidUntil    *time.Time     `gorm:"type:timestamp;default:null" json:"valid_until,omitempty"`
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// NormalizeCode uppercases and trims a user-supplied promo code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
