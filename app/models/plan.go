package models

import "time"

const (
	BillingIntervalMonth   = "month"
	BillingIntervalYear    = "year"
	BillingIntervalUnknown = "unknown"
)

// Plan is a billing tier for organizers. Prices are stored in minor currency
// units (e.g. centavos), never floats.
type Plan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Code            string    `gorm:"type:varchar(50);uniqueIndex" json:"code"`
	Name            string    `gorm:"type:varchar(100);not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	PriceMinor      int64     `gorm:"not null;default:0" json:"price_minor"`
	Currency        string    `gorm:"type:varchar(3);not null;default:'PHP'" json:"currency"`
	BillingInterval string    `gorm:"type:varchar(16);not null;default:'month'" json:"billing_interval"`
	StripePriceID   string    `gorm:"type:varchar(191);default:''" json:"-"`
	MaxActiveEvents int       `gorm:"not null;default:3" json:"max_active_events"`
	MaxTicketsPer   int       `gorm:"not null;default:100" json:"max_tickets_per_event"`
	AllowPromoCodes bool      `gorm:"default:false" json:"allow_promo_codes"`
	TrialDays       int       `gorm:"not null;default:0" json:"trial_days"`
	IsActive        bool      `gorm:"default:true;index" json:"is_active"`
	IsPopular       bool      `gorm:"default:false" json:"is_popular"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsBillable reports whether the plan carries a non-zero price.
func (p *Plan) IsBillable() bool {
	return p.PriceMinor > 0
}
