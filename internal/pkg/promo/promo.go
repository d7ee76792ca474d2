package promo

import (
	"errors"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
)

var (
	ErrInactive     = errors.New("promo code is not active")
	ErrExpired      = errors.New("promo code is outside its validity window")
	ErrExhausted    = errors.New("promo code has reached its usage limit")
	ErrWrongEvent   = errors.New("promo code does not apply to this event")
	ErrBelowMinimum = errors.New("order total is below the promo code minimum spend")
)

// Validate checks whether a promo code may be applied to a purchase of
// totalMinor for the given event at time now.
func Validate(code *models.PromoCode, eventID uint, totalMinor int64, now time.Time) error {
	if code == nil || !code.IsActive {
		return ErrInactive
	}
	if code.EventID != nil && *code.EventID != eventID {
		return ErrWrongEvent
	}
	if code.ValidFrom != nil && now.Before(*code.ValidFrom) {
		return ErrExpired
	}
	if code.ValidUntil != nil && now.After(*code.ValidUntil) {
		return ErrExpired
	}
	if code.MaxUses > 0 && code.UsedCount >= code.MaxUses {
		return ErrExhausted
	}
	if totalMinor < code.MinSpendMinor {
		return ErrBelowMinimum
	}
	return nil
}

// Discount computes the minor-unit discount a code grants on totalMinor.
// Percentage values are clamped to 0-100 and fixed discounts never exceed the
// total, so the payable amount cannot go negative.
func Discount(code *models.PromoCode, totalMinor int64) int64 {
	if code == nil || totalMinor <= 0 {
		return 0
	}
	var discount int64
	switch code.DiscountType {
	case models.DiscountTypePercentage:
		pct := code.Value
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discount = totalMinor * pct / 100
	case models.DiscountTypeFixed:
		discount = code.Value
	default:
		return 0
	}
	if discount < 0 {
		return 0
	}
	if discount > totalMinor {
		return totalMinor
	}
	return discount
}

// Apply validates and computes in one step, returning the discount.
func Apply(code *models.PromoCode, eventID uint, totalMinor int64, now time.Time) (int64, error) {
	if err := Validate(code, eventID, totalMinor, now); err != nil {
		return 0, err
	}
	return Discount(code, totalMinor), nil
}
