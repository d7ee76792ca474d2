package promo

import (
	"errors"
	"testing"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
)

func timePtr(t time.Time) *time.Time { return &t }
func uintPtr(v uint) *uint           { return &v }

func TestValidate(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		code    *models.PromoCode
		eventID uint
		total   int64
		wantErr error
	}{
		{
			"nil code",
			nil,
			1, 1000, ErrInactive,
		},
		{
			"inactive",
			&models.PromoCode{IsActive: false},
			1, 1000, ErrInactive,
		},
		{
			"wrong event",
			&models.PromoCode{IsActive: true, EventID: uintPtr(2)},
			1, 1000, ErrWrongEvent,
		},
		{
			"global code any event",
			&models.PromoCode{IsActive: true, DiscountType: models.DiscountTypePercentage, Value: 10},
			42, 1000, nil,
		},
		{
			"not yet valid",
			&models.PromoCode{IsActive: true, ValidFrom: timePtr(now.Add(time.Hour))},
			1, 1000, ErrExpired,
		},
		{
			"expired",
			&models.PromoCode{IsActive: true, ValidUntil: timePtr(now.Add(-time.Hour))},
			1, 1000, ErrExpired,
		},
		{
			"inside window",
			&models.PromoCode{IsActive: true, ValidFrom: timePtr(now.Add(-time.Hour)), ValidUntil: timePtr(now.Add(time.Hour))},
			1, 1000, nil,
		},
		{
			"exhausted",
			&models.PromoCode{IsActive: true, MaxUses: 5, UsedCount: 5},
			1, 1000, ErrExhausted,
		},
		{
			"zero max uses means unlimited",
			&models.PromoCode{IsActive: true, MaxUses: 0, UsedCount: 9999},
			1, 1000, nil,
		},
		{
			"below minimum spend",
			&models.PromoCode{IsActive: true, MinSpendMinor: 5000},
			1, 4999, ErrBelowMinimum,
		},
		{
			"at minimum spend",
			&models.PromoCode{IsActive: true, MinSpendMinor: 5000},
			1, 5000, nil,
		},
	}
	for _, tt := range tests {
		err := Validate(tt.code, tt.eventID, tt.total, now)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: Validate = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name  string
		code  *models.PromoCode
		total int64
		want  int64
	}{
		{"nil code", nil, 1000, 0},
		{"zero total", &models.PromoCode{DiscountType: models.DiscountTypePercentage, Value: 10}, 0, 0},
		{"ten percent", &models.PromoCode{DiscountType: models.DiscountTypePercentage, Value: 10}, 49900, 4990},
		{"percentage floors", &models.PromoCode{DiscountType: models.DiscountTypePercentage, Value: 15}, 999, 149},
		{"percentage over 100 clamps", &models.PromoCode{DiscountType: models.DiscountTypePercentage, Value: 150}, 1000, 1000},
		{"negative percentage clamps", &models.PromoCode{DiscountType: models.DiscountTypePercentage, Value: -10}, 1000, 0},
		{"fixed amount", &models.PromoCode{DiscountType: models.DiscountTypeFixed, Value: 2500}, 10000, 2500},
		{"fixed exceeds total caps", &models.PromoCode{DiscountType: models.DiscountTypeFixed, Value: 20000}, 10000, 10000},
		{"negative fixed value", &models.PromoCode{DiscountType: models.DiscountTypeFixed, Value: -500}, 10000, 0},
		{"unknown type", &models.PromoCode{DiscountType: "bogus", Value: 50}, 10000, 0},
	}
	for _, tt := range tests {
		if got := Discount(tt.code, tt.total); got != tt.want {
			t.Fatalf("%s: Discount = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	now := time.Now()
	code := &models.PromoCode{
		IsActive:     true,
		DiscountType: models.DiscountTypePercentage,
		Value:        20,
	}

	discount, err := Apply(code, 1, 10000, now)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if discount != 2000 {
		t.Fatalf("Apply discount = %d, want 2000", discount)
	}

	code.IsActive = false
	if _, err := Apply(code, 1, 10000, now); !errors.Is(err, ErrInactive) {
		t.Fatalf("Apply on inactive code = %v, want ErrInactive", err)
	}
}
