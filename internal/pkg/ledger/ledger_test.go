package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		percent int64
		fee     int64
		net     int64
	}{
		{"ten percent even", 10000, 10, 1000, 9000},
		{"fee rounds down", 999, 10, 99, 900},
		{"single unit", 1, 10, 0, 1},
		{"zero amount", 0, 10, 0, 0},
		{"negative amount", -500, 10, 0, 0},
		{"zero percent", 10000, 0, 0, 10000},
		{"negative percent clamps", 10000, -5, 0, 10000},
		{"over 100 clamps", 10000, 150, 10000, 0},
	}
	for _, tt := range tests {
		fee, net := Split(tt.amount, tt.percent)
		if fee != tt.fee || net != tt.net {
			t.Fatalf("%s: Split(%d, %d) = (%d, %d), want (%d, %d)",
				tt.name, tt.amount, tt.percent, fee, net, tt.fee, tt.net)
		}
	}
}

func TestNewTransactionFreezesSplit(t *testing.T) {
	booking := &models.Booking{
		ID:         3,
		UserID:     7,
		EventID:    5,
		TotalMinor: 49900,
		Currency:   "PHP",
	}

	tx := NewTransaction(booking, models.ProviderPaymongo)
	if tx.AmountMinor != 49900 {
		t.Fatalf("amount = %d, want 49900", tx.AmountMinor)
	}
	if tx.PlatformFeeMinor != 4990 {
		t.Fatalf("fee = %d, want 4990", tx.PlatformFeeMinor)
	}
	if tx.OrganizerNetMinor != 44910 {
		t.Fatalf("net = %d, want 44910", tx.OrganizerNetMinor)
	}
	if tx.PlatformFeeMinor+tx.OrganizerNetMinor != tx.AmountMinor {
		t.Fatalf("split does not sum to gross")
	}
	if tx.Status != models.TransactionStatusPending {
		t.Fatalf("status = %q, want pending", tx.Status)
	}
	if tx.BookingID != 3 || tx.UserID != 7 || tx.EventID != 5 {
		t.Fatalf("booking references not copied: %+v", tx)
	}
}

func TestApplyRefund(t *testing.T) {
	now := time.Now()

	t.Run("rejects unsettled", func(t *testing.T) {
		tx := &models.Transaction{AmountMinor: 1000, Status: models.TransactionStatusPending}
		if err := ApplyRefund(tx, 500, now); !errors.Is(err, ErrNotSettled) {
			t.Fatalf("ApplyRefund = %v, want ErrNotSettled", err)
		}
	})

	t.Run("partial then full", func(t *testing.T) {
		tx := &models.Transaction{AmountMinor: 1000, Status: models.TransactionStatusCompleted}

		if err := ApplyRefund(tx, 400, now); err != nil {
			t.Fatalf("partial refund: %v", err)
		}
		if tx.Status != models.TransactionStatusPartiallyRefunded {
			t.Fatalf("status = %q, want partially_refunded", tx.Status)
		}
		if tx.RefundedMinor != 400 {
			t.Fatalf("refunded = %d, want 400", tx.RefundedMinor)
		}
		if tx.RefundedAt == nil {
			t.Fatalf("refunded_at not set")
		}

		if err := ApplyRefund(tx, 600, now); err != nil {
			t.Fatalf("remaining refund: %v", err)
		}
		if tx.Status != models.TransactionStatusRefunded {
			t.Fatalf("status = %q, want refunded", tx.Status)
		}
		if tx.RefundedMinor != 1000 {
			t.Fatalf("refunded = %d, want 1000", tx.RefundedMinor)
		}
	})

	t.Run("over-refund rejected", func(t *testing.T) {
		tx := &models.Transaction{AmountMinor: 1000, RefundedMinor: 800, Status: models.TransactionStatusPartiallyRefunded}
		if err := ApplyRefund(tx, 300, now); !errors.Is(err, ErrRefundExceedsAmount) {
			t.Fatalf("ApplyRefund = %v, want ErrRefundExceedsAmount", err)
		}
		if tx.RefundedMinor != 800 {
			t.Fatalf("rejected refund mutated the transaction: %d", tx.RefundedMinor)
		}
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		tx := &models.Transaction{AmountMinor: 1000, Status: models.TransactionStatusCompleted}
		if err := ApplyRefund(tx, 0, now); !errors.Is(err, ErrRefundExceedsAmount) {
			t.Fatalf("ApplyRefund(0) = %v, want ErrRefundExceedsAmount", err)
		}
	})
}
