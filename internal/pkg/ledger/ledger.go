package ledger

import (
	"errors"
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
	"gorm.io/gorm"
)

// Platform fee in percent of the gross booking amount. Frozen onto each
// transaction at creation time.
const DefaultPlatformFeePercent = 10

var (
	ErrRefundExceedsAmount = errors.New("refund exceeds refundable amount")
	ErrNotSettled          = errors.New("transaction has no settled funds to refund")
	ErrInsufficientBalance = errors.New("requested payout exceeds available balance")
)

// Split computes the platform fee and organizer share for a gross amount.
// The fee rounds down; the organizer keeps the remainder.
func Split(amountMinor int64, feePercent int64) (fee int64, organizerNet int64) {
	if amountMinor <= 0 {
		return 0, 0
	}
	if feePercent < 0 {
		feePercent = 0
	}
	if feePercent > 100 {
		feePercent = 100
	}
	fee = amountMinor * feePercent / 100
	return fee, amountMinor - fee
}

// NewTransaction builds the booking payment record with the fee split frozen in.
func NewTransaction(booking *models.Booking, provider string) *models.Transaction {
	fee, net := Split(booking.TotalMinor, DefaultPlatformFeePercent)
	return &models.Transaction{
		UserID:            booking.UserID,
		EventID:           booking.EventID,
		BookingID:         booking.ID,
		AmountMinor:       booking.TotalMinor,
		PlatformFeeMinor:  fee,
		OrganizerNetMinor: net,
		Currency:          booking.Currency,
		Status:            models.TransactionStatusPending,
		Provider:          provider,
	}
}

// ApplyRefund records a refund of refundMinor against a settled transaction
// and returns the resulting status. Partial refunds accumulate; a refund of
// the full remaining amount flips the status to refunded.
func ApplyRefund(tx *models.Transaction, refundMinor int64, now time.Time) error {
	if !tx.IsSettled() {
		return ErrNotSettled
	}
	if refundMinor <= 0 || tx.RefundedMinor+refundMinor > tx.AmountMinor {
		return ErrRefundExceedsAmount
	}
	tx.RefundedMinor += refundMinor
	tx.RefundedAt = &now
	if tx.RefundedMinor >= tx.AmountMinor {
		tx.Status = models.TransactionStatusRefunded
	} else {
		tx.Status = models.TransactionStatusPartiallyRefunded
	}
	return nil
}

// AvailableBalance computes what an organizer can withdraw: settled organizer
// net revenue, minus the organizer share of refunds, minus payouts that are
// pending, processing or completed.
func AvailableBalance(db *gorm.DB, organizerID uint) (int64, error) {
	type row struct {
		Net      int64
		Refunded int64
		Gross    int64
	}
	var earned row
	err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(organizer_net_minor),0) AS net, COALESCE(SUM(refunded_minor),0) AS refunded, COALESCE(SUM(amount_minor),0) AS gross").
		Joins("JOIN events ON events.id = transactions.event_id").
		Where("events.organizer_id = ? AND transactions.status IN ?", organizerID, []string{
			models.TransactionStatusCompleted,
			models.TransactionStatusPartiallyRefunded,
			models.TransactionStatusRefunded,
		}).
		Scan(&earned).Error
	if err != nil {
		return 0, err
	}

	// Refunds come out of the organizer share in the same proportion the
	// organizer earned of the gross.
	refundShare := int64(0)
	if earned.Gross > 0 {
		refundShare = earned.Refunded * earned.Net / earned.Gross
	}

	var reserved int64
	err = db.Model(&models.Payout{}).
		Select("COALESCE(SUM(amount_minor),0)").
		Where("organizer_id = ? AND status IN ?", organizerID, []string{
			models.PayoutStatusPending,
			models.PayoutStatusProcessing,
			models.PayoutStatusCompleted,
		}).
		Scan(&reserved).Error
	if err != nil {
		return 0, err
	}

	balance := earned.Net - refundShare - reserved
	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

// RequestPayout validates the requested amount against the available balance
// and creates the pending payout record.
func RequestPayout(db *gorm.DB, organizerID uint, amountMinor int64, currency string) (*models.Payout, error) {
	if amountMinor <= 0 {
		return nil, ErrInsufficientBalance
	}
	balance, err := AvailableBalance(db, organizerID)
	if err != nil {
		return nil, err
	}
	if amountMinor > balance {
		return nil, ErrInsufficientBalance
	}
	payout := &models.Payout{
		OrganizerID: organizerID,
		AmountMinor: amountMinor,
		Currency:    currency,
		Status:      models.PayoutStatusPending,
	}
	if err := db.Create(payout).Error; err != nil {
		return nil, err
	}
	return payout, nil
}
