package billing

import (
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	CreateSubscription(sub *models.Subscription) error
	GetSubscriptionByID(id uint) (*models.Subscription, error)
	FindSubscriptionByPaymentIntentID(paymentIntentID string) (*models.Subscription, error)
	FindSubscriptionByProviderSubscriptionID(providerSubID string) (*models.Subscription, error)
	ListIncompleteSubscriptions() ([]models.Subscription, error)
	GetLatestSubscriptionByUser(userID uint) (*models.Subscription, error)
	CountEntitledSubscriptions(userID uint) (int64, error)
	UpdateSubscriptionIf(id uint, fromStatuses []string, updates map[string]interface{}) (bool, error)
	GetPlan(id uint) (*models.Plan, error)
	GetPlanByCode(code string) (*models.Plan, error)
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	FindTransactionByProviderPaymentID(providerPaymentID string) (*models.Transaction, error)
	SettleTransactionIf(id uint, paidAt time.Time) (bool, error)
	MarkBookingConfirmed(bookingID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) GetSubscriptionByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Preload("Plan").First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) FindSubscriptionByPaymentIntentID(paymentIntentID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").
		Where("paymongo_payment_intent_id = ?", paymentIntentID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) FindSubscriptionByProviderSubscriptionID(providerSubID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").
		Where("stripe_subscription_id = ?", providerSubID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ListIncompleteSubscriptions() ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("Plan").
		Where("status = ?", models.SubscriptionStatusIncomplete).
		Order("created_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) GetLatestSubscriptionByUser(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CountEntitledSubscriptions(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("user_id = ? AND status IN ?", userID,
			[]string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing}).
		Count(&count).Error
	return count, err
}

// UpdateSubscriptionIf applies updates as a single compare-and-set statement.
// The row is only touched while its current status is in fromStatuses; the
// returned bool reports whether the transition landed.
func (r *gormRepository) UpdateSubscriptionIf(id uint, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	tx := r.db.Model(&models.Subscription{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) GetPlan(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetPlanByCode(code string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.Where("code = ?", code).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) FindTransactionByProviderPaymentID(providerPaymentID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("provider_payment_id = ?", providerPaymentID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// SettleTransactionIf completes a pending transaction as a compare-and-set,
// so a redelivered payment event cannot settle twice.
func (r *gormRepository) SettleTransactionIf(id uint, paidAt time.Time) (bool, error) {
	tx := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":  models.TransactionStatusCompleted,
			"paid_at": &paidAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) MarkBookingConfirmed(bookingID uint) error {
	return r.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingStatusPending).
		Update("status", models.BookingStatusConfirmed).Error
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
