package repository

import (
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
	"gorm.io/gorm"
)

type payoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates a payout repository backed by GORM
func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) GetByID(id uint) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.Preload("Organizer").First(&payout, id).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepository) GetByOrganizerID(organizerID uint, offset, limit int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.Where("organizer_id = ?", organizerID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&payouts).Error
	return payouts, err
}

func (r *payoutRepository) List(status string, offset, limit int) ([]models.Payout, error) {
	var payouts []models.Payout
	tx := r.db.Preload("Organizer")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	err := tx.Order("created_at ASC").Offset(offset).Limit(limit).Find(&payouts).Error
	return payouts, err
}

// UpdateStatusIf transitions a payout in a single compare-and-set statement
// and stamps the admin audit fields.
func (r *payoutRepository) UpdateStatusIf(id uint, fromStatuses []string, toStatus string, processedBy uint, processedAt time.Time) (bool, error) {
	tx := r.db.Model(&models.Payout{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(map[string]interface{}{
			"status":       toStatus,
			"processed_by": processedBy,
			"processed_at": processedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
