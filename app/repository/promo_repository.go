package repository

import (
	"github.com/MiguelBorja/TechTix/app/models"
	"gorm.io/gorm"
)

type promoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository creates a promo code repository backed by GORM
func NewPromoCodeRepository(db *gorm.DB) PromoCodeRepository {
	return &promoCodeRepository{db: db}
}

func (r *promoCodeRepository) Create(code *models.PromoCode) error {
	return r.db.Create(code).Error
}

func (r *promoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.Where("code = ?", models.NormalizeCode(code)).First(&promo).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promoCodeRepository) GetByOrganizerID(organizerID uint) ([]models.PromoCode, error) {
	var promos []models.PromoCode
	err := r.db.Where("organizer_id = ?", organizerID).Order("created_at DESC").Find(&promos).Error
	return promos, err
}

// IncrementUsage consumes one use atomically; the guard prevents exceeding
// max_uses under concurrent bookings.
func (r *promoCodeRepository) IncrementUsage(id uint) (bool, error) {
	tx := r.db.Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// DecrementUsage returns a consumed use when a booking fails after the claim.
func (r *promoCodeRepository) DecrementUsage(id uint) error {
	return r.db.Model(&models.PromoCode{}).
		Where("id = ? AND used_count > 0", id).
		Update("used_count", gorm.Expr("used_count - 1")).Error
}

func (r *promoCodeRepository) Update(code *models.PromoCode) error {
	return r.db.Save(code).Error
}
