package repository

import (
	"github.com/MiguelBorja/TechTix/app/models"
	"gorm.io/gorm"
)

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a plan repository backed by GORM
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) GetByCode(code string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.Where("code = ?", code).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("is_active = ?", true).Order("price_minor ASC").Find(&plans).Error
	return plans, err
}

func (r *planRepository) ListAll() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Order("price_minor ASC").Find(&plans).Error
	return plans, err
}

func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

func (r *planRepository) Delete(id uint) error {
	return r.db.Delete(&models.Plan{}, id).Error
}

// CountLiveSubscriptions counts subscriptions that still entitle or may yet
// entitle a user to the plan; deletion is blocked while any exist.
func (r *planRepository) CountLiveSubscriptions(planID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("plan_id = ? AND status IN ?", planID, []string{
			models.SubscriptionStatusActive,
			models.SubscriptionStatusTrialing,
			models.SubscriptionStatusPastDue,
			models.SubscriptionStatusIncomplete,
		}).
		Count(&count).Error
	return count, err
}
