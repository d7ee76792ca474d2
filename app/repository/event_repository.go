package repository

import (
	"github.com/MiguelBorja/TechTix/app/models"
	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates an event repository backed by GORM
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

func (r *eventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) GetByUUID(uuid string) (*models.Event, error) {
	var event models.Event
	if err := r.db.Where("uuid = ?", uuid).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) GetByOrganizerID(organizerID uint, offset, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("organizer_id = ?", organizerID).
		Order("starts_at DESC").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

func (r *eventRepository) CountActiveByOrganizerID(organizerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("organizer_id = ? AND status IN ? AND ends_at > NOW()", organizerID,
			[]string{models.EventStatusPending, models.EventStatusPublished}).
		Count(&count).Error
	return count, err
}

func (r *eventRepository) Update(event *models.Event) error {
	return r.db.Save(event).Error
}

func (r *eventRepository) ListPublished(city, query string, offset, limit int) ([]models.Event, error) {
	var events []models.Event
	tx := r.db.Where("status = ?", models.EventStatusPublished)
	if city != "" {
		tx = tx.Where("city = ?", city)
	}
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	err := tx.Order("starts_at ASC").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

func (r *eventRepository) ListPending(offset, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Organizer").
		Where("status = ?", models.EventStatusPending).
		Order("created_at ASC").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

// IncrementTicketsSold reserves capacity atomically; the guard in the WHERE
// clause prevents overselling under concurrent bookings.
func (r *eventRepository) IncrementTicketsSold(id uint, quantity int) (bool, error) {
	tx := r.db.Model(&models.Event{}).
		Where("id = ? AND tickets_sold + ? <= capacity", id, quantity).
		Update("tickets_sold", gorm.Expr("tickets_sold + ?", quantity))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *eventRepository) DecrementTicketsSold(id uint, quantity int) error {
	return r.db.Model(&models.Event{}).
		Where("id = ? AND tickets_sold >= ?", id, quantity).
		Update("tickets_sold", gorm.Expr("tickets_sold - ?", quantity)).Error
}
