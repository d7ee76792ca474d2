package repository

import (
	"github.com/MiguelBorja/TechTix/app/models"
	"gorm.io/gorm"
)

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a booking repository backed by GORM
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

func (r *bookingRepository) GetByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Preload("Event").First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) GetByTicketCode(code string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Preload("Event").Where("ticket_code = ?", code).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) GetByUserID(userID uint, offset, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) Update(booking *models.Booking) error {
	return r.db.Save(booking).Error
}

func (r *bookingRepository) CreateTransaction(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *bookingRepository) GetTransactionByBookingID(bookingID uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.Where("booking_id = ?", bookingID).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *bookingRepository) UpdateTransaction(tx *models.Transaction) error {
	return r.db.Save(tx).Error
}
