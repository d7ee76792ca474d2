package repository

import (
	"time"

	"github.com/MiguelBorja/TechTix/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// EventRepository defines the interface for event-related database operations
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id uint) (*models.Event, error)
	GetByUUID(uuid string) (*models.Event, error)
	GetByOrganizerID(organizerID uint, offset, limit int) ([]models.Event, error)
	CountActiveByOrganizerID(organizerID uint) (int64, error)
	Update(event *models.Event) error
	ListPublished(city, query string, offset, limit int) ([]models.Event, error)
	ListPending(offset, limit int) ([]models.Event, error)
	IncrementTicketsSold(id uint, quantity int) (bool, error)
	DecrementTicketsSold(id uint, quantity int) error
}

// BookingRepository defines the interface for booking and payment records
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id uint) (*models.Booking, error)
	GetByTicketCode(code string) (*models.Booking, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Booking, error)
	Update(booking *models.Booking) error
	CreateTransaction(tx *models.Transaction) error
	GetTransactionByBookingID(bookingID uint) (*models.Transaction, error)
	UpdateTransaction(tx *models.Transaction) error
}

// PlanRepository defines the interface for billing plan administration
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id uint) (*models.Plan, error)
	GetByCode(code string) (*models.Plan, error)
	ListActive() ([]models.Plan, error)
	ListAll() ([]models.Plan, error)
	Update(plan *models.Plan) error
	Delete(id uint) error
	CountLiveSubscriptions(planID uint) (int64, error)
}

// PayoutRepository defines the interface for payout records
type PayoutRepository interface {
	GetByID(id uint) (*models.Payout, error)
	GetByOrganizerID(organizerID uint, offset, limit int) ([]models.Payout, error)
	List(status string, offset, limit int) ([]models.Payout, error)
	UpdateStatusIf(id uint, fromStatuses []string, toStatus string, processedBy uint, processedAt time.Time) (bool, error)
}

// PromoCodeRepository defines the interface for promo code operations
type PromoCodeRepository interface {
	Create(code *models.PromoCode) error
	GetByCode(code string) (*models.PromoCode, error)
	GetByOrganizerID(organizerID uint) ([]models.PromoCode, error)
	IncrementUsage(id uint) (bool, error)
	DecrementUsage(id uint) error
	Update(code *models.PromoCode) error
}
