package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository implementations
type Repositories struct {
	User    UserRepository
	Event   EventRepository
	Booking BookingRepository
	Plan    PlanRepository
	Payout  PayoutRepository
	Promo   PromoCodeRepository
}

// NewRepositories creates all repositories backed by the given DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Event:   NewEventRepository(db),
		Booking: NewBookingRepository(db),
		Plan:    NewPlanRepository(db),
		Payout:  NewPayoutRepository(db),
		Promo:   NewPromoCodeRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetEventRepository returns the event repository instance
func (f *Factory) GetEventRepository() EventRepository {
	return f.GetRepositories().Event
}

// GetBookingRepository returns the booking repository instance
func (f *Factory) GetBookingRepository() BookingRepository {
	return f.GetRepositories().Booking
}

// GetPlanRepository returns the plan repository instance
func (f *Factory) GetPlanRepository() PlanRepository {
	return f.GetRepositories().Plan
}

// GetPayoutRepository returns the payout repository instance
func (f *Factory) GetPayoutRepository() PayoutRepository {
	return f.GetRepositories().Payout
}

// GetPromoCodeRepository returns the promo code repository instance
func (f *Factory) GetPromoCodeRepository() PromoCodeRepository {
	return f.GetRepositories().Promo
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("repository factory not initialized - call InitializeFactory first")
	}
	return globalFactory
}
