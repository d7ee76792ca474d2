package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventStatusPending   = "pending"
	EventStatusPublished = "published"
	EventStatusRejected  = "rejected"
)

// Event is a tech event listed on the marketplace. Events become visible to
// end users only after admin approval (status published).
type Event struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	OrganizerID  uint           `gorm:"not null;index" json:"organizer_id"`
	Title        string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=3,max=200"`
	Description  string         `gorm:"type:text" json:"description" validate:"max=10000"`
	Venue        string         `gorm:"type:varchar(200)" json:"venue" validate:"max=200"`
	City         string         `gorm:"type:varchar(100);index" json:"city" validate:"max=100"`
	StartsAt     time.Time      `gorm:"not null;index" json:"starts_at"`
	EndsAt       time.Time      `gorm:"not null" json:"ends_at"`
	PriceMinor   int64          `gorm:"not null;default:0" json:"price_minor"`
	Currency     string         `gorm:"type:varchar(3);not null;default:'PHP'" json:"currency"`
	Capacity     int            `gorm:"not null;default:0" json:"capacity"`
	TicketsSold  int            `gorm:"not null;default:0" json:"tickets_sold"`
	Status       string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectReason string         `gorm:"type:text" json:"-"`
	ViewCount    int64          `gorm:"not null;default:0" json:"view_count"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Organizer User `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
}

func (e *Event) Validate() error {
	v := validator.New()

	return v.Struct(e)
}

// BeforeCreate assigns a public UUID used in URLs.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.New().String()
	}
	return nil
}

// IsPublished reports whether end users can see and book the event
func (e *Event) IsPublished() bool {
	return e.Status == EventStatusPublished
}

// RemainingCapacity returns how many tickets can still be sold.
func (e *Event) RemainingCapacity() int {
	remaining := e.Capacity - e.TicketsSold
	if remaining < 0 {
		return 0
	}
	return remaining
}
