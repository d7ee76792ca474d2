package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER      = "user"
	ROLE_ORGANIZER = "organizer"
	ROLE_ADMIN     = "admin"

	STATUS_ACTIVE = "active"
	STATUS_BANNED = "banned"
)

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email              string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password           string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role               string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user organizer admin"`
	Status             string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active banned"`
	StripeCustomerID   string         `gorm:"type:varchar(191);default:'';index" json:"-"`
	PaymongoCustomerID string         `gorm:"type:varchar(191);default:'';index" json:"-"`
	BannedAt           *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	BanReason          string         `gorm:"type:text" json:"-"`
	LastLoginAt        *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(username string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     username,
		Email:    email,
		Password: pw,
		Role:     ROLE_USER,
		Status:   STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user may use the platform
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// IsOrganizer reports whether the user can create events and receive payouts
func (u *User) IsOrganizer() bool {
	return u.Role == ROLE_ORGANIZER || u.Role == ROLE_ADMIN
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// Ban marks the user as banned with an audit reason.
func (u *User) Ban(reason string) {
	now := time.Now()
	u.Status = STATUS_BANNED
	u.BannedAt = &now
	u.BanReason = reason
}

// Unban restores a banned user to active status.
func (u *User) Unban() {
	u.Status = STATUS_ACTIVE
	u.BannedAt = nil
	u.BanReason = ""
}
