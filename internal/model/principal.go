package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "ADMIN"
	UserRolePassenger UserRole = "PASSENGER"
	UserRoleDriver    UserRole = "DRIVER"
)

var UserRoles = []UserRole{
	UserRoleAdmin,
	UserRolePassenger,
	UserRoleDriver,
}

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRolePassenger || r == UserRoleDriver
}

// Account is a login identity. Passenger and driver profiles point at it.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username     string    `gorm:"type:varchar(50);not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole  `gorm:"type:user_role;not null" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}

type Principal struct {
	AccountID uuid.UUID
	Role      UserRole
	ProfileID *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsPassenger() bool {
	return p.Role == UserRolePassenger
}

func (p Principal) IsDriver() bool {
	return p.Role == UserRoleDriver
}

// Owns reports whether the principal's profile is the given passenger or driver.
func (p Principal) Owns(profileID uuid.UUID) bool {
	return p.ProfileID != nil && *p.ProfileID == profileID
}
