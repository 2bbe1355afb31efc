package model

import (
	"time"

	"github.com/google/uuid"
)

type Passenger struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	Email     string     `gorm:"type:varchar(100);not null" json:"email"`
	Phone     string     `gorm:"type:varchar(20);not null" json:"phone"`
	Address   string     `gorm:"type:text" json:"address"`
	AccountID *uuid.UUID `gorm:"type:uuid" json:"account_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Passenger) TableName() string {
	return "passengers"
}
