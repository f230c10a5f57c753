package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a shipping destination saved on an account's address book.
type Address struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID     uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	RecipientName string    `gorm:"column:recipient_name;not null"`
	Phone         string    `gorm:"column:phone;not null"`
	Street        string    `gorm:"column:street;not null"`
	Ward          string    `gorm:"column:ward"`
	District      string    `gorm:"column:district"`
	City          string    `gorm:"column:city;not null"`
	IsDefault     bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
