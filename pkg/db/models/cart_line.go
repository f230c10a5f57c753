package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
)

// CartLine is one variant held in a customer's cart.
type CartLine struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID            `gorm:"column:account_id;type:uuid;not null;index"`
	VariantID uuid.UUID            `gorm:"column:variant_id;type:uuid;not null;index"`
	Quantity  int                  `gorm:"column:quantity;not null"`
	Status    enums.CartLineStatus `gorm:"column:status;type:cart_line_status;not null;default:'active'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
