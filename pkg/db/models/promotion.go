package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
)

// Promotion is a storewide percent discount on selected products.
type Promotion struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string                `gorm:"column:name;not null"`
	Percent   int                   `gorm:"column:percent;not null"`
	StartDate time.Time             `gorm:"column:start_date;not null"`
	EndDate   time.Time             `gorm:"column:end_date;not null"`
	Status    enums.PromotionStatus `gorm:"column:status;type:promotion_status;not null;default:'active'"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}

// ProductPromotion attaches a promotion to a product.
type ProductPromotion struct {
	PromotionID uuid.UUID `gorm:"column:promotion_id;type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
}
