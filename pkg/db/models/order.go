package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
)

// Order is a placed order with its line details, history and bill.
type Order struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID     uuid.UUID            `gorm:"column:account_id;type:uuid;not null;index"`
	AddressID     uuid.UUID            `gorm:"column:address_id;type:uuid;not null"`
	ShippingFeeID uuid.UUID            `gorm:"column:shipping_fee_id;type:uuid;not null"`
	Status        enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'placed'"`
	OrderDate     time.Time            `gorm:"column:order_date;not null"`
	Note          *string              `gorm:"column:note"`
	DeliveredAt   *time.Time           `gorm:"column:delivered_at"`
	CompletedAt   *time.Time           `gorm:"column:completed_at"`
	Details       []OrderDetail        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Histories     []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Bill          *Bill                `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderDetail snapshots one ordered variant. UnitPrice is the post-promotion
// price rounded to the nearest thousand; ListPrice is the price before
// promotions applied.
type OrderDetail struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	UnitPrice int64     `gorm:"column:unit_price;not null"`
	ListPrice int64     `gorm:"column:list_price;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// OrderStatusHistory is an append-only record of status transitions.
type OrderStatusHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:order_status;not null"`
	Note      *string           `gorm:"column:note"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
