package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
)

// Bill carries the money side of an order.
type Bill struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Subtotal      int64               `gorm:"column:subtotal;not null"`
	ShippingCost  int64               `gorm:"column:shipping_cost;not null;default:0"`
	Discount      int64               `gorm:"column:discount;not null;default:0"`
	Total         int64               `gorm:"column:total;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'cod'"`
	Status        enums.BillStatus    `gorm:"column:status;type:bill_status;not null;default:'unpaid'"`
	InvoiceTime   *time.Time          `gorm:"column:invoice_time"`
	PaymentTime   *time.Time          `gorm:"column:payment_time"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ShippingFee is a flat delivery rate selectable at checkout. The distance
// band is informational: the storefront matches a rate to the route, the
// engine only reads the cost.
type ShippingFee struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Cost        int64     `gorm:"column:cost;not null"`
	MinDistance float64   `gorm:"column:min_distance;not null;default:0"`
	MaxDistance float64   `gorm:"column:max_distance;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
