package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
)

// Voucher is a redeemable discount with a bounded usage budget.
type Voucher struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string              `gorm:"column:code;not null;uniqueIndex"`
	Type        enums.VoucherType   `gorm:"column:type;type:voucher_type;not null"`
	Percent     int                 `gorm:"column:percent;not null"`
	MinSubtotal int64               `gorm:"column:min_subtotal;not null;default:0"`
	Remaining   int                 `gorm:"column:remaining;not null"`
	StartDate   time.Time           `gorm:"column:start_date;not null"`
	EndDate     time.Time           `gorm:"column:end_date;not null"`
	Status      enums.VoucherStatus `gorm:"column:status;type:voucher_status;not null;default:'active'"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// VoucherCategory scopes a category voucher to a category subtree.
type VoucherCategory struct {
	VoucherID  uuid.UUID `gorm:"column:voucher_id;type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey"`
}

// OrderVoucher records one voucher redeemed against an order.
type OrderVoucher struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	VoucherID uuid.UUID `gorm:"column:voucher_id;type:uuid;not null;index"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	Discount  int64     `gorm:"column:discount;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// VoucherOrderDetail records the per-line share of a category voucher.
type VoucherOrderDetail struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderVoucherID uuid.UUID `gorm:"column:order_voucher_id;type:uuid;not null;index"`
	OrderDetailID  uuid.UUID `gorm:"column:order_detail_id;type:uuid;not null;index"`
	Discount       int64     `gorm:"column:discount;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
