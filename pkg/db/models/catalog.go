package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
)

// Category is a node in the category tree. Root categories have a nil parent.
type Category struct {
	ID       uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ParentID *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	Name     string     `gorm:"column:name;not null"`
}

// Product groups sellable variants under a category.
type Product struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID uuid.UUID           `gorm:"column:category_id;type:uuid;not null;index"`
	Name       string              `gorm:"column:name;not null"`
	Status     enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'active'"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariant is the orderable unit carrying price and stock.
type ProductVariant struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string              `gorm:"column:name;not null"`
	Price     int64               `gorm:"column:price;not null"`
	Quantity  int                 `gorm:"column:quantity;not null;default:0"`
	Status    enums.VariantStatus `gorm:"column:status;type:variant_status;not null;default:'active'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
