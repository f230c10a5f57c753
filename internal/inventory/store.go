package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	"github.com/minhtrandev/shopora-backend/pkg/errors"
)

// Item identifies one stock movement.
type Item struct {
	VariantID   uuid.UUID
	ProductID   uuid.UUID
	Quantity    int
	ProductName string
}

// Store applies stock movements with guarded updates. Reserve and Release are
// meant to run inside the caller's transaction.
type Store struct {
	db *gorm.DB
}

// NewStore constructs an inventory store bound to the provided DB.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx binds the store to a transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	if tx == nil {
		return s
	}
	return &Store{db: tx}
}

// Reserve decrements variant stock only when enough remains. The conditional
// update is the concurrency guard: two competing orders cannot both win the
// last unit.
func (s *Store) Reserve(ctx context.Context, item Item) error {
	if item.Quantity <= 0 {
		return errors.New(errors.CodeValidation, "reserve quantity must be positive")
	}

	res := s.db.WithContext(ctx).Exec(
		`UPDATE product_variants SET quantity = quantity - ?, updated_at = ? WHERE id = ? AND quantity >= ?`,
		item.Quantity, time.Now(), item.VariantID, item.Quantity,
	)
	if res.Error != nil {
		return errors.Wrap(errors.CodeDependency, res.Error, "reserving stock")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeOutOfStock, fmt.Sprintf("insufficient stock for %s", item.ProductName)).
			WithDetails(map[string]any{"variant_id": item.VariantID.String(), "requested": item.Quantity})
	}

	return s.refreshProductStatus(ctx, item.ProductID)
}

// Release returns stock to the variant and restores the product's status when
// stock becomes available again.
func (s *Store) Release(ctx context.Context, item Item) error {
	if item.Quantity <= 0 {
		return errors.New(errors.CodeValidation, "release quantity must be positive")
	}

	res := s.db.WithContext(ctx).Exec(
		`UPDATE product_variants SET quantity = quantity + ?, updated_at = ? WHERE id = ?`,
		item.Quantity, time.Now(), item.VariantID,
	)
	if res.Error != nil {
		return errors.Wrap(errors.CodeDependency, res.Error, "releasing stock")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "variant not found")
	}

	return s.refreshProductStatus(ctx, item.ProductID)
}

// refreshProductStatus flips a product between active and out_of_stock based
// on whether any sibling variant still has units. Hidden products are left
// untouched.
func (s *Store) refreshProductStatus(ctx context.Context, productID uuid.UUID) error {
	var inStock int64
	err := s.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND quantity > 0", productID).
		Count(&inStock).Error
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "counting variant stock")
	}

	if inStock == 0 {
		err = s.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND status = ?", productID, enums.ProductStatusActive).
			Update("status", enums.ProductStatusOutOfStock).Error
	} else {
		err = s.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND status = ?", productID, enums.ProductStatusOutOfStock).
			Update("status", enums.ProductStatusActive).Error
	}
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "updating product status")
	}
	return nil
}
