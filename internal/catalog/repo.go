package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
)

// VariantInfo is the read-side snapshot of a variant and its parent product.
type VariantInfo struct {
	VariantID     uuid.UUID
	ProductID     uuid.UUID
	CategoryID    uuid.UUID
	ProductName   string
	VariantName   string
	Price         int64
	Quantity      int
	VariantStatus enums.VariantStatus
	ProductStatus enums.ProductStatus
}

// Available reports whether the variant may be placed into a cart or order.
func (v VariantInfo) Available() bool {
	return v.VariantStatus == enums.VariantStatusActive && v.ProductStatus.Sellable()
}

// Repository exposes catalog reads used by carts, pricing and checkout.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindVariant loads one variant snapshot.
func (r *Repository) FindVariant(ctx context.Context, variantID uuid.UUID) (*VariantInfo, error) {
	infos, err := r.FindVariants(ctx, []uuid.UUID{variantID})
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	info := infos[variantID]
	if info == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return info, nil
}

// FindVariants loads snapshots for the given variant ids keyed by id.
func (r *Repository) FindVariants(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]*VariantInfo, error) {
	if len(variantIDs) == 0 {
		return map[uuid.UUID]*VariantInfo{}, nil
	}

	var variants []models.ProductVariant
	if err := r.db.WithContext(ctx).Where("id IN ?", variantIDs).Find(&variants).Error; err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(variants))
	for _, v := range variants {
		productIDs = append(productIDs, v.ProductID)
	}
	var products []models.Product
	if len(productIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return nil, err
		}
	}
	productsByID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	infos := make(map[uuid.UUID]*VariantInfo, len(variants))
	for _, v := range variants {
		product, ok := productsByID[v.ProductID]
		if !ok {
			continue
		}
		infos[v.ID] = &VariantInfo{
			VariantID:     v.ID,
			ProductID:     v.ProductID,
			CategoryID:    product.CategoryID,
			ProductName:   product.Name,
			VariantName:   v.Name,
			Price:         v.Price,
			Quantity:      v.Quantity,
			VariantStatus: v.Status,
			ProductStatus: product.Status,
		}
	}
	return infos, nil
}

// CategoryPath walks from the given category up to the root and returns every
// id on the way, leaf first.
func (r *Repository) CategoryPath(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	path := []uuid.UUID{}
	current := &categoryID
	for current != nil {
		var category models.Category
		if err := r.db.WithContext(ctx).Where("id = ?", *current).First(&category).Error; err != nil {
			return nil, err
		}
		path = append(path, category.ID)
		// guard against accidental cycles in the tree
		if len(path) > 32 {
			break
		}
		current = category.ParentID
	}
	return path, nil
}

// ActivePromotionPercents returns, per product id, the percent values of every
// promotion active at the given time.
func (r *Repository) ActivePromotionPercents(ctx context.Context, productIDs []uuid.UUID, at time.Time) (map[uuid.UUID][]int, error) {
	result := make(map[uuid.UUID][]int, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	type row struct {
		ProductID uuid.UUID
		Percent   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("product_promotions").
		Select("product_promotions.product_id AS product_id, promotions.percent AS percent").
		Joins("JOIN promotions ON promotions.id = product_promotions.promotion_id").
		Where("product_promotions.product_id IN ?", productIDs).
		Where("promotions.status = ?", enums.PromotionStatusActive).
		Where("promotions.start_date <= ? AND promotions.end_date >= ?", at, at).
		Order("promotions.start_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.ProductID] = append(result[r.ProductID], r.Percent)
	}
	return result, nil
}
