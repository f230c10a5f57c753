package vouchers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
)

// Repository exposes voucher reads and the guarded redemption decrement.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a voucher repository bound to the provided DB.
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

// FindByCode loads a voucher by its public code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&voucher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading voucher")
	}
	return &voucher, nil
}

// CategoryScope returns the category ids a category-scoped voucher covers.
func (r *Repository) CategoryScope(ctx context.Context, voucherID uuid.UUID) ([]uuid.UUID, error) {
	var rows []models.VoucherCategory
	if err := r.db.WithContext(ctx).Where("voucher_id = ?", voucherID).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading voucher scope")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.CategoryID)
	}
	return ids, nil
}

// UsedByAccount reports whether the account already redeemed the voucher on an
// order that was not cancelled. Cancelled orders do not consume the customer's
// single use even though the voucher budget stays spent.
func (r *Repository) UsedByAccount(ctx context.Context, voucherID, accountID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("order_vouchers").
		Joins("JOIN orders ON orders.id = order_vouchers.order_id").
		Where("order_vouchers.voucher_id = ? AND order_vouchers.account_id = ?", voucherID, accountID).
		Where("orders.status <> ?", enums.OrderStatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking voucher usage")
	}
	return count > 0, nil
}

// Redeem decrements the remaining budget only while the voucher is still
// active, in date and has budget left. Losing the guard means another order
// consumed the last redemption first.
func (r *Repository) Redeem(ctx context.Context, voucherID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE vouchers SET remaining = remaining - 1, updated_at = ?
		 WHERE id = ? AND status = ? AND remaining > 0 AND start_date <= ? AND end_date >= ?`,
		time.Now(), voucherID, enums.VoucherStatusActive, at, at,
	)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "redeeming voucher")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeVoucherInvalid, "voucher no longer valid").
			WithDetails(map[string]any{"voucher_id": voucherID.String()})
	}
	return nil
}

// InsertRedemption records the voucher's application to an order.
func (r *Repository) InsertRedemption(ctx context.Context, row *models.OrderVoucher) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording voucher redemption")
	}
	return nil
}

// InsertLineShares records per-line discount shares of a category voucher.
func (r *Repository) InsertLineShares(ctx context.Context, rows []models.VoucherOrderDetail) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording voucher line shares")
	}
	return nil
}
