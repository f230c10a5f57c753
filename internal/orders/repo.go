package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
	"github.com/minhtrandev/shopora-backend/pkg/pagination"
)

// Repository persists orders, details, histories and bills.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repository bound to the provided DB.
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

// Create inserts the order with its details, initial history row and bill.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Details {
		if order.Details[i].ID == uuid.Nil {
			order.Details[i].ID = uuid.New()
		}
		order.Details[i].OrderID = order.ID
	}
	for i := range order.Histories {
		if order.Histories[i].ID == uuid.Nil {
			order.Histories[i].ID = uuid.New()
		}
		order.Histories[i].OrderID = order.ID
	}
	if order.Bill != nil {
		if order.Bill.ID == uuid.Nil {
			order.Bill.ID = uuid.New()
		}
		order.Bill.OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
	}
	return nil
}

// Find loads one order with details, histories and bill.
func (r *Repository) Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("Histories", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Bill").
		Where("id = ?", orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	return &order, nil
}

// FindOwned loads one order and verifies it belongs to the account.
func (r *Repository) FindOwned(ctx context.Context, accountID, orderID uuid.UUID) (*models.Order, error) {
	order, err := r.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.AccountID != accountID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// ListByAccount returns the account's orders, newest first.
func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Bill").
		Where("account_id = ?", accountID).
		Order("order_date DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Offset(pagination.NormalizeOffset(offset)).
		Find(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return orders, nil
}

// Histories returns the append-only transition log, oldest first.
func (r *Repository) Histories(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var rows []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order history")
	}
	return rows, nil
}

// UpdateStatus moves the order from one status to another. The predicate on
// the current status makes concurrent transitions race safely: the loser
// affects zero rows.
func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, extra map[string]any) error {
	updates := map[string]any{"status": to, "updated_at": time.Now()}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "updating order status")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently").
			WithDetails(map[string]any{"order_id": orderID.String(), "expected": from.String()})
	}
	return nil
}

// InsertHistory appends one transition record.
func (r *Repository) InsertHistory(ctx context.Context, row *models.OrderStatusHistory) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording order history")
	}
	return nil
}

// UpdateBill applies the given column updates to the order's bill.
func (r *Repository) UpdateBill(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	err := r.db.WithContext(ctx).Model(&models.Bill{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating bill")
	}
	return nil
}

// FindShippingFee loads one shipping rate.
func (r *Repository) FindShippingFee(ctx context.Context, feeID uuid.UUID) (*models.ShippingFee, error) {
	var fee models.ShippingFee
	err := r.db.WithContext(ctx).Where("id = ?", feeID).First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping fee not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading shipping fee")
	}
	return &fee, nil
}

// DeliveredBefore returns ids of orders still in delivered whose delivery
// timestamp is at or before the cutoff. Feeds the auto-complete sweep.
func (r *Repository) DeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND delivered_at IS NOT NULL AND delivered_at <= ?", enums.OrderStatusDelivered, cutoff).
		Order("delivered_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing delivered orders")
	}
	return ids, nil
}

// VouchersForOrder returns the voucher redemptions recorded for one order.
func (r *Repository) VouchersForOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderVoucher, error) {
	var rows []models.OrderVoucher
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order vouchers")
	}
	return rows, nil
}
