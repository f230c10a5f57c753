package vouchers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:vouchers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE vouchers (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			percent INTEGER NOT NULL,
			min_subtotal INTEGER NOT NULL DEFAULT 0,
			remaining INTEGER NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE voucher_categories (
			voucher_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			PRIMARY KEY (voucher_id, category_id)
		)`,
		`CREATE TABLE orders (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			address_id TEXT NOT NULL,
			shipping_fee_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'placed',
			order_date DATETIME NOT NULL,
			note TEXT,
			delivered_at DATETIME,
			completed_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE order_vouchers (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			voucher_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			discount INTEGER NOT NULL,
			created_at DATETIME
		)`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedVoucher(t *testing.T, db *gorm.DB, remaining int) models.Voucher {
	t.Helper()
	voucher := models.Voucher{
		ID:        uuid.New(),
		Code:      "SAVE5-" + uuid.NewString()[:8],
		Type:      enums.VoucherTypeBillWide,
		Percent:   5,
		Remaining: remaining,
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		Status:    enums.VoucherStatusActive,
	}
	require.NoError(t, db.Create(&voucher).Error)
	return voucher
}

func TestRedeemConsumesLastRemainingUse(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	voucher := seedVoucher(t, db, 1)

	require.NoError(t, repo.Redeem(ctx, voucher.ID, time.Now()))

	var reloaded models.Voucher
	require.NoError(t, db.First(&reloaded, "id = ?", voucher.ID).Error)
	require.Equal(t, 0, reloaded.Remaining)

	// The budget is spent, so the next redemption loses the guard.
	err := repo.Redeem(ctx, voucher.ID, time.Now())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeVoucherInvalid, typed.Code())
}

func TestRedeemRejectsDisabledAndExpired(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	disabled := seedVoucher(t, db, 3)
	require.NoError(t, db.Model(&models.Voucher{}).Where("id = ?", disabled.ID).
		Update("status", enums.VoucherStatusDisabled).Error)
	err := repo.Redeem(ctx, disabled.ID, time.Now())
	require.NotNil(t, pkgerrors.As(err))

	expired := seedVoucher(t, db, 3)
	err = repo.Redeem(ctx, expired.ID, time.Now().Add(48*time.Hour))
	require.NotNil(t, pkgerrors.As(err))
}

func TestUsedByAccountIgnoresCancelledOrders(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	voucher := seedVoucher(t, db, 5)
	accountID := uuid.New()

	cancelled := models.Order{
		ID: uuid.New(), AccountID: accountID, AddressID: uuid.New(), ShippingFeeID: uuid.New(),
		Status: enums.OrderStatusCancelled, OrderDate: time.Now(),
	}
	require.NoError(t, db.Create(&cancelled).Error)
	require.NoError(t, repo.InsertRedemption(ctx, &models.OrderVoucher{
		OrderID: cancelled.ID, VoucherID: voucher.ID, AccountID: accountID, Discount: 5000,
	}))

	used, err := repo.UsedByAccount(ctx, voucher.ID, accountID)
	require.NoError(t, err)
	require.False(t, used, "cancelled orders must not consume the single use")

	live := models.Order{
		ID: uuid.New(), AccountID: accountID, AddressID: uuid.New(), ShippingFeeID: uuid.New(),
		Status: enums.OrderStatusPlaced, OrderDate: time.Now(),
	}
	require.NoError(t, db.Create(&live).Error)
	require.NoError(t, repo.InsertRedemption(ctx, &models.OrderVoucher{
		OrderID: live.ID, VoucherID: voucher.ID, AccountID: accountID, Discount: 5000,
	}))

	used, err = repo.UsedByAccount(ctx, voucher.ID, accountID)
	require.NoError(t, err)
	require.True(t, used)
}

func TestCheckEligibility(t *testing.T) {
	t.Parallel()

	now := time.Now()
	base := models.Voucher{
		Code:        "SAVE5",
		Status:      enums.VoucherStatusActive,
		Remaining:   2,
		MinSubtotal: 100000,
		StartDate:   now.Add(-time.Hour),
		EndDate:     now.Add(time.Hour),
	}

	require.NoError(t, CheckEligibility(&base, false, 150000, now))

	tests := []struct {
		name   string
		mutate func(v *models.Voucher)
		used   bool
		sub    int64
		at     time.Time
	}{
		{name: "disabled", mutate: func(v *models.Voucher) { v.Status = enums.VoucherStatusDisabled }, sub: 150000, at: now},
		{name: "before window", mutate: func(v *models.Voucher) {}, sub: 150000, at: now.Add(-2 * time.Hour)},
		{name: "after window", mutate: func(v *models.Voucher) {}, sub: 150000, at: now.Add(2 * time.Hour)},
		{name: "redeemed out", mutate: func(v *models.Voucher) { v.Remaining = 0 }, sub: 150000, at: now},
		{name: "below minimum", mutate: func(v *models.Voucher) {}, sub: 50000, at: now},
		{name: "already used", mutate: func(v *models.Voucher) {}, used: true, sub: 150000, at: now},
	}
	for _, tt := range tests {
		voucher := base
		tt.mutate(&voucher)
		err := CheckEligibility(&voucher, tt.used, tt.sub, tt.at)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeVoucherInvalid {
			t.Fatalf("%s: expected voucher-invalid error, got %v", tt.name, err)
		}
	}
}
