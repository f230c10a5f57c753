package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:address_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(`CREATE TABLE addresses (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		recipient_name TEXT NOT NULL,
		phone TEXT NOT NULL,
		street TEXT NOT NULL,
		ward TEXT,
		district TEXT,
		city TEXT NOT NULL,
		is_default INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	return conn
}

func validInput() Input {
	return Input{
		RecipientName: "Tran Thi Mai",
		Phone:         "0901234567",
		Street:        "12 Ly Thuong Kiet",
		Ward:          "Phuong 7",
		District:      "Quan 10",
		City:          "Ho Chi Minh",
	}
}

func TestCreateKeepsSingleDefault(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	input := validInput()
	input.IsDefault = true
	first, err := svc.Create(ctx, accountID, input)
	require.NoError(t, err)
	require.True(t, first.IsDefault)

	second, err := svc.Create(ctx, accountID, input)
	require.NoError(t, err)
	require.True(t, second.IsDefault)

	def, err := svc.Default(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, second.ID, def.ID)

	addrs, err := svc.List(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	require.Equal(t, second.ID, addrs[0].ID, "default entry sorts first")
}

func TestResolveExistingVsNew(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	created, err := svc.Create(ctx, accountID, validInput())
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, accountID, Input{AddressID: &created.ID})
	require.NoError(t, err)
	require.Equal(t, created.ID, resolved.ID)

	// Another account cannot reference it.
	_, err = svc.Resolve(ctx, uuid.New(), Input{AddressID: &created.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	fresh, err := svc.Resolve(ctx, accountID, validInput())
	require.NoError(t, err)
	require.NotEqual(t, created.ID, fresh.ID)

	var count int64
	require.NoError(t, svc.db.Model(&models.Address{}).Where("account_id = ?", accountID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestDB(t))
	ctx := context.Background()

	input := validInput()
	input.Phone = "  "
	_, err := svc.Create(ctx, uuid.New(), input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	input = validInput()
	input.City = ""
	_, err = svc.Create(ctx, uuid.New(), input)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
