package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
)

var liveStatuses = []enums.CartLineStatus{enums.CartLineStatusActive, enums.CartLineStatusFlagged}

// Repository persists cart lines. Lines are never hard-deleted: removal and
// merge both leave a soft-deleted row behind for auditing.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
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

// ActiveLines returns the account's live cart, newest first.
func (r *Repository) ActiveLines(ctx context.Context, accountID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status IN ?", accountID, liveStatuses).
		Order("updated_at DESC").
		Find(&lines).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart lines")
	}
	return lines, nil
}

// LinesForVariant returns the account's live lines holding one variant.
// Normally at most one row, but the merge step tolerates historical duplicates.
func (r *Repository) LinesForVariant(ctx context.Context, accountID, variantID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND variant_id = ? AND status IN ?", accountID, variantID, liveStatuses).
		Find(&lines).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart lines")
	}
	return lines, nil
}

// FindLine loads one live line owned by the account.
func (r *Repository) FindLine(ctx context.Context, accountID, lineID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ? AND status IN ?", lineID, accountID, liveStatuses).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart line")
	}
	return &line, nil
}

// Insert creates a new cart line. A concurrent merge for the same variant
// loses on the one-active-row index and surfaces as a retryable conflict.
func (r *Repository) Insert(ctx context.Context, line *models.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if line.Status == "" {
		line.Status = enums.CartLineStatusActive
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		if db.IsUniqueViolation(err, "ux_cart_lines_account_variant_active") {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart was updated concurrently, retry the request")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating cart line")
	}
	return nil
}

// MarkStatus moves the given lines to the target status.
func (r *Repository) MarkStatus(ctx context.Context, lineIDs []uuid.UUID, status enums.CartLineStatus) error {
	if len(lineIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.CartLine{}).
		Where("id IN ?", lineIDs).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating cart line status")
	}
	return nil
}

// UpdateQuantity sets a live line's quantity. The status predicate keeps the
// update from resurrecting consumed or deleted rows.
func (r *Repository) UpdateQuantity(ctx context.Context, accountID, lineID uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartLine{}).
		Where("id = ? AND account_id = ? AND status IN ?", lineID, accountID, liveStatuses).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now()})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "updating cart line quantity")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return nil
}
