package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/internal/analytics"
	"github.com/minhtrandev/shopora-backend/internal/catalog"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type variantLoader interface {
	FindVariant(ctx context.Context, variantID uuid.UUID) (*catalog.VariantInfo, error)
	FindVariants(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]*catalog.VariantInfo, error)
}

type behaviorRecorder interface {
	Record(ctx context.Context, event analytics.Event)
}

// LineView is one cart line joined with its current catalog snapshot.
type LineView struct {
	Line        models.CartLine
	ProductID   uuid.UUID
	ProductName string
	VariantName string
	UnitPrice   int64
	InStock     int
	Available   bool
}

// Service implements the cart operations: merge-by-replace add, quantity
// update, removal and listing. Stock is never reserved here, only checked.
type Service struct {
	tx       txRunner
	repo     *Repository
	catalog  variantLoader
	recorder behaviorRecorder
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(tx txRunner, repo *Repository, catalogRepo variantLoader, recorder behaviorRecorder, logg *logger.Logger) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &Service{tx: tx, repo: repo, catalog: catalogRepo, recorder: recorder, logg: logg}, nil
}

// AddToCart merges the variant into the account's cart. Existing live lines
// for the same variant are replaced by a single new line carrying the summed
// quantity, so each (account, variant) pair keeps exactly one row and one
// authoritative updated_at.
func (s *Service) AddToCart(ctx context.Context, accountID, variantID uuid.UUID, quantity int) (*models.CartLine, error) {
	if accountID == uuid.Nil || variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id and variant id are required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	info, err := s.catalog.FindVariant(ctx, variantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading variant")
	}
	if err := availabilityError(info); err != nil {
		return nil, err
	}

	var merged *models.CartLine
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.LinesForVariant(ctx, accountID, variantID)
		if err != nil {
			return err
		}

		total := quantity
		replaced := make([]uuid.UUID, 0, len(existing))
		for _, line := range existing {
			total += line.Quantity
			replaced = append(replaced, line.ID)
		}
		if total > info.Quantity {
			return pkgerrors.New(pkgerrors.CodeOutOfStock,
				fmt.Sprintf("not enough stock of %s", info.ProductName)).
				WithDetails(map[string]any{
					"variant_id": variantID.String(),
					"requested":  total,
					"available":  info.Quantity,
				})
		}

		if err := repo.MarkStatus(ctx, replaced, enums.CartLineStatusDeleted); err != nil {
			return err
		}
		line := &models.CartLine{AccountID: accountID, VariantID: variantID, Quantity: total}
		if err := repo.Insert(ctx, line); err != nil {
			return err
		}
		merged = line
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.Record(ctx, analytics.Event{
			AccountID:  accountID,
			ProductID:  info.ProductID,
			VariantID:  variantID,
			Type:       enums.BehaviorTypeCartAdd,
			OccurredAt: time.Now(),
		})
	}
	return merged, nil
}

// UpdateQuantity sets a live line to an exact quantity after re-checking stock.
func (s *Service) UpdateQuantity(ctx context.Context, accountID, lineID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	line, err := s.repo.FindLine(ctx, accountID, lineID)
	if err != nil {
		return err
	}
	info, err := s.catalog.FindVariant(ctx, line.VariantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading variant")
	}
	if err := availabilityError(info); err != nil {
		return err
	}
	if quantity > info.Quantity {
		return pkgerrors.New(pkgerrors.CodeOutOfStock,
			fmt.Sprintf("not enough stock of %s", info.ProductName)).
			WithDetails(map[string]any{"requested": quantity, "available": info.Quantity})
	}
	return s.repo.UpdateQuantity(ctx, accountID, lineID, quantity)
}

// Remove soft-deletes one live cart line.
func (s *Service) Remove(ctx context.Context, accountID, lineID uuid.UUID) error {
	line, err := s.repo.FindLine(ctx, accountID, lineID)
	if err != nil {
		return err
	}
	return s.repo.MarkStatus(ctx, []uuid.UUID{line.ID}, enums.CartLineStatusDeleted)
}

// List returns the live cart joined with current catalog data. Lines whose
// variant has since disappeared are surfaced as unavailable rather than
// dropped, so the customer sees why checkout will refuse them.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]LineView, error) {
	lines, err := s.repo.ActiveLines(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []LineView{}, nil
	}

	variantIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		variantIDs = append(variantIDs, line.VariantID)
	}
	infos, err := s.catalog.FindVariants(ctx, variantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart variants")
	}

	views := make([]LineView, 0, len(lines))
	for _, line := range lines {
		view := LineView{Line: line}
		if info := infos[line.VariantID]; info != nil {
			view.ProductID = info.ProductID
			view.ProductName = info.ProductName
			view.VariantName = info.VariantName
			view.UnitPrice = info.Price
			view.InStock = info.Quantity
			view.Available = info.Available() && line.Quantity <= info.Quantity
		}
		views = append(views, view)
	}
	return views, nil
}

// availabilityError distinguishes a hidden product from a hidden variant so
// the storefront can message the difference.
func availabilityError(info *catalog.VariantInfo) error {
	if info.ProductStatus == enums.ProductStatusHidden {
		return pkgerrors.New(pkgerrors.CodeProductUnavailable,
			fmt.Sprintf("%s is no longer available", info.ProductName)).
			WithDetails(map[string]any{"scope": "product"})
	}
	if info.VariantStatus != enums.VariantStatusActive {
		return pkgerrors.New(pkgerrors.CodeProductUnavailable,
			fmt.Sprintf("this option of %s is no longer available", info.ProductName)).
			WithDetails(map[string]any{"scope": "variant"})
	}
	return nil
}
