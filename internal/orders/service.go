package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/internal/address"
	"github.com/minhtrandev/shopora-backend/internal/analytics"
	"github.com/minhtrandev/shopora-backend/internal/cart"
	"github.com/minhtrandev/shopora-backend/internal/catalog"
	"github.com/minhtrandev/shopora-backend/internal/inventory"
	"github.com/minhtrandev/shopora-backend/internal/pricing"
	"github.com/minhtrandev/shopora-backend/internal/vouchers"
	"github.com/minhtrandev/shopora-backend/pkg/config"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
	"github.com/minhtrandev/shopora-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type behaviorRecorder interface {
	Record(ctx context.Context, event analytics.Event)
}

// Service runs the order lifecycle: placement, status transitions, the
// cancel/return compensation and the delivered-to-completed sweep.
type Service struct {
	tx        txRunner
	repo      *Repository
	cartRepo  *cart.Repository
	catalog   *catalog.Repository
	inventory *inventory.Store
	vouchers  *vouchers.Repository
	addresses *address.Service
	outbox    outboxPublisher
	recorder  behaviorRecorder
	logg      *logger.Logger
	cfg       config.OrdersConfig
}

// NewService builds the order service with the full collaborator stack.
func NewService(
	tx txRunner,
	repo *Repository,
	cartRepo *cart.Repository,
	catalogRepo *catalog.Repository,
	inventoryStore *inventory.Store,
	voucherRepo *vouchers.Repository,
	addresses *address.Service,
	outboxSvc outboxPublisher,
	recorder behaviorRecorder,
	logg *logger.Logger,
	cfg config.OrdersConfig,
) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil || cartRepo == nil || catalogRepo == nil || inventoryStore == nil || voucherRepo == nil || addresses == nil {
		return nil, fmt.Errorf("order service collaborators missing")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{
		tx:        tx,
		repo:      repo,
		cartRepo:  cartRepo,
		catalog:   catalogRepo,
		inventory: inventoryStore,
		vouchers:  voucherRepo,
		addresses: addresses,
		outbox:    outboxSvc,
		recorder:  recorder,
		logg:      logg,
		cfg:       cfg,
	}, nil
}

// pricedCart is the priced snapshot shared by Quote and PlaceOrder.
type pricedCart struct {
	lines    []models.CartLine
	infos    map[uuid.UUID]*catalog.VariantInfo
	rules    []pricing.VoucherRule
	vouchers []*models.Voucher
	quote    pricing.Quote
}

// Quote prices the cart with the requested vouchers without changing any
// state. The calculator is pure, so preview and placement agree on identical
// inputs.
func (s *Service) Quote(ctx context.Context, input QuoteInput) (pricing.Quote, error) {
	priced, err := s.priceCart(ctx, s.repo.db, input.AccountID, input.CartLineIDs, input.VoucherCodes, input.ShippingFeeID, time.Now())
	if err != nil {
		return pricing.Quote{}, err
	}
	return priced.quote, nil
}

// PlaceOrder turns the cart into a committed order in one transaction: stock
// is reserved with conditional decrements, voucher budgets with a guarded
// decrement, and the order, bill, details, history and outbox event all land
// together or not at all.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if input.ShippingFeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping fee is required")
	}

	orderDate := time.Now()
	var placed *models.Order
	var priced *pricedCart

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		priced, err = s.priceCart(ctx, tx, input.AccountID, input.CartLineIDs, input.VoucherCodes, input.ShippingFeeID, orderDate)
		if err != nil {
			return err
		}

		shipTo, err := s.addresses.WithTx(tx).Resolve(ctx, input.AccountID, input.Address)
		if err != nil {
			return err
		}

		store := s.inventory.WithTx(tx)
		for _, line := range priced.quote.Lines {
			info := priced.infos[line.VariantID]
			err := store.Reserve(ctx, inventory.Item{
				VariantID:   line.VariantID,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				ProductName: info.ProductName,
			})
			if err != nil {
				return err
			}
		}

		voucherRepo := s.vouchers.WithTx(tx)
		for _, voucher := range priced.vouchers {
			if err := voucherRepo.Redeem(ctx, voucher.ID, orderDate); err != nil {
				return err
			}
		}

		order := &models.Order{
			ID:            uuid.New(),
			AccountID:     input.AccountID,
			AddressID:     shipTo.ID,
			ShippingFeeID: input.ShippingFeeID,
			Status:        enums.OrderStatusPlaced,
			OrderDate:     orderDate,
			Note:          input.Note,
		}
		for _, line := range priced.quote.Lines {
			order.Details = append(order.Details, models.OrderDetail{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				ListPrice: line.ListPrice,
			})
		}
		order.Histories = append(order.Histories, models.OrderStatusHistory{
			Status: enums.OrderStatusPlaced,
		})
		bill := &models.Bill{
			Subtotal:      priced.quote.Subtotal,
			ShippingCost:  priced.quote.ShippingCost,
			Discount:      priced.quote.DiscountTotal,
			Total:         priced.quote.Total,
			PaymentMethod: input.PaymentMethod,
			Status:        enums.BillStatusUnpaid,
		}
		if input.PaymentMethod.SettlesImmediately() {
			now := time.Now()
			bill.Status = enums.BillStatusPaid
			bill.PaymentTime = &now
		}
		order.Bill = bill

		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return err
		}

		if err := s.recordRedemptions(ctx, tx, order, priced); err != nil {
			return err
		}

		consumed := make([]uuid.UUID, 0, len(priced.lines))
		for _, line := range priced.lines {
			consumed = append(consumed, line.ID)
		}
		if err := s.cartRepo.WithTx(tx).MarkStatus(ctx, consumed, enums.CartLineStatusConsumed); err != nil {
			return err
		}

		placed = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{AccountID: input.AccountID},
			OccurredAt:    orderDate,
			Data: OrderPlacedEvent{
				OrderID:       order.ID,
				AccountID:     input.AccountID,
				Total:         priced.quote.Total,
				PaymentMethod: input.PaymentMethod,
				LineCount:     len(order.Details),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, placed.ID.String()), "order placed")
	}
	if s.recorder != nil {
		for _, line := range priced.quote.Lines {
			s.recorder.Record(ctx, analytics.Event{
				AccountID:  input.AccountID,
				ProductID:  line.ProductID,
				VariantID:  line.VariantID,
				Type:       enums.BehaviorTypePurchase,
				OccurredAt: orderDate,
			})
		}
	}
	return placed, nil
}

// priceCart loads the live cart, checks availability, resolves vouchers and
// runs the calculator. Shared by preview and placement.
func (s *Service) priceCart(ctx context.Context, db *gorm.DB, accountID uuid.UUID, lineIDs []uuid.UUID, voucherCodes []string, shippingFeeID uuid.UUID, orderDate time.Time) (*pricedCart, error) {
	cartRepo := s.cartRepo.WithTx(db)
	lines, err := cartRepo.ActiveLines(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(lineIDs) > 0 {
		wanted := make(map[uuid.UUID]bool, len(lineIDs))
		for _, id := range lineIDs {
			wanted[id] = true
		}
		filtered := lines[:0]
		for _, line := range lines {
			if wanted[line.ID] {
				filtered = append(filtered, line)
			}
		}
		lines = filtered
		if len(lines) != len(lineIDs) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	catalogRepo := s.catalog.WithTx(db)
	variantIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		variantIDs = append(variantIDs, line.VariantID)
	}
	infos, err := catalogRepo.FindVariants(ctx, variantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart variants")
	}

	productIDs := make([]uuid.UUID, 0, len(lines))
	var listSubtotal int64
	for _, line := range lines {
		info := infos[line.VariantID]
		if info == nil {
			return nil, pkgerrors.New(pkgerrors.CodeProductUnavailable, "a cart item is no longer available")
		}
		if info.ProductStatus == enums.ProductStatusHidden || info.VariantStatus != enums.VariantStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeProductUnavailable,
				fmt.Sprintf("%s is no longer available", info.ProductName)).
				WithDetails(map[string]any{"variant_id": line.VariantID.String()})
		}
		productIDs = append(productIDs, info.ProductID)
		listSubtotal += info.Price * int64(line.Quantity)
	}

	promos, err := catalogRepo.ActivePromotionPercents(ctx, productIDs, orderDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading promotions")
	}

	priceLines := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		info := infos[line.VariantID]
		priceLines = append(priceLines, pricing.Line{
			VariantID:     line.VariantID,
			ProductID:     info.ProductID,
			Quantity:      line.Quantity,
			ListPrice:     info.Price,
			PromoPercents: promos[info.ProductID],
		})
	}

	fee, err := s.repo.WithTx(db).FindShippingFee(ctx, shippingFeeID)
	if err != nil {
		return nil, err
	}

	priced := &pricedCart{lines: lines, infos: infos}
	voucherRepo := s.vouchers.WithTx(db)
	for _, code := range voucherCodes {
		voucher, err := voucherRepo.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		used, err := voucherRepo.UsedByAccount(ctx, voucher.ID, accountID)
		if err != nil {
			return nil, err
		}
		if err := vouchers.CheckEligibility(voucher, used, listSubtotal, orderDate); err != nil {
			return nil, err
		}

		rule := pricing.VoucherRule{ID: voucher.ID, Type: voucher.Type, Percent: voucher.Percent}
		if voucher.Type == enums.VoucherTypeCategoryScoped {
			rule.AppliesToVariant, err = s.matchCategoryScope(ctx, catalogRepo, voucherRepo, voucher.ID, lines, infos)
			if err != nil {
				return nil, err
			}
			if len(rule.AppliesToVariant) == 0 {
				return nil, pkgerrors.New(pkgerrors.CodeVoucherInvalid,
					fmt.Sprintf("voucher %s does not match any item in the cart", voucher.Code))
			}
		}
		priced.rules = append(priced.rules, rule)
		priced.vouchers = append(priced.vouchers, voucher)
	}

	priced.quote, err = pricing.Compute(priceLines, fee.Cost, priced.rules)
	if err != nil {
		return nil, err
	}
	return priced, nil
}

// matchCategoryScope resolves which cart variants a category voucher covers.
// A product matches when its category, or any ancestor of it, is in scope.
func (s *Service) matchCategoryScope(ctx context.Context, catalogRepo *catalog.Repository, voucherRepo *vouchers.Repository, voucherID uuid.UUID, lines []models.CartLine, infos map[uuid.UUID]*catalog.VariantInfo) (map[uuid.UUID]bool, error) {
	scope, err := voucherRepo.CategoryScope(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	scoped := make(map[uuid.UUID]bool, len(scope))
	for _, id := range scope {
		scoped[id] = true
	}

	matched := map[uuid.UUID]bool{}
	pathCache := map[uuid.UUID][]uuid.UUID{}
	for _, line := range lines {
		info := infos[line.VariantID]
		path, ok := pathCache[info.CategoryID]
		if !ok {
			path, err = catalogRepo.CategoryPath(ctx, info.CategoryID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "walking category path")
			}
			pathCache[info.CategoryID] = path
		}
		for _, categoryID := range path {
			if scoped[categoryID] {
				matched[line.VariantID] = true
				break
			}
		}
	}
	return matched, nil
}

// recordRedemptions persists OrderVoucher rows and, for category vouchers, the
// per-line shares against the created order details.
func (s *Service) recordRedemptions(ctx context.Context, tx *gorm.DB, order *models.Order, priced *pricedCart) error {
	if len(priced.quote.VoucherDiscounts) == 0 {
		return nil
	}
	detailByVariant := make(map[uuid.UUID]uuid.UUID, len(order.Details))
	for _, detail := range order.Details {
		detailByVariant[detail.VariantID] = detail.ID
	}

	voucherRepo := s.vouchers.WithTx(tx)
	for _, disc := range priced.quote.VoucherDiscounts {
		redemption := &models.OrderVoucher{
			OrderID:   order.ID,
			VoucherID: disc.VoucherID,
			AccountID: order.AccountID,
			Discount:  disc.Amount,
		}
		if err := voucherRepo.InsertRedemption(ctx, redemption); err != nil {
			return err
		}
		if len(disc.LineShares) == 0 {
			continue
		}
		shares := make([]models.VoucherOrderDetail, 0, len(disc.LineShares))
		for variantID, amount := range disc.LineShares {
			shares = append(shares, models.VoucherOrderDetail{
				OrderVoucherID: redemption.ID,
				OrderDetailID:  detailByVariant[variantID],
				Discount:       amount,
			})
		}
		if err := voucherRepo.InsertLineShares(ctx, shares); err != nil {
			return err
		}
	}
	return nil
}

// Transition moves an order along the forward path. Delivered stamps the bill
// invoice time and settles cash-on-delivery bills; completed stamps the
// completion timestamp.
func (s *Service) Transition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, note *string) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.Find(ctx, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, to) {
			return transitionError(order.Status, to)
		}

		now := time.Now()
		extra := map[string]any{}
		switch to {
		case enums.OrderStatusDelivered:
			extra["delivered_at"] = now
		case enums.OrderStatusCompleted:
			extra["completed_at"] = now
		}
		if err := repo.UpdateStatus(ctx, orderID, order.Status, to, extra); err != nil {
			return err
		}
		if err := repo.InsertHistory(ctx, &models.OrderStatusHistory{OrderID: orderID, Status: to, Note: note}); err != nil {
			return err
		}

		if to == enums.OrderStatusDelivered {
			billUpdates := map[string]any{"invoice_time": now}
			if order.Bill != nil && order.Bill.PaymentMethod == enums.PaymentMethodCOD {
				billUpdates["status"] = enums.BillStatusPaid
				billUpdates["payment_time"] = now
			}
			if err := repo.UpdateBill(ctx, orderID, billUpdates); err != nil {
				return err
			}
		}

		eventType := enums.EventOrderStatusChanged
		data := OrderStatusEvent{OrderID: orderID, From: order.Status, To: to, Note: note}
		if to == enums.OrderStatusCompleted {
			eventType = enums.EventOrderCompleted
			revenueAt := revenueTimestamp(order.Bill, now)
			data.RevenueAt = &revenueAt
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Version:       1,
			OccurredAt:    now,
			Data:          data,
		})
	})
}

// Cancel aborts an order that has not been delivered yet and reverses its
// stock reservations.
func (s *Service) Cancel(ctx context.Context, accountID, orderID uuid.UUID, reason string) error {
	return s.compensate(ctx, accountID, orderID, enums.OrderStatusCancelled, enums.EventOrderCancelled, reason)
}

// RequestReturn flags a delivered or completed order for return and reverses
// its stock reservations.
func (s *Service) RequestReturn(ctx context.Context, accountID, orderID uuid.UUID, reason string) error {
	return s.compensate(ctx, accountID, orderID, enums.OrderStatusReturnRequested, enums.EventOrderReturnRequested, reason)
}

// compensate reverses exactly the placement's stock side effects and appends
// the reason to the history. Voucher budgets stay spent: a redemption is
// consumed even when the order it paid for goes away.
func (s *Service) compensate(ctx context.Context, accountID, orderID uuid.UUID, to enums.OrderStatus, eventType enums.OutboxEventType, reason string) error {
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a reason is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOwned(ctx, accountID, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, to) {
			return transitionError(order.Status, to)
		}

		if err := repo.UpdateStatus(ctx, orderID, order.Status, to, nil); err != nil {
			return err
		}
		if err := repo.InsertHistory(ctx, &models.OrderStatusHistory{OrderID: orderID, Status: to, Note: &reason}); err != nil {
			return err
		}

		store := s.inventory.WithTx(tx)
		for _, detail := range order.Details {
			err := store.Release(ctx, inventory.Item{
				VariantID: detail.VariantID,
				ProductID: detail.ProductID,
				Quantity:  detail.Quantity,
			})
			if err != nil {
				return err
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Version:       1,
			Actor:         &outbox.ActorRef{AccountID: accountID},
			Data:          OrderStatusEvent{OrderID: orderID, From: order.Status, To: to, Note: &reason},
		})
	})
}

// AutoCompleteDelivered promotes orders that sat in delivered past the
// configured window. Each order gets its own transaction so a crash mid-sweep
// keeps the progress already made, and the guarded status update makes a
// rerun over the same rows a no-op.
func (s *Service) AutoCompleteDelivered(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.cfg.AutoCompleteAfter)
	ids, err := s.repo.DeliveredBefore(ctx, cutoff, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	note := "auto-completed after the post-delivery window"
	completed := 0
	var errs error
	for _, orderID := range ids {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			order, err := repo.Find(ctx, orderID)
			if err != nil {
				return err
			}
			err = repo.UpdateStatus(ctx, orderID, enums.OrderStatusDelivered, enums.OrderStatusCompleted,
				map[string]any{"completed_at": now})
			if err != nil {
				return err
			}
			if err := repo.InsertHistory(ctx, &models.OrderStatusHistory{OrderID: orderID, Status: enums.OrderStatusCompleted, Note: &note}); err != nil {
				return err
			}
			revenueAt := revenueTimestamp(order.Bill, now)
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCompleted,
				AggregateType: enums.AggregateOrder,
				AggregateID:   orderID,
				Version:       1,
				OccurredAt:    now,
				Data:          OrderStatusEvent{OrderID: orderID, From: enums.OrderStatusDelivered, To: enums.OrderStatusCompleted, RevenueAt: &revenueAt},
			})
		})
		if err != nil {
			// A concurrent transition already moved the order along.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", orderID, err))
			continue
		}
		completed++
	}
	return completed, errs
}

// revenueTimestamp derives the completion event's revenue moment from the
// bill. Delivered already stamped payment_time for settled bills and
// invoice_time for the rest.
func revenueTimestamp(bill *models.Bill, completedAt time.Time) time.Time {
	if bill == nil {
		return analytics.RevenueTimestamp(nil, nil, completedAt)
	}
	return analytics.RevenueTimestamp(bill.PaymentTime, bill.InvoiceTime, completedAt)
}

// Get returns one order owned by the account.
func (s *Service) Get(ctx context.Context, accountID, orderID uuid.UUID) (*models.Order, error) {
	return s.repo.FindOwned(ctx, accountID, orderID)
}

// List returns the account's orders, newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

// Histories returns the transition log for an owned order. The note on a
// cancelled or return_requested row carries the customer's reason.
func (s *Service) Histories(ctx context.Context, accountID, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	if _, err := s.repo.FindOwned(ctx, accountID, orderID); err != nil {
		return nil, err
	}
	return s.repo.Histories(ctx, orderID)
}

// Bill returns the money breakdown of an owned order together with its lines
// and voucher redemptions.
func (s *Service) Bill(ctx context.Context, accountID, orderID uuid.UUID) (*BillView, error) {
	order, err := s.repo.FindOwned(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Bill == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
	}
	redemptions, err := s.repo.VouchersForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &BillView{Bill: *order.Bill, Lines: order.Details, Vouchers: redemptions}, nil
}
