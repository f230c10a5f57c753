package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/internal/address"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
)

// PlaceOrderInput is everything checkout submits for one placement.
type PlaceOrderInput struct {
	AccountID     uuid.UUID
	CartLineIDs   []uuid.UUID
	Address       address.Input
	VoucherCodes  []string
	ShippingFeeID uuid.UUID
	PaymentMethod enums.PaymentMethod
	Note          *string
}

// QuoteInput previews pricing for the current cart without touching state.
type QuoteInput struct {
	AccountID     uuid.UUID
	CartLineIDs   []uuid.UUID
	VoucherCodes  []string
	ShippingFeeID uuid.UUID
}

// OrderPlacedEvent is the outbox payload for a committed placement.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID           `json:"orderId"`
	AccountID     uuid.UUID           `json:"accountId"`
	Total         int64               `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	LineCount     int                 `json:"lineCount"`
}

// OrderStatusEvent is the outbox payload for a status transition. RevenueAt
// is set on completion events only: the moment the order's money counts as
// earned, derived from the bill.
type OrderStatusEvent struct {
	OrderID   uuid.UUID         `json:"orderId"`
	From      enums.OrderStatus `json:"from"`
	To        enums.OrderStatus `json:"to"`
	Note      *string           `json:"note,omitempty"`
	RevenueAt *time.Time        `json:"revenueAt,omitempty"`
}

// BillView is the pricing breakdown of one order, recomputed from its
// persisted details for display.
type BillView struct {
	Bill     models.Bill
	Lines    []models.OrderDetail
	Vouchers []models.OrderVoucher
}
