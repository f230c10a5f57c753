package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/api/middleware"
	"github.com/minhtrandev/shopora-backend/api/responses"
	"github.com/minhtrandev/shopora-backend/api/validators"
	"github.com/minhtrandev/shopora-backend/internal/address"
	"github.com/minhtrandev/shopora-backend/internal/orders"
	"github.com/minhtrandev/shopora-backend/internal/pricing"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

type CheckoutService interface {
	Quote(ctx context.Context, input orders.QuoteInput) (pricing.Quote, error)
	PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*models.Order, error)
}

type addressPayload struct {
	AddressID     *uuid.UUID `json:"addressId,omitempty"`
	RecipientName string     `json:"recipientName,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Street        string     `json:"street,omitempty"`
	Ward          string     `json:"ward,omitempty"`
	District      string     `json:"district,omitempty"`
	City          string     `json:"city,omitempty"`
	IsDefault     bool       `json:"isDefault,omitempty"`
}

func (p addressPayload) toInput() address.Input {
	return address.Input{
		AddressID:     p.AddressID,
		RecipientName: validators.SanitizeString(p.RecipientName, 120),
		Phone:         validators.SanitizeString(p.Phone, 20),
		Street:        validators.SanitizeString(p.Street, 255),
		Ward:          validators.SanitizeString(p.Ward, 120),
		District:      validators.SanitizeString(p.District, 120),
		City:          validators.SanitizeString(p.City, 120),
		IsDefault:     p.IsDefault,
	}
}

type quoteRequest struct {
	CartLineIDs   []uuid.UUID `json:"cartLineIds,omitempty"`
	VoucherCodes  []string    `json:"voucherCodes,omitempty" validate:"max=2,dive,min=1,max=64"`
	ShippingFeeID uuid.UUID   `json:"shippingFeeId" validate:"required"`
}

type checkoutRequest struct {
	CartLineIDs   []uuid.UUID    `json:"cartLineIds,omitempty"`
	Address       addressPayload `json:"address"`
	VoucherCodes  []string       `json:"voucherCodes,omitempty" validate:"max=2,dive,min=1,max=64"`
	ShippingFeeID uuid.UUID      `json:"shippingFeeId" validate:"required"`
	PaymentMethod string         `json:"paymentMethod" validate:"required"`
	Note          *string        `json:"note,omitempty"`
}

type quotedLineResponse struct {
	VariantID uuid.UUID `json:"variantId"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	ListPrice int64     `json:"listPrice"`
	UnitPrice int64     `json:"unitPrice"`
	LineTotal int64     `json:"lineTotal"`
}

type voucherDiscountResponse struct {
	VoucherID uuid.UUID `json:"voucherId"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
}

type quoteResponse struct {
	Lines            []quotedLineResponse      `json:"lines"`
	Subtotal         int64                     `json:"subtotal"`
	ShippingCost     int64                     `json:"shippingCost"`
	VoucherDiscounts []voucherDiscountResponse `json:"voucherDiscounts"`
	DiscountTotal    int64                     `json:"discountTotal"`
	Total            int64                     `json:"total"`
}

func toQuoteResponse(quote pricing.Quote) quoteResponse {
	resp := quoteResponse{
		Lines:            make([]quotedLineResponse, 0, len(quote.Lines)),
		Subtotal:         quote.Subtotal,
		ShippingCost:     quote.ShippingCost,
		VoucherDiscounts: make([]voucherDiscountResponse, 0, len(quote.VoucherDiscounts)),
		DiscountTotal:    quote.DiscountTotal,
		Total:            quote.Total,
	}
	for _, line := range quote.Lines {
		resp.Lines = append(resp.Lines, quotedLineResponse{
			VariantID: line.VariantID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			ListPrice: line.ListPrice,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	for _, discount := range quote.VoucherDiscounts {
		resp.VoucherDiscounts = append(resp.VoucherDiscounts, voucherDiscountResponse{
			VoucherID: discount.VoucherID,
			Type:      string(discount.Type),
			Amount:    discount.Amount,
		})
	}
	return resp
}

// CheckoutQuote prices the cart with the requested vouchers without placing
// anything.
func CheckoutQuote(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), orders.QuoteInput{
			AccountID:     accountID,
			CartLineIDs:   req.CartLineIDs,
			VoucherCodes:  req.VoucherCodes,
			ShippingFeeID: req.ShippingFeeID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toQuoteResponse(quote))
	}
}

// Checkout places the order. Everything commits or nothing does, so the
// response either carries the new order or the reason placement was refused.
func Checkout(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method"))
			return
		}

		order, err := svc.PlaceOrder(r.Context(), orders.PlaceOrderInput{
			AccountID:     accountID,
			CartLineIDs:   req.CartLineIDs,
			Address:       req.Address.toInput(),
			VoucherCodes:  req.VoucherCodes,
			ShippingFeeID: req.ShippingFeeID,
			PaymentMethod: method,
			Note:          req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderResponse(order))
	}
}
