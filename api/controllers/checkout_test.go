package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/api/middleware"
	"github.com/minhtrandev/shopora-backend/internal/orders"
	"github.com/minhtrandev/shopora-backend/internal/pricing"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
)

type checkoutStub struct {
	quoteInput *orders.QuoteInput
	placeInput *orders.PlaceOrderInput
	placeErr   error
}

func (s *checkoutStub) Quote(_ context.Context, input orders.QuoteInput) (pricing.Quote, error) {
	s.quoteInput = &input
	return pricing.Quote{Subtotal: 180000, ShippingCost: 30000, DiscountTotal: 9000, Total: 201000}, nil
}

func (s *checkoutStub) PlaceOrder(_ context.Context, input orders.PlaceOrderInput) (*models.Order, error) {
	s.placeInput = &input
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPlaced}, nil
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithAccountID(req.Context(), uuid.New())
	return req.WithContext(ctx)
}

func TestCheckoutQuoteReturnsBreakdown(t *testing.T) {
	stub := &checkoutStub{}
	handler := CheckoutQuote(stub, nil)

	feeID := uuid.New()
	body := `{"shippingFeeId":"` + feeID.String() + `","voucherCodes":["SALE5"]}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout/quote", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.quoteInput == nil || stub.quoteInput.ShippingFeeID != feeID {
		t.Fatalf("shipping fee id not passed through")
	}
	var payload struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Data.Total != 201000 {
		t.Fatalf("expected total 201000 got %d", payload.Data.Total)
	}
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	stub := &checkoutStub{}
	handler := Checkout(stub, nil)

	body := `{"shippingFeeId":"` + uuid.NewString() + `","paymentMethod":"crypto"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if stub.placeInput != nil {
		t.Fatalf("placement must not run for an unknown payment method")
	}
}

func TestCheckoutPlacesOrder(t *testing.T) {
	stub := &checkoutStub{}
	handler := Checkout(stub, nil)

	feeID := uuid.New()
	body := `{
		"shippingFeeId":"` + feeID.String() + `",
		"paymentMethod":"cod",
		"voucherCodes":["SALE5"],
		"address":{"recipientName":"Tran Thi Mai","phone":"0901234567","street":"12 Nguyen Trai","city":"Ha Noi"}
	}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.placeInput == nil {
		t.Fatalf("expected placement call")
	}
	if stub.placeInput.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("expected cod payment method got %s", stub.placeInput.PaymentMethod)
	}
	if stub.placeInput.Address.RecipientName != "Tran Thi Mai" {
		t.Fatalf("address not passed through")
	}
}

func TestCheckoutSurfacesDomainErrors(t *testing.T) {
	stub := &checkoutStub{
		placeErr: pkgerrors.New(pkgerrors.CodeOutOfStock, "only 2 left of Ao Thun Basic"),
	}
	handler := Checkout(stub, nil)

	body := `{"shippingFeeId":"` + uuid.NewString() + `","paymentMethod":"cod"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", body))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected out-of-stock code got %s", payload.Error.Code)
	}
}
