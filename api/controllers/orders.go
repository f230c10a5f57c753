package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/api/middleware"
	"github.com/minhtrandev/shopora-backend/api/responses"
	"github.com/minhtrandev/shopora-backend/api/validators"
	"github.com/minhtrandev/shopora-backend/internal/orders"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
	"github.com/minhtrandev/shopora-backend/pkg/pagination"
)

type OrderService interface {
	Get(ctx context.Context, accountID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Order, error)
	Histories(ctx context.Context, accountID, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
	Bill(ctx context.Context, accountID, orderID uuid.UUID) (*orders.BillView, error)
	Cancel(ctx context.Context, accountID, orderID uuid.UUID, reason string) error
	RequestReturn(ctx context.Context, accountID, orderID uuid.UUID, reason string) error
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type orderDetailResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	VariantID uuid.UUID `json:"variantId"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unitPrice"`
	ListPrice int64     `json:"listPrice"`
}

type billResponse struct {
	Subtotal      int64      `json:"subtotal"`
	ShippingCost  int64      `json:"shippingCost"`
	Discount      int64      `json:"discount"`
	Total         int64      `json:"total"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
	InvoiceTime   *time.Time `json:"invoiceTime,omitempty"`
	PaymentTime   *time.Time `json:"paymentTime,omitempty"`
}

type orderResponse struct {
	ID          uuid.UUID             `json:"id"`
	Status      string                `json:"status"`
	OrderDate   time.Time             `json:"orderDate"`
	Note        *string               `json:"note,omitempty"`
	DeliveredAt *time.Time            `json:"deliveredAt,omitempty"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
	Details     []orderDetailResponse `json:"details,omitempty"`
	Bill        *billResponse         `json:"bill,omitempty"`
}

type historyResponse struct {
	Status    string    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toBillResponse(bill models.Bill) billResponse {
	return billResponse{
		Subtotal:      bill.Subtotal,
		ShippingCost:  bill.ShippingCost,
		Discount:      bill.Discount,
		Total:         bill.Total,
		PaymentMethod: string(bill.PaymentMethod),
		Status:        string(bill.Status),
		InvoiceTime:   bill.InvoiceTime,
		PaymentTime:   bill.PaymentTime,
	}
}

func toOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:          order.ID,
		Status:      string(order.Status),
		OrderDate:   order.OrderDate,
		Note:        order.Note,
		DeliveredAt: order.DeliveredAt,
		CompletedAt: order.CompletedAt,
	}
	for _, detail := range order.Details {
		resp.Details = append(resp.Details, orderDetailResponse{
			ID:        detail.ID,
			ProductID: detail.ProductID,
			VariantID: detail.VariantID,
			Quantity:  detail.Quantity,
			UnitPrice: detail.UnitPrice,
			ListPrice: detail.ListPrice,
		})
	}
	if order.Bill != nil {
		bill := toBillResponse(*order.Bill)
		resp.Bill = &bill
	}
	return resp
}

// OrderList pages through the account's orders, newest first.
func OrderList(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), accountID, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]orderResponse, 0, len(list))
		for i := range list {
			items = append(items, toOrderResponse(&list[i]))
		}
		responses.WriteSuccess(w, map[string]any{"orders": items})
	}
}

// OrderDetail returns one owned order with its lines and bill.
func OrderDetail(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), accountID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// OrderHistories returns the append-only status trail of one owned order.
func OrderHistories(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		histories, err := svc.Histories(r.Context(), accountID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]historyResponse, 0, len(histories))
		for _, h := range histories {
			items = append(items, historyResponse{
				Status:    string(h.Status),
				Note:      h.Note,
				CreatedAt: h.CreatedAt,
			})
		}
		responses.WriteSuccess(w, map[string]any{"histories": items})
	}
}

// OrderBill returns the pricing breakdown of one owned order.
func OrderBill(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Bill(r.Context(), accountID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines := make([]orderDetailResponse, 0, len(view.Lines))
		for _, line := range view.Lines {
			lines = append(lines, orderDetailResponse{
				ID:        line.ID,
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				ListPrice: line.ListPrice,
			})
		}
		responses.WriteSuccess(w, map[string]any{
			"bill":  toBillResponse(view.Bill),
			"lines": lines,
		})
	}
}

// OrderCancel cancels an owned order that has not been delivered yet.
func OrderCancel(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reasonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), accountID, orderID, validators.SanitizeString(req.Reason, 500)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": orderID, "status": "cancelled"})
	}
}

// OrderReturn opens a return on a delivered or completed owned order.
func OrderReturn(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reasonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RequestReturn(r.Context(), accountID, orderID, validators.SanitizeString(req.Reason, 500)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": orderID, "status": "return_requested"})
	}
}
