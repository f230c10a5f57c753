package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/api/responses"
	"github.com/minhtrandev/shopora-backend/api/validators"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

type OrderTransitioner interface {
	Transition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, note *string) error
}

type statusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// AdminOrderStatus moves an order forward through the fulfilment lifecycle.
// Legality of the step is decided by the order service, not here.
func AdminOrderStatus(svc OrderTransitioner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}

		if err := svc.Transition(r.Context(), orderID, status, req.Note); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": orderID, "status": status})
	}
}
