package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/api/middleware"
	"github.com/minhtrandev/shopora-backend/api/responses"
	"github.com/minhtrandev/shopora-backend/api/validators"
	"github.com/minhtrandev/shopora-backend/internal/cart"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

type CartService interface {
	AddToCart(ctx context.Context, accountID, variantID uuid.UUID, quantity int) (*models.CartLine, error)
	UpdateQuantity(ctx context.Context, accountID, lineID uuid.UUID, quantity int) error
	Remove(ctx context.Context, accountID, lineID uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]cart.LineView, error)
}

type cartAddRequest struct {
	VariantID uuid.UUID `json:"variantId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=999"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=999"`
}

type cartLineResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	VariantID   uuid.UUID `json:"variantId"`
	ProductName string    `json:"productName"`
	VariantName string    `json:"variantName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unitPrice"`
	InStock     int       `json:"inStock"`
	Available   bool      `json:"available"`
}

func toCartLineResponse(view cart.LineView) cartLineResponse {
	return cartLineResponse{
		ID:          view.Line.ID,
		ProductID:   view.ProductID,
		VariantID:   view.Line.VariantID,
		ProductName: view.ProductName,
		VariantName: view.VariantName,
		Quantity:    view.Line.Quantity,
		UnitPrice:   view.UnitPrice,
		InStock:     view.InStock,
		Available:   view.Available,
	}
}

// CartList returns every live line with availability recomputed at read time.
func CartList(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		views, err := svc.List(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines := make([]cartLineResponse, 0, len(views))
		for _, view := range views {
			lines = append(lines, toCartLineResponse(view))
		}
		responses.WriteSuccess(w, map[string]any{"lines": lines})
	}
}

// CartAdd merges the requested quantity into the account's cart.
func CartAdd(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		var req cartAddRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddToCart(r.Context(), accountID, req.VariantID, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":        line.ID,
			"variantId": line.VariantID,
			"quantity":  line.Quantity,
		})
	}
}

// CartUpdateQuantity overwrites the quantity of one cart line.
func CartUpdateQuantity(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		lineID, err := parseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateQuantity(r.Context(), accountID, lineID, req.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": lineID, "quantity": req.Quantity})
	}
}

// CartRemove soft-deletes one cart line.
func CartRemove(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		lineID, err := parseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), accountID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": lineID, "removed": true})
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").
			WithDetails(map[string]any{"field": name})
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "path parameter must be a uuid").
			WithDetails(map[string]any{"field": name})
	}
	return value, nil
}
