package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/api/middleware"
	"github.com/minhtrandev/shopora-backend/api/responses"
	"github.com/minhtrandev/shopora-backend/api/validators"
	"github.com/minhtrandev/shopora-backend/internal/address"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

type AddressService interface {
	Create(ctx context.Context, accountID uuid.UUID, input address.Input) (*models.Address, error)
	List(ctx context.Context, accountID uuid.UUID) ([]models.Address, error)
	Default(ctx context.Context, accountID uuid.UUID) (*models.Address, error)
}

type addressCreateRequest struct {
	RecipientName string `json:"recipientName" validate:"required,min=2,max=120"`
	Phone         string `json:"phone" validate:"required,min=8,max=20"`
	Street        string `json:"street" validate:"required,min=3,max=255"`
	Ward          string `json:"ward,omitempty" validate:"omitempty,max=120"`
	District      string `json:"district,omitempty" validate:"omitempty,max=120"`
	City          string `json:"city" validate:"required,min=2,max=120"`
	IsDefault     bool   `json:"isDefault,omitempty"`
}

type addressResponse struct {
	ID            uuid.UUID `json:"id"`
	RecipientName string    `json:"recipientName"`
	Phone         string    `json:"phone"`
	Street        string    `json:"street"`
	Ward          string    `json:"ward,omitempty"`
	District      string    `json:"district,omitempty"`
	City          string    `json:"city"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toAddressResponse(entry models.Address) addressResponse {
	return addressResponse{
		ID:            entry.ID,
		RecipientName: entry.RecipientName,
		Phone:         entry.Phone,
		Street:        entry.Street,
		Ward:          entry.Ward,
		District:      entry.District,
		City:          entry.City,
		IsDefault:     entry.IsDefault,
		CreatedAt:     entry.CreatedAt,
	}
}

// AddressList returns the account's address book, default entry first.
func AddressList(svc AddressService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		entries, err := svc.List(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]addressResponse, 0, len(entries))
		for _, entry := range entries {
			items = append(items, toAddressResponse(entry))
		}
		responses.WriteSuccess(w, map[string]any{"addresses": items})
	}
}

// AddressCreate saves a new shipping destination on the account.
func AddressCreate(svc AddressService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		var req addressCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Create(r.Context(), accountID, address.Input{
			RecipientName: validators.SanitizeString(req.RecipientName, 120),
			Phone:         validators.SanitizeString(req.Phone, 20),
			Street:        validators.SanitizeString(req.Street, 255),
			Ward:          validators.SanitizeString(req.Ward, 120),
			District:      validators.SanitizeString(req.District, 120),
			City:          validators.SanitizeString(req.City, 120),
			IsDefault:     req.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toAddressResponse(*entry))
	}
}

// AddressDefault returns the account's default shipping destination.
func AddressDefault(svc AddressService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountIDFromContext(r.Context())

		entry, err := svc.Default(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAddressResponse(*entry))
	}
}
