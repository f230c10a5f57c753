package address

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
)

// Input is a new address-book entry, or a reference to an existing one when
// AddressID is set.
type Input struct {
	AddressID     *uuid.UUID
	RecipientName string
	Phone         string
	Street        string
	Ward          string
	District      string
	City          string
	IsDefault     bool
}

// Service manages the account address book and resolves the shipping address
// during checkout.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithTx binds the service to a transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	if tx == nil {
		return s
	}
	return &Service{db: tx}
}

// Resolve returns the shipping address for an order: an owned existing entry
// when AddressID is set, otherwise a freshly created one. Meant to run inside
// the order placement transaction.
func (s *Service) Resolve(ctx context.Context, accountID uuid.UUID, input Input) (*models.Address, error) {
	if input.AddressID != nil {
		return s.Get(ctx, accountID, *input.AddressID)
	}
	return s.Create(ctx, accountID, input)
}

// Get loads one address and verifies ownership.
func (s *Service) Get(ctx context.Context, accountID, addressID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	err := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", addressID, accountID).
		First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading address")
	}
	return &addr, nil
}

// Create appends an entry to the address book. Marking it default clears the
// flag on every other entry so the account keeps at most one default.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, input Input) (*models.Address, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if strings.TrimSpace(input.RecipientName) == "" || strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient name and phone are required")
	}
	if strings.TrimSpace(input.Street) == "" || strings.TrimSpace(input.City) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "street and city are required")
	}

	addr := models.Address{
		ID:            uuid.New(),
		AccountID:     accountID,
		RecipientName: strings.TrimSpace(input.RecipientName),
		Phone:         strings.TrimSpace(input.Phone),
		Street:        strings.TrimSpace(input.Street),
		Ward:          strings.TrimSpace(input.Ward),
		District:      strings.TrimSpace(input.District),
		City:          strings.TrimSpace(input.City),
		IsDefault:     input.IsDefault,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			err := tx.Model(&models.Address{}).
				Where("account_id = ? AND is_default", accountID).
				Update("is_default", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(&addr).Error
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating address")
	}
	return &addr, nil
}

// Default returns the account's default address.
func (s *Service) Default(ctx context.Context, accountID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND is_default", accountID).
		First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no default address")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading default address")
	}
	return &addr, nil
}

// List returns the address book, default entry first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]models.Address, error) {
	var addrs []models.Address
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("is_default DESC, created_at DESC").
		Find(&addrs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading addresses")
	}
	return addrs, nil
}
