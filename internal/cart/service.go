package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
)

type cartRepository interface {
	FindByBuyer(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error)
	EnsureForBuyer(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error)
	ReplaceItemsTx(tx *gorm.DB, cartID uuid.UUID, items []models.CartLineItem) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReplaceItemInput is one incoming line in a full cart replacement.
type ReplaceItemInput struct {
	SupplierID     uuid.UUID        `json:"supplier_id" validate:"required"`
	ItemRef        string           `json:"item_ref" validate:"required"`
	Name           string           `json:"name" validate:"required"`
	Quantity       int              `json:"quantity" validate:"required,gt=0"`
	UnitPriceNet   *decimal.Decimal `json:"unit_price_net,omitempty"`
	UnitPriceGross *decimal.Decimal `json:"unit_price_gross,omitempty"`
	PackSize       string           `json:"pack_size,omitempty"`
	UnitLabel      string           `json:"unit_label,omitempty"`
}

// Service exposes cart operations.
type Service interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) (*CartDTO, error)
	ReplaceItems(ctx context.Context, buyerID uuid.UUID, items []ReplaceItemInput) (*CartDTO, error)
}

type service struct {
	repo cartRepository
	tx   txRunner
}

// NewService builds a cart service with the provided repository and
// transaction runner.
func NewService(repo cartRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetCart(ctx context.Context, buyerID uuid.UUID) (*CartDTO, error) {
	record, err := s.repo.EnsureForBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return FromModel(record), nil
}

// ReplaceItems swaps the whole cart in one transaction. Partial updates are
// not supported: the client always sends the full desired cart.
func (s *service) ReplaceItems(ctx context.Context, buyerID uuid.UUID, items []ReplaceItemInput) (*CartDTO, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if item.SupplierID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
		}
	}

	record, err := s.repo.EnsureForBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	rows := make([]models.CartLineItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.CartLineItem{
			SupplierID:     item.SupplierID,
			ItemRef:        item.ItemRef,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceNet:   item.UnitPriceNet,
			UnitPriceGross: item.UnitPriceGross,
			PackSize:       item.PackSize,
			UnitLabel:      item.UnitLabel,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.ReplaceItemsTx(tx, record.ID, rows)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace cart items")
	}

	fresh, err := s.repo.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return FromModel(fresh), nil
}
