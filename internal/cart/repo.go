package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
)

// Repository handles cart persistence. Every buyer has at most one cart row.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to cart operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByBuyer loads the buyer's cart with its line items.
func (r *Repository) FindByBuyer(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("buyer_id = ?", buyerID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// EnsureForBuyer loads the buyer's cart, creating an empty one on first use.
func (r *Repository) EnsureForBuyer(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error) {
	record, err := r.FindByBuyer(ctx, buyerID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.CartRecord{ID: uuid.New(), BuyerID: buyerID}
	if err := r.db.WithContext(ctx).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// ReplaceItemsTx swaps the cart's line items inside the given transaction.
func (r *Repository) ReplaceItemsTx(tx *gorm.DB, cartID uuid.UUID, items []models.CartLineItem) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartLineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].CartID = cartID
	}
	return tx.Create(&items).Error
}
