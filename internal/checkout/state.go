package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
)

// StateRepository handles the per-(buyer, supplier) order state records.
// These rows carry the only memory that outlives a checkout derivation:
// overrides, buyer-edited contact data, notes, delivery overrides and the
// remembered dispatch channel.
type StateRepository struct {
	db *gorm.DB
}

// NewStateRepository binds a GORM DB to order state operations.
func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// FindByBuyer loads all state rows for the buyer, keyed by supplier.
// Malformed enum values persisted by older clients are discarded on load and
// treated as absent.
func (r *StateRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID) (map[uuid.UUID]*models.SupplierOrderState, error) {
	var rows []models.SupplierOrderState
	if err := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.SupplierOrderState, len(rows))
	for i := range rows {
		sanitizeState(&rows[i])
		out[rows[i].SupplierID] = &rows[i]
	}
	return out, nil
}

// GetOrCreate loads the state row for the pair, creating an empty one the
// first time the supplier appears in the buyer's cart.
func (r *StateRepository) GetOrCreate(ctx context.Context, buyerID, supplierID uuid.UUID) (*models.SupplierOrderState, error) {
	var row models.SupplierOrderState
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND supplier_id = ?", buyerID, supplierID).
		First(&row).Error
	if err == nil {
		sanitizeState(&row)
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.SupplierOrderState{ID: uuid.New(), BuyerID: buyerID, SupplierID: supplierID}
	if err := r.db.WithContext(ctx).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// Save persists the full state row.
func (r *StateRepository) Save(ctx context.Context, state *models.SupplierOrderState) error {
	if state == nil {
		return errors.New("state is required")
	}
	return r.db.WithContext(ctx).Save(state).Error
}

// SaveTx persists the state row inside the given transaction.
func (r *StateRepository) SaveTx(tx *gorm.DB, state *models.SupplierOrderState) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if state == nil {
		return errors.New("state is required")
	}
	return tx.Save(state).Error
}

// DeleteStale removes state rows for suppliers that no longer have items in
// the buyer's cart.
func (r *StateRepository) DeleteStale(ctx context.Context, buyerID uuid.UUID, activeSupplierIDs []uuid.UUID) error {
	q := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID)
	if len(activeSupplierIDs) > 0 {
		q = q.Where("supplier_id NOT IN ?", activeSupplierIDs)
	}
	return q.Delete(&models.SupplierOrderState{}).Error
}

// sanitizeState drops persisted values that no longer parse as valid enums.
// Corrupt state falls back to defaults instead of propagating as an error.
func sanitizeState(state *models.SupplierOrderState) {
	if state.Override != nil && !state.Override.IsValid() {
		state.Override = nil
		state.OverrideSetAt = nil
	}
	if state.ChannelPref != nil && !state.ChannelPref.IsValid() {
		state.ChannelPref = nil
	}
}
