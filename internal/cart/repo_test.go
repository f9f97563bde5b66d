package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	cartRecords := `
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartLineItems := `
CREATE TABLE IF NOT EXISTS cart_line_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  item_ref TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_net TEXT,
  unit_price_gross TEXT,
  pack_size TEXT,
  unit_label TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(cartRecords).Error)
	require.NoError(t, db.Exec(cartLineItems).Error)
	return db
}

func newLineItem(cartID, supplierID uuid.UUID, ref string, qty int) models.CartLineItem {
	price := decimal.NewFromFloat(4.20)
	return models.CartLineItem{
		ID:           uuid.New(),
		CartID:       cartID,
		SupplierID:   supplierID,
		ItemRef:      ref,
		Name:         "Vollmilch 3.5%",
		Quantity:     qty,
		UnitPriceNet: &price,
	}
}

func TestEnsureForBuyerCreatesOnce(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	buyerID := uuid.New()

	first, err := repo.EnsureForBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, buyerID, first.BuyerID)
	assert.Empty(t, first.Items)

	second, err := repo.EnsureForBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestFindByBuyerNotFound(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByBuyer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReplaceItemsTxSwapsContents(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	buyerID := uuid.New()
	supplierID := uuid.New()

	record, err := repo.EnsureForBuyer(context.Background(), buyerID)
	require.NoError(t, err)

	initial := []models.CartLineItem{
		newLineItem(record.ID, supplierID, "MILK-1L", 10),
		newLineItem(record.ID, supplierID, "BUTTER-250", 4),
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.ReplaceItemsTx(tx, record.ID, initial)
	}))

	replacement := []models.CartLineItem{
		newLineItem(record.ID, supplierID, "JOGHURT-500", 6),
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.ReplaceItemsTx(tx, record.ID, replacement)
	}))

	loaded, err := repo.FindByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "JOGHURT-500", loaded.Items[0].ItemRef)
	assert.Equal(t, 6, loaded.Items[0].Quantity)
}

func TestReplaceItemsTxEmptyClearsCart(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	buyerID := uuid.New()

	record, err := repo.EnsureForBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.ReplaceItemsTx(tx, record.ID, []models.CartLineItem{
			newLineItem(record.ID, uuid.New(), "MILK-1L", 2),
		})
	}))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.ReplaceItemsTx(tx, record.ID, nil)
	}))

	loaded, err := repo.FindByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)
}

func TestReplaceItemsTxRequiresTransaction(t *testing.T) {
	repo := NewRepository(setupCartTestDB(t))
	err := repo.ReplaceItemsTx(nil, uuid.New(), nil)
	assert.ErrorIs(t, err, gorm.ErrInvalidTransaction)
}
