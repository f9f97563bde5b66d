package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
)

func setupStateTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS supplier_order_states (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  override TEXT,
  override_set_at DATETIME,
  pending_confirmation INTEGER NOT NULL DEFAULT 0,
  contact TEXT,
  notes TEXT,
  delivery_date DATETIME,
  delivery_address TEXT,
  channel_pref TEXT,
  language TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (buyer_id, supplier_id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestGetOrCreateIsIdempotentPerPair(t *testing.T) {
	repo := NewStateRepository(setupStateTestDB(t))
	buyerID := uuid.New()
	supplierID := uuid.New()

	first, err := repo.GetOrCreate(context.Background(), buyerID, supplierID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Nil(t, first.Override)

	second, err := repo.GetOrCreate(context.Background(), buyerID, supplierID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestFindByBuyerKeysBySupplier(t *testing.T) {
	db := setupStateTestDB(t)
	repo := NewStateRepository(db)
	buyerID := uuid.New()
	supplierA := uuid.New()
	supplierB := uuid.New()

	_, err := repo.GetOrCreate(context.Background(), buyerID, supplierA)
	require.NoError(t, err)
	_, err = repo.GetOrCreate(context.Background(), buyerID, supplierB)
	require.NoError(t, err)
	_, err = repo.GetOrCreate(context.Background(), uuid.New(), supplierA)
	require.NoError(t, err)

	states, err := repo.FindByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Len(t, states, 2)
	assert.Contains(t, states, supplierA)
	assert.Contains(t, states, supplierB)
}

func TestFindByBuyerDiscardsCorruptEnums(t *testing.T) {
	db := setupStateTestDB(t)
	repo := NewStateRepository(db)
	buyerID := uuid.New()
	supplierID := uuid.New()

	state, err := repo.GetOrCreate(context.Background(), buyerID, supplierID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.SupplierOrderState{}).
		Where("id = ?", state.ID).
		Updates(map[string]any{"override": "exploded", "channel_pref": "fax"}).Error)

	states, err := repo.FindByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	require.Contains(t, states, supplierID)
	assert.Nil(t, states[supplierID].Override)
	assert.Nil(t, states[supplierID].ChannelPref)
}

func TestSaveTxPersistsOverride(t *testing.T) {
	db := setupStateTestDB(t)
	repo := NewStateRepository(db)
	buyerID := uuid.New()
	supplierID := uuid.New()

	state, err := repo.GetOrCreate(context.Background(), buyerID, supplierID)
	require.NoError(t, err)

	override := enums.StatusOverrideDraftCreated
	channel := enums.DispatchChannelGmail
	state.Override = &override
	state.ChannelPref = &channel
	state.PendingConfirmation = false

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.SaveTx(tx, state)
	}))

	reloaded, err := repo.GetOrCreate(context.Background(), buyerID, supplierID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Override)
	assert.Equal(t, enums.StatusOverrideDraftCreated, *reloaded.Override)
	require.NotNil(t, reloaded.ChannelPref)
	assert.Equal(t, enums.DispatchChannelGmail, *reloaded.ChannelPref)
}

func TestDeleteStaleKeepsActiveSuppliers(t *testing.T) {
	db := setupStateTestDB(t)
	repo := NewStateRepository(db)
	buyerID := uuid.New()
	active := uuid.New()
	stale := uuid.New()

	_, err := repo.GetOrCreate(context.Background(), buyerID, active)
	require.NoError(t, err)
	_, err = repo.GetOrCreate(context.Background(), buyerID, stale)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteStale(context.Background(), buyerID, []uuid.UUID{active}))

	states, err := repo.FindByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Contains(t, states, active)
	assert.NotContains(t, states, stale)
}

func TestDeleteStaleWithEmptyCartClearsEverything(t *testing.T) {
	db := setupStateTestDB(t)
	repo := NewStateRepository(db)
	buyerID := uuid.New()

	_, err := repo.GetOrCreate(context.Background(), buyerID, uuid.New())
	require.NoError(t, err)

	require.NoError(t, repo.DeleteStale(context.Background(), buyerID, nil))

	states, err := repo.FindByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Empty(t, states)
}
