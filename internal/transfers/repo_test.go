package transfers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

func setupTransfersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	transfersTable := `
CREATE TABLE IF NOT EXISTS transfers (
  id TEXT PRIMARY KEY,
  transfer_number TEXT NOT NULL UNIQUE,
  origin_location TEXT NOT NULL,
  destination_location TEXT NOT NULL,
  state TEXT NOT NULL DEFAULT 'draft',
  expected_date DATETIME,
  completed_date DATETIME,
  notes TEXT,
  store_id TEXT,
  creator_id TEXT NOT NULL,
  acting_user_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsTable := `
CREATE TABLE IF NOT EXISTS transfer_items (
  id TEXT PRIMARY KEY,
  transfer_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  requested_qty INTEGER NOT NULL,
  shipped_qty INTEGER NOT NULL DEFAULT 0,
  received_qty INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (transfer_id, product_id)
);`
	sequencesTable := `
CREATE TABLE IF NOT EXISTS transfer_sequences (
  id INTEGER PRIMARY KEY,
  last_value INTEGER NOT NULL DEFAULT 0
);`

	require.NoError(t, db.Exec(transfersTable).Error)
	require.NoError(t, db.Exec(itemsTable).Error)
	require.NoError(t, db.Exec(sequencesTable).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM transfer_items")
		db.Exec("DELETE FROM transfers")
		db.Exec("DELETE FROM transfer_sequences")
	})

	return db
}

func seedTransfer(t *testing.T, repo Repository, origin, destination string, state enums.TransferState) *models.Transfer {
	t.Helper()
	ctx := context.Background()

	number, err := repo.NextTransferNumber(ctx)
	require.NoError(t, err)

	saved, err := repo.Save(ctx, &models.Transfer{
		TransferNumber:      number,
		OriginLocation:      origin,
		DestinationLocation: destination,
		State:               state,
		CreatorID:           uuid.New(),
		Items: []models.TransferItem{
			{ProductID: "SKU-1", RequestedQty: 10},
			{ProductID: "SKU-2", RequestedQty: 4},
		},
	})
	require.NoError(t, err)
	return saved
}

func TestRepoSaveAndFind(t *testing.T) {
	db := setupTransfersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	saved := seedTransfer(t, repo, "Almacén Central", "Tienda Norte", enums.TransferStateDraft)
	require.NotEqual(t, uuid.Nil, saved.ID)
	require.Len(t, saved.Items, 2)

	byID, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.TransferNumber, byID.TransferNumber)
	assert.Len(t, byID.Items, 2)

	byNumber, err := repo.FindByTransferNumber(ctx, saved.TransferNumber)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byNumber.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoNextTransferNumberIsSequential(t *testing.T) {
	db := setupTransfersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.NextTransferNumber(ctx)
	require.NoError(t, err)
	second, err := repo.NextTransferNumber(ctx)
	require.NoError(t, err)

	require.Regexp(t, `^TRF-\d{6}$`, first)
	require.Regexp(t, `^TRF-\d{6}$`, second)
	assert.NotEqual(t, first, second)
}

func TestRepoUpdateSyncsItems(t *testing.T) {
	db := setupTransfersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	saved := seedTransfer(t, repo, "Almacén Central", "Tienda Norte", enums.TransferStateSent)

	aggregate := FromModel(saved)
	removedID := aggregate.Items[1].ID
	aggregate.Items = aggregate.Items[:1]
	aggregate.Items[0].ShippedQty = 6
	newItem, err := NewItem("SKU-3", 8)
	require.NoError(t, err)
	aggregate.Items = append(aggregate.Items, newItem)
	aggregate.State = enums.TransferStatePartiallyReceived

	updated, err := repo.Update(ctx, ToModel(aggregate))
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, enums.TransferStatePartiallyReceived, updated.State)

	products := map[string]int{}
	for _, item := range updated.Items {
		products[item.ProductID] = item.ShippedQty
		assert.NotEqual(t, removedID, item.ID)
	}
	assert.Equal(t, 6, products["SKU-1"])
	assert.Contains(t, products, "SKU-3")
}

func TestRepoListFiltersAndPaginates(t *testing.T) {
	db := setupTransfersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedTransfer(t, repo, "Almacén Central", "Tienda Norte", enums.TransferStateDraft)
	seedTransfer(t, repo, "Almacén Central", "Tienda Sur", enums.TransferStateSent)
	seedTransfer(t, repo, "Bodega Este", "Tienda Norte", enums.TransferStateSent)

	sent := enums.TransferStateSent
	rows, err := repo.List(ctx, Filters{State: &sent}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, Filters{Origin: "almacén"}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, Filters{Destination: "Norte"}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	total, err := repo.Count(ctx, Filters{Origin: "almacén"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	page, err := repo.List(ctx, Filters{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	rest, err := repo.List(ctx, Filters{}, pagination.Params{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestRepoListCreatedRange(t *testing.T) {
	db := setupTransfersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedTransfer(t, repo, "Almacén Central", "Tienda Norte", enums.TransferStateDraft)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	rows, err := repo.List(ctx, Filters{CreatedFrom: &past, CreatedTo: &future}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = repo.List(ctx, Filters{CreatedFrom: &future}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
