package bids

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/bidboard/bidboard-backend/pkg/db"
	"github.com/bidboard/bidboard-backend/pkg/db/models"
	"github.com/bidboard/bidboard-backend/pkg/enums"
	"github.com/bidboard/bidboard-backend/pkg/pagination"
)

func setupBidsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  email TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS bids (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  parts_total NUMERIC NOT NULL DEFAULT 0,
  labor_total NUMERIC NOT NULL DEFAULT 0,
  hardware_total NUMERIC NOT NULL DEFAULT 0,
  tax_total NUMERIC NOT NULL DEFAULT 0,
  grand_total NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS doors (
  id TEXT PRIMARY KEY,
  bid_id TEXT NOT NULL,
  door_number INTEGER NOT NULL,
  location TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (bid_id, door_number)
);`,
		`CREATE TABLE IF NOT EXISTS line_items (
  id TEXT PRIMARY KEY,
  door_id TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  quantity NUMERIC NOT NULL DEFAULT 0,
  price NUMERIC NOT NULL DEFAULT 0,
  labor_hours NUMERIC NOT NULL DEFAULT 0,
  hardware NUMERIC NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedBid(t *testing.T, db *gorm.DB) *models.Bid {
	t.Helper()

	customer := &models.Customer{ID: uuid.New(), Name: "Acme Property Group"}
	require.NoError(t, db.Create(customer).Error)

	bid := &models.Bid{ID: uuid.New(), CustomerID: customer.ID, Status: enums.BidStatusDraft}
	require.NoError(t, db.Create(bid).Error)

	door := &models.Door{ID: uuid.New(), BidID: bid.ID, DoorNumber: 1}
	require.NoError(t, db.Create(door).Error)

	items := []models.LineItem{
		{ID: uuid.New(), DoorID: door.ID, Description: "Entry door", Quantity: 2, Price: 10, LaborHours: 1.5, Hardware: 5, Position: 1},
		{ID: uuid.New(), DoorID: door.ID, Description: "Closer", Quantity: 1, Price: 200, LaborHours: 0.5, Position: 2},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}
	return bid
}

func TestRepositoryFindBidNested(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	bid := seedBid(t, db)

	found, err := repo.FindBid(context.Background(), bid.ID)
	require.NoError(t, err)
	require.Len(t, found.Doors, 1)
	require.Len(t, found.Doors[0].LineItems, 2)
	assert.Equal(t, "Entry door", found.Doors[0].LineItems[0].Description)
	assert.Equal(t, 1, found.Doors[0].LineItems[0].Position)
}

func TestRepositoryFindBidMissing(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindBid(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryDoorNumberHelpers(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	bid := seedBid(t, db)

	max, err := repo.MaxDoorNumber(context.Background(), bid.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, max)

	taken, err := repo.TakenDoorNumbers(context.Background(), bid.ID, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, taken)

	max, err = repo.MaxDoorNumber(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, max)
}

func TestRepositoryDeleteDoorMissing(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)

	err := repo.DeleteDoor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryLineItemScopedToDoor(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	bid := seedBid(t, db)

	found, err := repo.FindBid(context.Background(), bid.ID)
	require.NoError(t, err)
	door := found.Doors[0]
	item := door.LineItems[0]

	got, err := repo.FindLineItem(context.Background(), door.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	// The same item through a different door id must not resolve.
	_, err = repo.FindLineItem(context.Background(), uuid.New(), item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.DeleteLineItem(context.Background(), uuid.New(), item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryMaxPosition(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	bid := seedBid(t, db)

	found, err := repo.FindBid(context.Background(), bid.ID)
	require.NoError(t, err)

	max, err := repo.MaxPosition(context.Background(), found.Doors[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	max, err = repo.MaxPosition(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, max)
}

func TestRepositoryUpdateBidTotals(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	bid := seedBid(t, db)

	bid.GrandTotal = decimal.NewFromFloat(345.63)
	bid.PartsTotal = decimal.NewFromFloat(200)
	require.NoError(t, repo.UpdateBidTotals(context.Background(), bid))

	reloaded, err := repo.FindBid(context.Background(), bid.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.GrandTotal.Equal(bid.GrandTotal))
	assert.True(t, reloaded.PartsTotal.Equal(bid.PartsTotal))
}

func TestRepositoryCreateDoorDuplicateNumber(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	bid := seedBid(t, db)

	// seedBid already holds door number 1 on this bid.
	err := repo.CreateDoor(context.Background(), &models.Door{
		ID:         uuid.New(),
		BidID:      bid.ID,
		DoorNumber: 1,
	})
	require.Error(t, err)
	assert.True(t, pkgdb.IsUniqueViolation(err, "idx_doors_bid_number"))

	// A different number on the same bid is fine.
	require.NoError(t, repo.CreateDoor(context.Background(), &models.Door{
		ID:         uuid.New(),
		BidID:      bid.ID,
		DoorNumber: 2,
	}))
}

func TestRepositoryListBidIDsUpdatedSince(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)

	customer := &models.Customer{ID: uuid.New(), Name: "Acme Property Group"}
	require.NoError(t, db.Create(customer).Error)

	now := time.Now().UTC()
	stale := &models.Bid{ID: uuid.New(), CustomerID: customer.ID, Status: enums.BidStatusDraft}
	fresh := &models.Bid{ID: uuid.New(), CustomerID: customer.ID, Status: enums.BidStatusDraft}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Create(fresh).Error)
	require.NoError(t, db.Model(stale).Update("updated_at", now.Add(-48*time.Hour)).Error)
	require.NoError(t, db.Model(fresh).Update("updated_at", now).Error)

	ids, err := repo.ListBidIDsUpdatedSince(context.Background(), now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, fresh.ID, ids[0])
}

func TestRepositoryListBidsCursorPagination(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)

	customer := &models.Customer{ID: uuid.New(), Name: "Acme Property Group"}
	require.NoError(t, db.Create(customer).Error)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		bid := &models.Bid{
			ID:         uuid.New(),
			CustomerID: customer.ID,
			Status:     enums.BidStatusDraft,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(bid).Error)
	}

	first, err := repo.ListBids(context.Background(), nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.ListBids(context.Background(), cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.True(t, rest[0].CreatedAt.Before(first[1].CreatedAt))
}
