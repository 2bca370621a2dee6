package bids

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bidboard/bidboard-backend/pkg/db/models"
	"github.com/bidboard/bidboard-backend/pkg/pagination"
)

// BidRepository defines the persistence surface required by the bid service.
type BidRepository interface {
	WithTx(tx *gorm.DB) BidRepository

	FindBid(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListBids(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Bid, error)
	CreateBid(ctx context.Context, bid *models.Bid) error
	UpdateBidTotals(ctx context.Context, bid *models.Bid) error
	TouchBid(ctx context.Context, id uuid.UUID) error

	FindDoor(ctx context.Context, id uuid.UUID) (*models.Door, error)
	CreateDoor(ctx context.Context, door *models.Door) error
	DeleteDoor(ctx context.Context, id uuid.UUID) error
	MaxDoorNumber(ctx context.Context, bidID uuid.UUID) (int, error)
	TakenDoorNumbers(ctx context.Context, bidID uuid.UUID, numbers []int) ([]int, error)

	FindLineItem(ctx context.Context, doorID, itemID uuid.UUID) (*models.LineItem, error)
	CreateLineItem(ctx context.Context, item *models.LineItem) error
	UpdateLineItem(ctx context.Context, item *models.LineItem) error
	DeleteLineItem(ctx context.Context, doorID, itemID uuid.UUID) error
	MaxPosition(ctx context.Context, doorID uuid.UUID) (int, error)

	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// txRunner abstracts the transactional boundary provided by pkg/db.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
