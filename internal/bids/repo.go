package bids

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bidboard/bidboard-backend/pkg/db/models"
	"github.com/bidboard/bidboard-backend/pkg/pagination"
)

// Repository is the GORM-backed persistence layer for bids, doors, and
// line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a bid repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) BidRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindBid loads a bid with its doors and line items in display order.
func (r *Repository) FindBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Preload("Doors", func(db *gorm.DB) *gorm.DB {
			return db.Order("door_number ASC")
		}).
		Preload("Doors.LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&bid).Error
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// ListBids returns a page of bids newest-first using cursor pagination.
func (r *Repository) ListBids(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Bid, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.Bid
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListBidIDsUpdatedSince returns ids of bids touched after the cutoff,
// oldest first, capped at limit. The totals reconcile job pages with it.
func (r *Repository) ListBidIDsUpdatedSince(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("updated_at >= ?", since).
		Order("updated_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateBid inserts a new bid.
func (r *Repository) CreateBid(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

// UpdateBidTotals persists the cached totals columns only.
func (r *Repository) UpdateBidTotals(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("id = ?", bid.ID).
		Updates(map[string]any{
			"parts_total":    bid.PartsTotal,
			"labor_total":    bid.LaborTotal,
			"hardware_total": bid.HardwareTotal,
			"tax_total":      bid.TaxTotal,
			"grand_total":    bid.GrandTotal,
		}).Error
}

// TouchBid bumps the bid's updated_at so the totals job picks it up.
func (r *Repository) TouchBid(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// FindDoor loads a door with its line items in display order.
func (r *Repository) FindDoor(ctx context.Context, id uuid.UUID) (*models.Door, error) {
	var door models.Door
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&door).Error
	if err != nil {
		return nil, err
	}
	return &door, nil
}

// CreateDoor inserts a new door, cascading any seeded line items.
func (r *Repository) CreateDoor(ctx context.Context, door *models.Door) error {
	return r.db.WithContext(ctx).Create(door).Error
}

// DeleteDoor removes a door; line items go with it by cascade.
func (r *Repository) DeleteDoor(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Door{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MaxDoorNumber returns the highest door number on the bid, zero when
// the bid has no doors.
func (r *Repository) MaxDoorNumber(ctx context.Context, bidID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.Door{}).
		Where("bid_id = ?", bidID).
		Select("MAX(door_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// TakenDoorNumbers returns which of the candidate numbers already exist
// on the bid.
func (r *Repository) TakenDoorNumbers(ctx context.Context, bidID uuid.UUID, numbers []int) ([]int, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	var taken []int
	err := r.db.WithContext(ctx).
		Model(&models.Door{}).
		Where("bid_id = ? AND door_number IN ?", bidID, numbers).
		Pluck("door_number", &taken).Error
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// FindLineItem loads one line item scoped to its door.
func (r *Repository) FindLineItem(ctx context.Context, doorID, itemID uuid.UUID) (*models.LineItem, error) {
	var item models.LineItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND door_id = ?", itemID, doorID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateLineItem inserts a new line item.
func (r *Repository) CreateLineItem(ctx context.Context, item *models.LineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateLineItem saves the full line item record.
func (r *Repository) UpdateLineItem(ctx context.Context, item *models.LineItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteLineItem removes one line item scoped to its door.
func (r *Repository) DeleteLineItem(ctx context.Context, doorID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND door_id = ?", itemID, doorID).
		Delete(&models.LineItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MaxPosition returns the highest line-item position within the door.
func (r *Repository) MaxPosition(ctx context.Context, doorID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.LineItem{}).
		Where("door_id = ?", doorID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// FindCustomer loads one customer.
func (r *Repository) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
