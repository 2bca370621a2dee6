package models

import (
	"time"

	"github.com/google/uuid"
)

// Door is a numbered group of line items within a bid. DoorNumber is unique
// per bid; deleting a door cascades its line items.
type Door struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BidID      uuid.UUID  `gorm:"column:bid_id;type:uuid;not null;uniqueIndex:idx_doors_bid_number"`
	DoorNumber int        `gorm:"column:door_number;not null;uniqueIndex:idx_doors_bid_number"`
	Location   *string    `gorm:"column:location"`
	LineItems  []LineItem `gorm:"foreignKey:DoorID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
