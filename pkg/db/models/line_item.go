package models

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is the atomic edit unit of a bid. Description is never null on
// write; all numeric fields are non-negative and travel as plain floats.
type LineItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DoorID      uuid.UUID `gorm:"column:door_id;type:uuid;not null;index"`
	Description string    `gorm:"column:description;not null;default:''"`
	Quantity    float64   `gorm:"column:quantity;type:numeric(12,3);not null;default:0"`
	Price       float64   `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	LaborHours  float64   `gorm:"column:labor_hours;type:numeric(12,2);not null;default:0"`
	Hardware    float64   `gorm:"column:hardware;type:numeric(12,2);not null;default:0"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
