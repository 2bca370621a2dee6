package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bidboard/bidboard-backend/pkg/enums"
)

// Bid is a costed door-replacement proposal for a customer.
//
// The *Total columns are a display cache only. The editing source of truth is
// always the line items; totals are recomputed after every write and repaired
// by the totals cron job when they drift.
type Bid struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID       `gorm:"column:customer_id;type:uuid;not null"`
	Status        enums.BidStatus `gorm:"column:status;type:bid_status;not null;default:'draft'"`
	PartsTotal    decimal.Decimal `gorm:"column:parts_total;type:numeric(12,2);not null;default:0"`
	LaborTotal    decimal.Decimal `gorm:"column:labor_total;type:numeric(12,2);not null;default:0"`
	HardwareTotal decimal.Decimal `gorm:"column:hardware_total;type:numeric(12,2);not null;default:0"`
	TaxTotal      decimal.Decimal `gorm:"column:tax_total;type:numeric(12,2);not null;default:0"`
	GrandTotal    decimal.Decimal `gorm:"column:grand_total;type:numeric(12,2);not null;default:0"`
	Doors         []Door          `gorm:"foreignKey:BidID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
