package bids

import (
	"time"

	"github.com/google/uuid"

	"github.com/bidboard/bidboard-backend/internal/costing"
	"github.com/bidboard/bidboard-backend/pkg/db/models"
	"github.com/bidboard/bidboard-backend/pkg/enums"
)

// LineItemDTO is the wire shape of one costed row. Numeric fields are
// plain JSON numbers and description is always a string, never null.
type LineItemDTO struct {
	ID          uuid.UUID `json:"id"`
	DoorID      uuid.UUID `json:"door_id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	LaborHours  float64   `json:"labor_hours"`
	Hardware    float64   `json:"hardware"`
	Position    int       `json:"position"`
	Total       float64   `json:"total"`
}

// DoorDTO is the wire shape of a door with its rows.
type DoorDTO struct {
	ID         uuid.UUID     `json:"id"`
	BidID      uuid.UUID     `json:"bid_id"`
	DoorNumber int           `json:"door_number"`
	Location   string        `json:"location"`
	LineItems  []LineItemDTO `json:"line_items"`
}

// BidDTO is the authoritative snapshot returned to editors: nested
// doors and rows plus the cached display totals.
type BidDTO struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Status        enums.BidStatus `json:"status"`
	Doors         []DoorDTO       `json:"doors"`
	PartsTotal    float64         `json:"parts_total"`
	LaborTotal    float64         `json:"labor_total"`
	HardwareTotal float64         `json:"hardware_total"`
	TaxTotal      float64         `json:"tax_total"`
	Total         float64         `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BidSummaryDTO is the list-view shape without nested doors.
type BidSummaryDTO struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Status     enums.BidStatus `json:"status"`
	Total      float64         `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BidListResult is one cursor page of bids.
type BidListResult struct {
	Bids       []BidSummaryDTO `json:"bids"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// DuplicateResultDTO reports the doors created by a fan-out duplication.
type DuplicateResultDTO struct {
	CreatedCount int         `json:"created_count"`
	CreatedIDs   []uuid.UUID `json:"created_ids"`
}

// LineItemInput carries the tracked fields for create and update.
type LineItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	LaborHours  float64 `json:"labor_hours"`
	Hardware    float64 `json:"hardware"`
}

// CreateBidInput creates a new draft bid for a customer.
type CreateBidInput struct {
	CustomerID uuid.UUID `json:"customer_id" validate:"required"`
}

// CreateDoorInput optionally seeds the new door; a zero DoorNumber
// means "next available".
type CreateDoorInput struct {
	DoorNumber int    `json:"door_number"`
	Location   string `json:"location"`
}

// RowChangeInput is one row of a bulk save.
type RowChangeInput struct {
	ItemID uuid.UUID     `json:"item_id" validate:"required"`
	Fields LineItemInput `json:"fields"`
}

// DoorChangesInput groups one door's changed rows.
type DoorChangesInput struct {
	DoorID    uuid.UUID        `json:"door_id" validate:"required"`
	LineItems []RowChangeInput `json:"line_items"`
}

// SaveChangesInput is the explicit bulk-save payload.
type SaveChangesInput struct {
	Doors []DoorChangesInput `json:"doors" validate:"required,min=1,dive"`
}

// AutoSaveInput is the best-effort background payload.
type AutoSaveInput struct {
	LastModified time.Time          `json:"last_modified"`
	Doors        []DoorChangesInput `json:"doors"`
}

// ListBidsInput pages through bids newest-first.
type ListBidsInput struct {
	Cursor string
	Limit  int
}

func lineItemDTO(item models.LineItem) LineItemDTO {
	total, _ := costing.LineItemTotal(item).Float64()
	return LineItemDTO{
		ID:          item.ID,
		DoorID:      item.DoorID,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price,
		LaborHours:  item.LaborHours,
		Hardware:    item.Hardware,
		Position:    item.Position,
		Total:       total,
	}
}

func doorDTO(door models.Door) DoorDTO {
	items := make([]LineItemDTO, 0, len(door.LineItems))
	for _, item := range door.LineItems {
		items = append(items, lineItemDTO(item))
	}
	location := ""
	if door.Location != nil {
		location = *door.Location
	}
	return DoorDTO{
		ID:         door.ID,
		BidID:      door.BidID,
		DoorNumber: door.DoorNumber,
		Location:   location,
		LineItems:  items,
	}
}

func bidDTO(bid models.Bid) *BidDTO {
	doors := make([]DoorDTO, 0, len(bid.Doors))
	for _, door := range bid.Doors {
		doors = append(doors, doorDTO(door))
	}
	return &BidDTO{
		ID:            bid.ID,
		CustomerID:    bid.CustomerID,
		Status:        bid.Status,
		Doors:         doors,
		PartsTotal:    bid.PartsTotal.InexactFloat64(),
		LaborTotal:    bid.LaborTotal.InexactFloat64(),
		HardwareTotal: bid.HardwareTotal.InexactFloat64(),
		TaxTotal:      bid.TaxTotal.InexactFloat64(),
		Total:         bid.GrandTotal.InexactFloat64(),
		CreatedAt:     bid.CreatedAt,
		UpdatedAt:     bid.UpdatedAt,
	}
}

func bidSummaryDTO(bid models.Bid) BidSummaryDTO {
	return BidSummaryDTO{
		ID:         bid.ID,
		CustomerID: bid.CustomerID,
		Status:     bid.Status,
		Total:      bid.GrandTotal.InexactFloat64(),
		CreatedAt:  bid.CreatedAt,
		UpdatedAt:  bid.UpdatedAt,
	}
}
