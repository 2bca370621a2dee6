package editor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LineItem is the server's view of one costed row.
type LineItem struct {
	ID          uuid.UUID `json:"id"`
	DoorID      uuid.UUID `json:"door_id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	LaborHours  float64   `json:"labor_hours"`
	Hardware    float64   `json:"hardware"`
	Position    int       `json:"position"`
}

// Fields returns the editable slice of the item.
func (li LineItem) Fields() Fields {
	return Fields{
		Description: li.Description,
		Quantity:    li.Quantity,
		Price:       li.Price,
		LaborHours:  li.LaborHours,
		Hardware:    li.Hardware,
	}
}

// Door is the server's view of one numbered door with its rows.
type Door struct {
	ID         uuid.UUID  `json:"id"`
	BidID      uuid.UUID  `json:"bid_id"`
	DoorNumber int        `json:"door_number"`
	Location   string     `json:"location"`
	LineItems  []LineItem `json:"line_items"`
}

// Bid is the authoritative snapshot fetched after every write. Totals
// are a display cache computed server-side from the line items.
type Bid struct {
	ID       uuid.UUID `json:"id"`
	Status   string    `json:"status"`
	Doors    []Door    `json:"doors"`
	Parts    float64   `json:"parts_total"`
	Labor    float64   `json:"labor_total"`
	Hardware float64   `json:"hardware_total"`
	Tax      float64   `json:"tax_total"`
	Total    float64   `json:"total"`
}

// Door returns the bid's door with the given id, if present.
func (b *Bid) Door(doorID uuid.UUID) (*Door, bool) {
	if b == nil {
		return nil, false
	}
	for i := range b.Doors {
		if b.Doors[i].ID == doorID {
			return &b.Doors[i], true
		}
	}
	return nil, false
}

// DoorSeed optionally pre-populates a newly created door.
type DoorSeed struct {
	DoorNumber int    `json:"door_number"`
	Location   string `json:"location,omitempty"`
}

// DuplicateResult reports the doors created by a fan-out duplication.
type DuplicateResult struct {
	CreatedCount int         `json:"created_count"`
	CreatedIDs   []uuid.UUID `json:"created_ids"`
}

// RowChange is one row's contribution to a bulk save.
type RowChange struct {
	ItemID uuid.UUID `json:"item_id"`
	Fields Fields    `json:"fields"`
}

// DoorChanges groups a door's changed rows for the bulk save payload.
type DoorChanges struct {
	DoorID    uuid.UUID   `json:"door_id"`
	LineItems []RowChange `json:"line_items"`
}

// SaveChangesRequest is the explicit bulk-save payload. It carries
// exactly the changed rows, nothing else.
type SaveChangesRequest struct {
	Doors []DoorChanges `json:"doors"`
}

// AutoSaveRequest is the best-effort background payload: ids and
// fields only, stamped with the client's last modification time.
type AutoSaveRequest struct {
	LastModified time.Time     `json:"last_modified"`
	Doors        []DoorChanges `json:"doors"`
}

// BidAPI is the CRUD contract the engine consumes. The transport
// behind it is interchangeable; Client is the HTTP implementation.
type BidAPI interface {
	GetBid(ctx context.Context, bidID uuid.UUID) (*Bid, error)
	CreateDoor(ctx context.Context, bidID uuid.UUID, seed *DoorSeed) (*Door, error)
	DuplicateDoor(ctx context.Context, doorID uuid.UUID, targetNumbers []int) (*DuplicateResult, error)
	DeleteDoor(ctx context.Context, doorID uuid.UUID) error
	CreateLineItem(ctx context.Context, doorID uuid.UUID, fields Fields) (*LineItem, error)
	UpdateLineItem(ctx context.Context, doorID, itemID uuid.UUID, fields Fields) (*LineItem, error)
	DeleteLineItem(ctx context.Context, doorID, itemID uuid.UUID) error
	SaveChanges(ctx context.Context, bidID uuid.UUID, req SaveChangesRequest) error
	AutoSave(ctx context.Context, bidID uuid.UUID, req AutoSaveRequest) error
}
