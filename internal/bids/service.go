package bids

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bidboard/bidboard-backend/internal/costing"
	"github.com/bidboard/bidboard-backend/pkg/db"
	"github.com/bidboard/bidboard-backend/pkg/db/models"
	"github.com/bidboard/bidboard-backend/pkg/enums"
	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
	"github.com/bidboard/bidboard-backend/pkg/logger"
	"github.com/bidboard/bidboard-backend/pkg/pagination"
)

// Service exposes the bid, door, and line-item operations behind the
// editing API. Every mutation refreshes the bid's cached display
// totals before returning, so a subsequent GetBid always reflects the
// write.
type Service interface {
	CreateBid(ctx context.Context, input CreateBidInput) (*BidDTO, error)
	GetBid(ctx context.Context, bidID uuid.UUID) (*BidDTO, error)
	ListBids(ctx context.Context, input ListBidsInput) (*BidListResult, error)
	CreateDoor(ctx context.Context, bidID uuid.UUID, input CreateDoorInput) (*DoorDTO, error)
	DuplicateDoor(ctx context.Context, doorID uuid.UUID, targetNumbers []int) (*DuplicateResultDTO, error)
	DeleteDoor(ctx context.Context, doorID uuid.UUID) error
	CreateLineItem(ctx context.Context, doorID uuid.UUID, input LineItemInput) (*LineItemDTO, error)
	UpdateLineItem(ctx context.Context, doorID, itemID uuid.UUID, input LineItemInput) (*LineItemDTO, error)
	DeleteLineItem(ctx context.Context, doorID, itemID uuid.UUID) error
	SaveChanges(ctx context.Context, bidID uuid.UUID, input SaveChangesInput) error
	AutoSave(ctx context.Context, bidID uuid.UUID, input AutoSaveInput) error
}

// ServiceParams configure the bid service.
type ServiceParams struct {
	Repo   BidRepository
	Tx     txRunner
	Rates  costing.Rates
	Logger *logger.Logger
}

type service struct {
	repo  BidRepository
	tx    txRunner
	rates costing.Rates
	logg  *logger.Logger
}

// NewService builds the bid service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bid repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "bids"})
	}
	return &service{
		repo:  params.Repo,
		tx:    params.Tx,
		rates: params.Rates,
		logg:  logg,
	}, nil
}

// CreateBid opens a new draft bid for the customer.
func (s *service) CreateBid(ctx context.Context, input CreateBidInput) (*BidDTO, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if _, err := s.repo.FindCustomer(ctx, input.CustomerID); err != nil {
		return nil, mapNotFound(err, "customer not found")
	}

	bid := &models.Bid{
		ID:         uuid.New(),
		CustomerID: input.CustomerID,
		Status:     enums.BidStatusDraft,
	}
	if err := s.repo.CreateBid(ctx, bid); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create bid")
	}
	return bidDTO(*bid), nil
}

// GetBid returns the authoritative snapshot with nested doors and rows.
func (s *service) GetBid(ctx context.Context, bidID uuid.UUID) (*BidDTO, error) {
	bid, err := s.repo.FindBid(ctx, bidID)
	if err != nil {
		return nil, mapNotFound(err, "bid not found")
	}
	return bidDTO(*bid), nil
}

// ListBids pages through bids newest-first.
func (s *service) ListBids(ctx context.Context, input ListBidsInput) (*BidListResult, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Limit)

	// Fetch one extra record to detect whether another page exists.
	records, err := s.repo.ListBids(ctx, cursor, pagination.LimitWithBuffer(input.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bids")
	}

	result := &BidListResult{Bids: make([]BidSummaryDTO, 0, len(records))}
	if len(records) > limit {
		last := records[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		records = records[:limit]
	}
	for _, record := range records {
		result.Bids = append(result.Bids, bidSummaryDTO(record))
	}
	return result, nil
}

// CreateDoor adds a door to the bid. A zero door number means next
// available; an explicit number must be free on the bid.
func (s *service) CreateDoor(ctx context.Context, bidID uuid.UUID, input CreateDoorInput) (*DoorDTO, error) {
	if bidID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid id is required")
	}
	if input.DoorNumber < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "door number must be a positive integer")
	}
	if _, err := s.repo.FindBid(ctx, bidID); err != nil {
		return nil, mapNotFound(err, "bid not found")
	}

	var door *models.Door
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number := input.DoorNumber
		if number == 0 {
			max, err := repo.MaxDoorNumber(ctx, bidID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next door number")
			}
			number = max + 1
		} else {
			taken, err := repo.TakenDoorNumbers(ctx, bidID, []int{number})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check door number")
			}
			if len(taken) > 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("door number %d is already in use", number))
			}
		}

		door = &models.Door{
			ID:         uuid.New(),
			BidID:      bidID,
			DoorNumber: number,
		}
		if trimmed := strings.TrimSpace(input.Location); trimmed != "" {
			door.Location = &trimmed
		}
		if err := repo.CreateDoor(ctx, door); err != nil {
			return mapDoorCreateError(err, number)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := doorDTO(*door)
	return &dto, nil
}

// DuplicateDoor clones the source door into each target number inside
// one transaction: either every target door is created with copies of
// the source's line items, or none are.
func (s *service) DuplicateDoor(ctx context.Context, doorID uuid.UUID, targetNumbers []int) (*DuplicateResultDTO, error) {
	if doorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "door id is required")
	}
	if len(targetNumbers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one target door number is required")
	}
	seen := make(map[int]struct{}, len(targetNumbers))
	for _, n := range targetNumbers {
		if n <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("target door number %d must be a positive integer", n))
		}
		if _, dup := seen[n]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("target door number %d is repeated", n))
		}
		seen[n] = struct{}{}
	}

	source, err := s.repo.FindDoor(ctx, doorID)
	if err != nil {
		return nil, mapNotFound(err, "door not found")
	}

	result := &DuplicateResultDTO{CreatedIDs: make([]uuid.UUID, 0, len(targetNumbers))}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		taken, err := repo.TakenDoorNumbers(ctx, source.BidID, targetNumbers)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check target door numbers")
		}
		if len(taken) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("door numbers already in use: %v", taken))
		}

		for _, number := range targetNumbers {
			door := &models.Door{
				ID:         uuid.New(),
				BidID:      source.BidID,
				DoorNumber: number,
				Location:   source.Location,
			}
			items := make([]models.LineItem, 0, len(source.LineItems))
			for _, item := range source.LineItems {
				items = append(items, models.LineItem{
					ID:          uuid.New(),
					DoorID:      door.ID,
					Description: item.Description,
					Quantity:    item.Quantity,
					Price:       item.Price,
					LaborHours:  item.LaborHours,
					Hardware:    item.Hardware,
					Position:    item.Position,
				})
			}
			door.LineItems = items
			if err := repo.CreateDoor(ctx, door); err != nil {
				return mapDoorCreateError(err, number)
			}
			result.CreatedIDs = append(result.CreatedIDs, door.ID)
		}
		result.CreatedCount = len(result.CreatedIDs)

		return s.recomputeTotals(ctx, repo, source.BidID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteDoor removes a door and its line items by cascade.
func (s *service) DeleteDoor(ctx context.Context, doorID uuid.UUID) error {
	door, err := s.repo.FindDoor(ctx, doorID)
	if err != nil {
		return mapNotFound(err, "door not found")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteDoor(ctx, doorID); err != nil {
			return mapNotFound(err, "door not found")
		}
		return s.recomputeTotals(ctx, repo, door.BidID)
	})
}

// CreateLineItem appends a row to the door. A blank description is
// allowed here; explicit saves enforce it later.
func (s *service) CreateLineItem(ctx context.Context, doorID uuid.UUID, input LineItemInput) (*LineItemDTO, error) {
	door, err := s.repo.FindDoor(ctx, doorID)
	if err != nil {
		return nil, mapNotFound(err, "door not found")
	}
	if err := validateNonNegative(input); err != nil {
		return nil, err
	}

	var item *models.LineItem
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		max, err := repo.MaxPosition(ctx, doorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next position")
		}

		item = sanitizedItem(input)
		item.ID = uuid.New()
		item.DoorID = doorID
		item.Position = max + 1
		if err := repo.CreateLineItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create line item")
		}
		return s.recomputeTotals(ctx, repo, door.BidID)
	})
	if err != nil {
		return nil, err
	}

	dto := lineItemDTO(*item)
	return &dto, nil
}

// UpdateLineItem overwrites a row's tracked fields. This is the
// explicit per-row save path, so an empty description is rejected.
func (s *service) UpdateLineItem(ctx context.Context, doorID, itemID uuid.UUID, input LineItemInput) (*LineItemDTO, error) {
	if err := validateExplicit(input); err != nil {
		return nil, err
	}

	item, err := s.repo.FindLineItem(ctx, doorID, itemID)
	if err != nil {
		return nil, mapNotFound(err, "line item not found")
	}
	door, err := s.repo.FindDoor(ctx, doorID)
	if err != nil {
		return nil, mapNotFound(err, "door not found")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applyInput(item, input)
		if err := repo.UpdateLineItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update line item")
		}
		return s.recomputeTotals(ctx, repo, door.BidID)
	})
	if err != nil {
		return nil, err
	}

	dto := lineItemDTO(*item)
	return &dto, nil
}

// DeleteLineItem removes one row.
func (s *service) DeleteLineItem(ctx context.Context, doorID, itemID uuid.UUID) error {
	door, err := s.repo.FindDoor(ctx, doorID)
	if err != nil {
		return mapNotFound(err, "door not found")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteLineItem(ctx, doorID, itemID); err != nil {
			return mapNotFound(err, "line item not found")
		}
		return s.recomputeTotals(ctx, repo, door.BidID)
	})
}

// SaveChanges applies a bulk save in one transaction. Every referenced
// door must belong to the bid and every row to its door; any miss
// rolls the whole batch back.
func (s *service) SaveChanges(ctx context.Context, bidID uuid.UUID, input SaveChangesInput) error {
	if bidID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "bid id is required")
	}
	if len(input.Doors) == 0 {
		return nil
	}
	for _, doorChanges := range input.Doors {
		for _, row := range doorChanges.LineItems {
			if err := validateExplicit(row.Fields); err != nil {
				return err
			}
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for _, doorChanges := range input.Doors {
			door, err := repo.FindDoor(ctx, doorChanges.DoorID)
			if err != nil {
				return mapNotFound(err, "door not found")
			}
			if door.BidID != bidID {
				return pkgerrors.New(pkgerrors.CodeValidation, "door does not belong to this bid")
			}

			for _, row := range doorChanges.LineItems {
				item, err := repo.FindLineItem(ctx, doorChanges.DoorID, row.ItemID)
				if err != nil {
					return mapNotFound(err, "line item not found")
				}
				applyInput(item, row.Fields)
				if err := repo.UpdateLineItem(ctx, item); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update line item")
				}
			}
		}

		return s.recomputeTotals(ctx, repo, bidID)
	})
}

// AutoSave applies the best-effort background payload. Rows that have
// vanished are skipped rather than failing the batch, and no explicit
// validation runs: it persists work in progress.
func (s *service) AutoSave(ctx context.Context, bidID uuid.UUID, input AutoSaveInput) error {
	if bidID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "bid id is required")
	}
	if len(input.Doors) == 0 {
		return nil
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		touched := false
		for _, doorChanges := range input.Doors {
			door, err := repo.FindDoor(ctx, doorChanges.DoorID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					s.logg.Warn(s.logg.WithDoorID(ctx, doorChanges.DoorID.String()), "auto-save skipping missing door")
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load door")
			}
			if door.BidID != bidID {
				continue
			}

			for _, row := range doorChanges.LineItems {
				item, err := repo.FindLineItem(ctx, doorChanges.DoorID, row.ItemID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load line item")
				}
				applyInput(item, row.Fields)
				if err := repo.UpdateLineItem(ctx, item); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update line item")
				}
				touched = true
			}
		}

		if !touched {
			return nil
		}
		if err := s.recomputeTotals(ctx, repo, bidID); err != nil {
			return err
		}
		return repo.TouchBid(ctx, bidID)
	})
}

// recomputeTotals refreshes the bid's cached display totals from its
// line items.
func (s *service) recomputeTotals(ctx context.Context, repo BidRepository, bidID uuid.UUID) error {
	bid, err := repo.FindBid(ctx, bidID)
	if err != nil {
		return mapNotFound(err, "bid not found")
	}

	totals := costing.ComputeBidTotals(*bid, s.rates)
	bid.PartsTotal = costing.DisplayAmount(totals.Parts)
	bid.LaborTotal = costing.DisplayAmount(totals.LaborCost)
	bid.HardwareTotal = costing.DisplayAmount(totals.Hardware)
	bid.TaxTotal = costing.DisplayAmount(totals.Tax)
	bid.GrandTotal = costing.DisplayAmount(totals.Total)

	if err := repo.UpdateBidTotals(ctx, bid); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update bid totals")
	}
	return nil
}

func applyInput(item *models.LineItem, input LineItemInput) {
	sanitized := sanitizedItem(input)
	item.Description = sanitized.Description
	item.Quantity = sanitized.Quantity
	item.Price = sanitized.Price
	item.LaborHours = sanitized.LaborHours
	item.Hardware = sanitized.Hardware
}

// sanitizedItem coerces the payload for storage: description is never
// null and non-finite numbers collapse to zero.
func sanitizedItem(input LineItemInput) *models.LineItem {
	return &models.LineItem{
		Description: input.Description,
		Quantity:    finiteOrZero(input.Quantity),
		Price:       finiteOrZero(input.Price),
		LaborHours:  finiteOrZero(input.LaborHours),
		Hardware:    finiteOrZero(input.Hardware),
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// validateExplicit guards the user-triggered save paths.
func validateExplicit(input LineItemInput) error {
	if strings.TrimSpace(input.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	return validateNonNegative(input)
}

func validateNonNegative(input LineItemInput) error {
	if input.Quantity < 0 || input.Price < 0 || input.LaborHours < 0 || input.Hardware < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "numeric fields must not be negative")
	}
	return nil
}

// mapNotFound converts a missing record into the coded error the API
// surfaces with refresh-and-retry guidance.
func mapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg+"; refresh and retry")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}

// doorNumberConstraint is the unique index over (bid_id, door_number).
const doorNumberConstraint = "idx_doors_bid_number"

// mapDoorCreateError turns the unique-index violation from a lost insert
// race into the same conflict error the TakenDoorNumbers pre-check
// produces. The pre-check and the insert are not atomic across
// transactions, so the index is the real arbiter.
func mapDoorCreateError(err error, number int) error {
	if db.IsUniqueViolation(err, doorNumberConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("door number %d is already in use", number))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create door")
}
