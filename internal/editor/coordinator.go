package editor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
	"github.com/bidboard/bidboard-backend/pkg/logger"
)

// AutoSaveResult is what background save callers get instead of an
// error: auto-save never interrupts the editing flow, it only reports.
type AutoSaveResult struct {
	Saved bool
	Err   error
}

// CoordinatorParams configures a Coordinator.
type CoordinatorParams struct {
	BidID   uuid.UUID
	DoorID  uuid.UUID
	API     BidAPI
	Session *Session
	Log     *logger.Logger
	// OnRefresh receives the authoritative bid snapshot after each
	// successful write, injected by the owning container.
	OnRefresh func(*Bid)
}

// Coordinator owns the save paths for one door's edit session. It
// enforces at most one in-flight save per row and at most one bulk
// save at a time, and only issues network calls for real changes.
type Coordinator struct {
	bidID     uuid.UUID
	doorID    uuid.UUID
	api       BidAPI
	session   *Session
	log       *logger.Logger
	onRefresh func(*Bid)

	mu        sync.Mutex
	savingAll bool
	saveHook  func()
}

// NewCoordinator validates the required ancestor ids up front. A door
// editor constructed without its bid or door id is a wiring bug and
// must fail before any network call is possible.
func NewCoordinator(params CoordinatorParams) (*Coordinator, error) {
	if params.BidID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid id is required")
	}
	if params.DoorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "door id is required")
	}
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid api is required")
	}
	if params.Session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}

	log := params.Log
	if log == nil {
		log = logger.New(logger.Options{ServiceName: "editor"})
	}

	return &Coordinator{
		bidID:     params.BidID,
		doorID:    params.DoorID,
		api:       params.API,
		session:   params.Session,
		log:       log,
		onRefresh: params.OnRefresh,
	}, nil
}

// Session returns the edit session the coordinator drives.
func (c *Coordinator) Session() *Session {
	return c.session
}

// SetSaveHook registers a callback fired after every successful
// explicit save; the auto-save scheduler uses it to reset its timer.
func (c *Coordinator) SetSaveHook(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saveHook = hook
}

// SaveRow persists one row's edits. Rows that are missing, already
// saving, or unchanged are typed no-ops with zero network calls. On
// failure the row stays dirty and is immediately retry-eligible.
func (c *Coordinator) SaveRow(ctx context.Context, itemID uuid.UUID) (SaveState, error) {
	claim, state := c.session.BeginSave(itemID)
	if state != SaveStateReady {
		return state, nil
	}

	if err := validateExplicitSave(claim.Fields); err != nil {
		c.session.FinishSave(claim, false)
		return state, err
	}

	if _, err := c.api.UpdateLineItem(ctx, c.doorID, itemID, claim.Fields.Sanitized()); err != nil {
		c.session.FinishSave(claim, false)
		return state, err
	}

	c.session.FinishSave(claim, true)
	c.notifySaved()
	c.refresh(ctx)
	return state, nil
}

// SaveAll persists every dirty row in one bulk call. An empty change
// set is a successful no-op with zero network calls. A second bulk
// save while one is in flight is rejected, and rows with an individual
// save in flight are left out of the change set.
func (c *Coordinator) SaveAll(ctx context.Context) (int, error) {
	c.mu.Lock()
	if c.savingAll {
		c.mu.Unlock()
		return 0, pkgerrors.New(pkgerrors.CodeConflict, "a bulk save is already in progress")
	}
	c.savingAll = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.savingAll = false
		c.mu.Unlock()
	}()

	claims := c.session.BeginBulkSave()
	if len(claims) == 0 {
		return 0, nil
	}

	for _, claim := range claims {
		if err := validateExplicitSave(claim.Fields); err != nil {
			c.releaseClaims(claims)
			return 0, err
		}
	}

	changes := make([]RowChange, 0, len(claims))
	for _, claim := range claims {
		changes = append(changes, RowChange{ItemID: claim.ID, Fields: claim.Fields.Sanitized()})
	}
	req := SaveChangesRequest{Doors: []DoorChanges{{DoorID: c.doorID, LineItems: changes}}}

	if err := c.api.SaveChanges(ctx, c.bidID, req); err != nil {
		c.releaseClaims(claims)
		return 0, err
	}

	for _, claim := range claims {
		c.session.FinishSave(claim, true)
	}
	c.notifySaved()
	c.refresh(ctx)
	return len(claims), nil
}

// AddRow creates a new line item immediately. The session picks the
// row up from the post-create refresh.
func (c *Coordinator) AddRow(ctx context.Context, fields Fields) (*LineItem, error) {
	item, err := c.api.CreateLineItem(ctx, c.doorID, fields.Sanitized())
	if err != nil {
		return nil, err
	}
	c.notifySaved()
	c.refresh(ctx)
	return item, nil
}

// DeleteRow removes a line item. The confirmed flag must come from an
// explicit user confirmation step; deletion never dispatches without it.
func (c *Coordinator) DeleteRow(ctx context.Context, itemID uuid.UUID, confirmed bool) error {
	if !confirmed {
		return pkgerrors.New(pkgerrors.CodeValidation, "row deletion requires confirmation")
	}
	if err := c.api.DeleteLineItem(ctx, c.doorID, itemID); err != nil {
		return err
	}
	c.session.Remove(itemID)
	c.notifySaved()
	c.refresh(ctx)
	return nil
}

// Discard throws away unsaved edits, reverting rows to their
// last-synced values. Rows mid-save are left for their save to resolve.
func (c *Coordinator) Discard() {
	c.session.Discard()
}

// AutoSave sends the current dirty rows on the best-effort path. It
// never claims rows or marks them clean; an explicit save remains the
// only way a row's synced baseline moves. Errors come back in the
// result for the scheduler to log, never as a propagated failure.
func (c *Coordinator) AutoSave(ctx context.Context) AutoSaveResult {
	var changes []RowChange
	for _, entry := range c.session.Entries() {
		if !entry.Dirty || entry.Saving {
			continue
		}
		changes = append(changes, RowChange{ItemID: entry.ID, Fields: entry.Current.Sanitized()})
	}
	if len(changes) == 0 {
		return AutoSaveResult{}
	}

	req := AutoSaveRequest{
		LastModified: time.Now().UTC(),
		Doors:        []DoorChanges{{DoorID: c.doorID, LineItems: changes}},
	}
	if err := c.api.AutoSave(ctx, c.bidID, req); err != nil {
		return AutoSaveResult{Err: err}
	}
	return AutoSaveResult{Saved: true}
}

// Duplicate fans the coordinator's door out to the given door numbers.
func (c *Coordinator) Duplicate(ctx context.Context, targetNumbers []int) (*DuplicateResult, error) {
	result, err := Duplicate(ctx, c.api, c.doorID, targetNumbers)
	if err != nil {
		return nil, err
	}
	c.refresh(ctx)
	return result, nil
}

// IsSavingAll reports whether a bulk save is in flight. The save-all
// control stays disabled while this holds or no row is dirty.
func (c *Coordinator) IsSavingAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.savingAll
}

// refresh re-fetches the authoritative bid snapshot and reconciles the
// session against it. Every write path funnels through here so the
// post-save state always reflects the server. A failed refresh leaves
// the optimistic state in place; the write itself already succeeded.
func (c *Coordinator) refresh(ctx context.Context) {
	bid, err := c.api.GetBid(ctx, c.bidID)
	if err != nil {
		c.log.Warn(c.log.WithBidID(ctx, c.bidID.String()), "post-save refresh failed: "+err.Error())
		return
	}

	door, ok := bid.Door(c.doorID)
	if !ok {
		c.log.Warn(c.log.WithDoorID(ctx, c.doorID.String()), "door missing from refreshed bid")
		return
	}

	c.session.Reinitialize(door.LineItems)
	if c.onRefresh != nil {
		c.onRefresh(bid)
	}
}

func (c *Coordinator) notifySaved() {
	c.mu.Lock()
	hook := c.saveHook
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (c *Coordinator) releaseClaims(claims []RowClaim) {
	for _, claim := range claims {
		c.session.FinishSave(claim, false)
	}
}

// validateExplicitSave blocks obviously invalid rows before any
// network call on user-triggered save paths. The background auto-save
// path skips this; it persists work in progress.
func validateExplicitSave(f Fields) error {
	if strings.TrimSpace(f.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if f.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if f.Price < 0 || f.LaborHours < 0 || f.Hardware < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price, labor hours, and hardware must not be negative")
	}
	return nil
}
