package editor

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is the ephemeral per-row editing state: the current values as
// typed, the last-synced server values, and the logical flags guarding
// duplicate network work. Revision increments on every edit so a stale
// save response can be recognized and discarded.
type Entry struct {
	ID       uuid.UUID
	Current  Fields
	Synced   Fields
	Dirty    bool
	Saving   bool
	Revision uint64
}

// Snapshot is a deep copy of all current row values, keyed by item id.
// The auto-save scheduler compares snapshots structurally to suppress
// redundant background saves.
type Snapshot map[uuid.UUID]Fields

// Equal reports whether two snapshots hold the same rows with the same
// tracked values.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for id, fields := range s {
		theirs, ok := other[id]
		if !ok || Changed(fields, theirs) {
			return false
		}
	}
	return true
}

// SaveState classifies the outcome of claiming a row for save.
type SaveState int

const (
	// SaveStateReady means the row was claimed and a network call should follow.
	SaveStateReady SaveState = iota
	// SaveStateMissing means no entry exists for the id.
	SaveStateMissing
	// SaveStateAlreadySaving means another save holds the row.
	SaveStateAlreadySaving
	// SaveStateUnchanged means the row has no real edit to persist.
	SaveStateUnchanged
)

// RowClaim is a row captured for an in-flight save: the values to send
// and the revision they were read at.
type RowClaim struct {
	ID       uuid.UUID
	Fields   Fields
	Revision uint64
}

// Session holds the edit state for one door's line items. All methods
// are safe for concurrent use; the saving and dirty flags exist to
// prevent duplicate network requests, and the mutex additionally keeps
// the state coherent across goroutines.
type Session struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*Entry
	order   []uuid.UUID
}

// NewSession seeds one clean entry per line item.
func NewSession(items []LineItem) *Session {
	s := &Session{}
	s.Initialize(items)
	return s
}

// Initialize replaces all state with clean entries for the given items.
func (s *Session) Initialize(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[uuid.UUID]*Entry, len(items))
	s.order = make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		fields := item.Fields()
		s.entries[item.ID] = &Entry{
			ID:      item.ID,
			Current: fields,
			Synced:  fields,
		}
		s.order = append(s.order, item.ID)
	}
}

// Reinitialize resets the session from a fresh server snapshot. Rows
// with an in-flight save or unsaved edits keep their optimistic current
// values so a refresh never visually reverts the user's typing; their
// synced baseline still moves to the server's values. Rows absent from
// the snapshot are dropped unless a save is still in flight for them.
func (s *Session) Reinitialize(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make(map[uuid.UUID]*Entry, len(items))
	order := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		synced := item.Fields()
		entry := &Entry{
			ID:      item.ID,
			Current: synced,
			Synced:  synced,
		}
		if prev, ok := s.entries[item.ID]; ok && (prev.Saving || prev.Dirty) {
			entry.Current = prev.Current
			entry.Saving = prev.Saving
			entry.Revision = prev.Revision
			entry.Dirty = Changed(entry.Synced, entry.Current)
		}
		fresh[item.ID] = entry
		order = append(order, item.ID)
	}

	// A row deleted server-side while its save is still in flight stays
	// visible until that save resolves.
	for _, id := range s.order {
		prev := s.entries[id]
		if _, ok := fresh[id]; !ok && prev != nil && prev.Saving {
			fresh[id] = prev
			order = append(order, id)
		}
	}

	s.entries = fresh
	s.order = order
}

// SetField applies raw form input to one tracked field. Numeric input
// is coerced, unparseable text collapsing to zero. It returns whether
// the row is now dirty relative to the last-synced values.
func (s *Session) SetField(itemID uuid.UUID, field Field, raw string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[itemID]
	if !ok {
		return false, false
	}

	switch field {
	case FieldDescription:
		entry.Current.Description = raw
	case FieldQuantity:
		entry.Current.Quantity = CoerceNumber(raw)
	case FieldPrice:
		entry.Current.Price = CoerceNumber(raw)
	case FieldLaborHours:
		entry.Current.LaborHours = CoerceNumber(raw)
	case FieldHardware:
		entry.Current.Hardware = CoerceNumber(raw)
	default:
		return entry.Dirty, true
	}

	entry.Revision++
	entry.Dirty = Changed(entry.Synced, entry.Current)
	return entry.Dirty, true
}

// Entry returns a copy of one row's state.
func (s *Session) Entry(itemID uuid.UUID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[itemID]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Entries returns copies of all rows in display order.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		if entry, ok := s.entries[id]; ok {
			out = append(out, *entry)
		}
	}
	return out
}

// DirtyIDs lists rows with unsaved edits, in display order.
func (s *Session) DirtyIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uuid.UUID
	for _, id := range s.order {
		if entry, ok := s.entries[id]; ok && entry.Dirty {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasDirty reports whether any row has unsaved edits.
func (s *Session) HasDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.Dirty {
			return true
		}
	}
	return false
}

// BeginSave atomically claims one row for an individual save. Only a
// dirty, not-already-saving row is claimed; every other case is a
// typed no-op so callers skip the network without treating it as
// failure.
func (s *Session) BeginSave(itemID uuid.UUID) (RowClaim, SaveState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[itemID]
	if !ok {
		return RowClaim{}, SaveStateMissing
	}
	if entry.Saving {
		return RowClaim{}, SaveStateAlreadySaving
	}
	if !entry.Dirty || !Changed(entry.Synced, entry.Current) {
		return RowClaim{}, SaveStateUnchanged
	}

	entry.Saving = true
	return RowClaim{ID: entry.ID, Fields: entry.Current, Revision: entry.Revision}, SaveStateReady
}

// BeginBulkSave atomically claims every dirty row that is not already
// mid-save. Rows with an individual save in flight are excluded; their
// own save will land them.
func (s *Session) BeginBulkSave() []RowClaim {
	s.mu.Lock()
	defer s.mu.Unlock()

	var claims []RowClaim
	for _, id := range s.order {
		entry, ok := s.entries[id]
		if !ok || entry.Saving || !entry.Dirty {
			continue
		}
		if !Changed(entry.Synced, entry.Current) {
			continue
		}
		entry.Saving = true
		claims = append(claims, RowClaim{ID: entry.ID, Fields: entry.Current, Revision: entry.Revision})
	}
	return claims
}

// FinishSave resolves a claim. On success the row is marked clean only
// if its revision is still the claimed one; edits made while the save
// was in flight keep the row dirty so they are not silently dropped.
// On failure the row stays dirty and becomes retry-eligible
// immediately. The saving flag clears either way.
func (s *Session) FinishSave(claim RowClaim, saved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[claim.ID]
	if !ok {
		return
	}
	entry.Saving = false
	if !saved {
		return
	}
	if entry.Revision != claim.Revision {
		// Superseded by a newer edit; the acked values are already stale.
		entry.Synced = claim.Fields
		entry.Dirty = Changed(entry.Synced, entry.Current)
		return
	}
	entry.Synced = claim.Fields
	entry.Current = claim.Fields
	entry.Dirty = false
}

// Discard resets every row without an in-flight save back to its
// last-synced values.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.Saving {
			continue
		}
		entry.Current = entry.Synced
		entry.Dirty = false
		entry.Revision++
	}
}

// Remove drops a row from the session, after a confirmed delete.
func (s *Session) Remove(itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[itemID]; !ok {
		return
	}
	delete(s.entries, itemID)
	for i, id := range s.order {
		if id == itemID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Snapshot deep-copies all current row values.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(Snapshot, len(s.entries))
	for id, entry := range s.entries {
		snap[id] = entry.Current
	}
	return snap
}

// Len returns the number of rows in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
