package editor

import (
	"context"
	"testing"
	"time"

	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
)

func newTestAutoSaver(t *testing.T, coord *Coordinator) *AutoSaver {
	t.Helper()
	as, err := NewAutoSaver(AutoSaverParams{Coordinator: coord, Interval: time.Hour})
	if err != nil {
		t.Fatalf("NewAutoSaver: %v", err)
	}
	return as
}

func TestAutoSaverTickSkipsUnchangedState(t *testing.T) {
	t.Parallel()

	items := sampleItems(2)
	coord, api, session := newTestCoordinator(t, items)
	as := newTestAutoSaver(t, coord)

	session.SetField(items[0].ID, FieldPrice, "12.50")

	as.tick(context.Background())
	if _, _, autoSave, _ := api.counts(); autoSave != 1 {
		t.Fatalf("auto-save calls = %d, want 1", autoSave)
	}

	// Same state again: the snapshot compare suppresses the call.
	as.tick(context.Background())
	if _, _, autoSave, _ := api.counts(); autoSave != 1 {
		t.Fatalf("redundant auto-save fired (%d calls)", autoSave)
	}

	session.SetField(items[0].ID, FieldPrice, "15")
	as.tick(context.Background())
	if _, _, autoSave, _ := api.counts(); autoSave != 2 {
		t.Fatalf("auto-save calls = %d, want 2 after a new edit", autoSave)
	}
}

func TestAutoSaverRetriesAfterSilentFailure(t *testing.T) {
	t.Parallel()

	items := sampleItems(1)
	coord, api, session := newTestCoordinator(t, items)
	as := newTestAutoSaver(t, coord)

	session.SetField(items[0].ID, FieldQuantity, "9")
	api.autoSaveErr = pkgerrors.New(pkgerrors.CodeDependency, "backend unavailable")

	as.tick(context.Background())
	if _, _, autoSave, _ := api.counts(); autoSave != 1 {
		t.Fatalf("auto-save calls = %d, want 1", autoSave)
	}

	// Failure must not record the snapshot: the next tick retries.
	api.mu.Lock()
	api.autoSaveErr = nil
	api.mu.Unlock()
	as.tick(context.Background())
	if _, _, autoSave, _ := api.counts(); autoSave != 2 {
		t.Fatalf("failed auto-save was not retried (%d calls)", autoSave)
	}
}

func TestAutoSaverStartStop(t *testing.T) {
	t.Parallel()

	coord, _, _ := newTestCoordinator(t, sampleItems(1))
	as, err := NewAutoSaver(AutoSaverParams{Coordinator: coord, Interval: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewAutoSaver: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	as.Start(ctx)
	as.Reset() // explicit-save hook path
	as.Stop()
	as.Stop() // repeat call is a no-op
}

func TestAutoSaverStopWithoutStartReturns(t *testing.T) {
	t.Parallel()

	coord, _, _ := newTestCoordinator(t, sampleItems(1))
	as := newTestAutoSaver(t, coord)

	released := make(chan struct{})
	go func() {
		as.Stop()
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return when the scheduler was never started")
	}
}

func TestExplicitSaveResetsAutoSaveTimer(t *testing.T) {
	t.Parallel()

	items := sampleItems(1)
	coord, _, _ := newTestCoordinator(t, items)
	as := newTestAutoSaver(t, coord)

	fired := false
	coord.notifySaved()
	select {
	case <-as.resetC:
		fired = true
	default:
	}
	if !fired {
		t.Fatal("explicit save did not signal a timer reset")
	}
}
