package editor

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
	"github.com/bidboard/bidboard-backend/pkg/logger"
)

const defaultAutoSaveInterval = 30 * time.Second

// AutoSaverParams configure the background save scheduler.
type AutoSaverParams struct {
	Coordinator *Coordinator
	Logger      *logger.Logger
	Interval    time.Duration
}

// AutoSaver periodically offers the current edit state to the
// coordinator's best-effort save path. Failures are logged and retried
// on the next tick; they never surface to the user. Explicit saves
// reset the timer so auto-save stays out of the way of user activity.
type AutoSaver struct {
	coord    *Coordinator
	logg     *logger.Logger
	interval time.Duration

	resetC chan struct{}
	stop   chan struct{}
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	lastSaved Snapshot
}

// NewAutoSaver wires a scheduler to a coordinator and registers itself
// as the coordinator's save hook.
func NewAutoSaver(params AutoSaverParams) (*AutoSaver, error) {
	if params.Coordinator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinator is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "editor"})
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultAutoSaveInterval
	}

	as := &AutoSaver{
		coord:    params.Coordinator,
		logg:     logg,
		interval: interval,
		resetC:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	as.coord.SetSaveHook(as.Reset)
	return as, nil
}

// Reset restarts the timer, deferring the next background save.
func (a *AutoSaver) Reset() {
	select {
	case a.resetC <- struct{}{}:
	default:
	}
}

// Start runs the scheduler loop until Stop is called or the context is
// canceled. Repeat calls are no-ops.
func (a *AutoSaver) Start(ctx context.Context) {
	a.startOnce.Do(func() {
		go a.run(ctx)
	})
}

// Stop halts the loop and waits for it to exit. It is safe to call
// more than once and returns immediately when Start never ran.
func (a *AutoSaver) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		// Claim startOnce so a Start that never happened cannot leave
		// done unclosed; if the loop is running it closes done itself.
		a.startOnce.Do(func() { close(a.done) })
		<-a.done
	})
}

func (a *AutoSaver) run(ctx context.Context) {
	defer close(a.done)

	timer := time.NewTimer(a.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		case <-a.resetC:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(a.interval)
		case <-timer.C:
			a.tick(ctx)
			timer.Reset(a.interval)
		}
	}
}

// tick runs one auto-save attempt. Nothing happens when the state is
// structurally identical to the last successful auto-save; a failed
// attempt is logged and naturally retried next tick.
func (a *AutoSaver) tick(ctx context.Context) {
	snapshot := a.coord.Session().Snapshot()
	if a.lastSaved != nil && snapshot.Equal(a.lastSaved) {
		return
	}

	result := a.coord.AutoSave(ctx)
	if result.Err != nil {
		a.logg.Warn(ctx, "auto-save failed; will retry next tick: "+result.Err.Error())
		return
	}
	// Saved or nothing dirty to send; either way this state is covered.
	a.lastSaved = snapshot
}
