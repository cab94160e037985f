// Package workflow implements the capture state machine: entering capture
// mode, staging a pending position, and committing or canceling it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/OCAP2/fingerprint-editor/internal/events"
	"github.com/OCAP2/fingerprint-editor/internal/scene"
	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/pkg/core"

	"github.com/google/uuid"
)

var (
	ErrBlankName        = errors.New("capture name is blank")
	ErrNoPosition       = errors.New("no capture position selected")
	ErrNotCapturing     = errors.New("not in capture mode")
	ErrAlreadyCapturing = errors.New("already in capture mode")
	ErrFloorLocked      = errors.New("floor switching is locked while capturing")
	errNoScene          = errors.New("no active floor")
)

// DefaultTimeout bounds a single storage insert.
const DefaultTimeout = 5 * time.Second

// Mode is the workflow state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeCapturing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeCapturing:
		return "capturing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Inserter persists committed captures.
type Inserter interface {
	InsertLocation(ctx context.Context, loc core.Location) error
}

// Dependencies holds all dependencies for the workflow.
type Dependencies struct {
	Store     Inserter
	Publisher events.Publisher
	Logger    *slog.Logger
	Timeout   time.Duration // zero means DefaultTimeout, negative disables
}

// Workflow is the capture state machine. It is not safe for concurrent use;
// the controller drives it from a single goroutine.
type Workflow struct {
	deps Dependencies

	active    *scene.FloorScene
	mode      Mode
	staged    *core.Position2D
	name      string
	sessionID string
}

// New creates an idle workflow.
func New(deps Dependencies) *Workflow {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Timeout == 0 {
		deps.Timeout = DefaultTimeout
	}
	return &Workflow{deps: deps}
}

// SetScene makes s the active scene. Refused while capturing.
func (w *Workflow) SetScene(s *scene.FloorScene) error {
	if !w.CanSwitchFloor() {
		return ErrFloorLocked
	}
	w.active = s
	return nil
}

// Scene returns the active scene.
func (w *Workflow) Scene() *scene.FloorScene { return w.active }

// Mode returns the current state.
func (w *Workflow) Mode() Mode { return w.mode }

// Staged returns the staged position, if any.
func (w *Workflow) Staged() (core.Position2D, bool) {
	if w.staged == nil {
		return core.Position2D{}, false
	}
	return *w.staged, true
}

// Name returns the last name passed to Commit in this session.
func (w *Workflow) Name() string { return w.name }

// SessionID identifies the current capture session; empty when idle.
func (w *Workflow) SessionID() string { return w.sessionID }

// CanSwitchFloor reports whether the active floor may change.
func (w *Workflow) CanSwitchFloor() bool { return w.mode == ModeIdle }

// CanCommit reports whether a commit would pass the mode and position checks.
func (w *Workflow) CanCommit() bool { return w.mode == ModeCapturing && w.staged != nil }

// EnterCapture starts a capture session with nothing staged.
func (w *Workflow) EnterCapture() error {
	if w.mode == ModeCapturing {
		return ErrAlreadyCapturing
	}
	if w.active == nil {
		return errNoScene
	}
	w.reset()
	w.mode = ModeCapturing
	w.sessionID = uuid.NewString()
	w.deps.Logger.Info("Capture started")
	return nil
}

// Pointer forwards a press in scene coordinates to the active scene, which
// either selects the marker under it or moves the pending marker there. The
// position is staged from the scene's pending_position_changed event. While
// idle no pending marker survives the press.
func (w *Workflow) Pointer(x, y float64) error {
	if w.active == nil {
		return errNoScene
	}
	if err := w.active.Press(x, y); err != nil {
		return err
	}
	if w.mode != ModeCapturing {
		w.active.ClearPending()
	}
	return nil
}

// HandlePendingPosition stages positions announced by the active scene.
func (w *Workflow) HandlePendingPosition(e events.Event) error {
	if w.active == nil || e.Floor != w.active.Floor() {
		return nil
	}
	if w.mode != ModeCapturing {
		w.active.ClearPending()
		return nil
	}
	w.stage(e.Position)
	return nil
}

// Subscribe registers the workflow's handlers on the bus.
func (w *Workflow) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.PendingPositionChanged, w.HandlePendingPosition)
}

// Cancel abandons the capture session.
func (w *Workflow) Cancel() error {
	if w.mode != ModeCapturing {
		return ErrNotCapturing
	}
	w.active.ClearPending()
	w.reset()
	w.mode = ModeIdle

	w.deps.Logger.Info("Capture canceled")
	return w.publish(events.Event{Name: events.CaptureCanceled, Floor: w.active.Floor()})
}

// Commit validates and stores the staged capture under name. On a storage
// failure the session stays open with its staged position so the operator
// can retry.
func (w *Workflow) Commit(ctx context.Context, name string) error {
	if w.mode != ModeCapturing {
		return ErrNotCapturing
	}
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return ErrBlankName
	}
	w.name = name
	if w.staged == nil {
		return ErrNoPosition
	}
	if w.active.HasMarker(name) {
		return fmt.Errorf("%w: %q on floor %d", scene.ErrDuplicateName, name, w.active.Floor())
	}

	loc := core.Location{Name: name, Floor: w.active.Floor(), Position: *w.staged}
	if err := w.insert(ctx, loc); err != nil {
		w.deps.Logger.Error("Failed to store capture location", "name", name, "error", err)
		return err
	}

	if err := w.publish(events.Event{Name: events.CaptureAdded, Floor: loc.Floor, Position: loc.Position, MarkerName: name}); err != nil {
		w.deps.Logger.Warn("Capture added handlers failed", "error", err)
	}
	if err := w.active.AddMarker(name, loc.Position); err != nil {
		return err
	}
	w.active.ClearPending()
	w.reset()
	w.mode = ModeIdle

	w.deps.Logger.Info("Capture committed", "name", name, "position", loc.Position.String())
	return nil
}

func (w *Workflow) insert(ctx context.Context, loc core.Location) error {
	if w.deps.Store == nil {
		return nil
	}
	if w.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.deps.Timeout)
		defer cancel()
	}
	return storage.Wrap("insert location", w.deps.Store.InsertLocation(ctx, loc))
}

func (w *Workflow) stage(pos core.Position2D) {
	w.staged = &pos
}

func (w *Workflow) reset() {
	w.staged = nil
	w.name = ""
	w.sessionID = ""
}

func (w *Workflow) publish(e events.Event) error {
	if w.deps.Publisher == nil {
		return nil
	}
	return w.deps.Publisher.Publish(e)
}
