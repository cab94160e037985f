// Package controller ties the floor registry, the viewport and the capture
// workflow together and turns every failure into an operator message.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OCAP2/fingerprint-editor/internal/events"
	"github.com/OCAP2/fingerprint-editor/internal/registry"
	"github.com/OCAP2/fingerprint-editor/internal/scene"
	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/internal/view"
	"github.com/OCAP2/fingerprint-editor/internal/workflow"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
)

// DetailView shows the stored details of a clicked capture location.
type DetailView interface {
	ShowLocation(floor int, name string)
}

// Dependencies holds all dependencies for the controller.
type Dependencies struct {
	Registry *registry.Registry
	Viewport *view.Viewport
	Workflow *workflow.Workflow
	Bus      *events.Bus
	Detail   DetailView
	Notifier Notifier
	Backup   storage.Backupable // optional
	Logger   *slog.Logger
}

// Controller is the dialog-level orchestrator. Like the workflow it drives,
// it expects to be called from one goroutine.
type Controller struct {
	deps   Dependencies
	active *scene.FloorScene
}

// New wires the bus subscriptions and activates floor 1.
func New(deps Dependencies) (*Controller, error) {
	if deps.Registry == nil || deps.Viewport == nil || deps.Workflow == nil || deps.Bus == nil {
		return nil, errors.New("controller: registry, viewport, workflow and bus are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = NotifierFunc(func(Message) {})
	}

	c := &Controller{deps: deps}

	deps.Workflow.Subscribe(deps.Bus)
	deps.Bus.Subscribe(events.MarkerSelected, c.onMarkerSelected)
	deps.Bus.Subscribe(events.CaptureCanceled, c.onCaptureCanceled)

	if err := c.activate(1); err != nil {
		return nil, err
	}
	return c, nil
}

// Active returns the scene bound to the view.
func (c *Controller) Active() *scene.FloorScene { return c.active }

// SwitchFloor makes floor n active. Refused while capturing.
func (c *Controller) SwitchFloor(n int) error {
	if !c.deps.Workflow.CanSwitchFloor() {
		return c.fail("switch floor", workflow.ErrFloorLocked)
	}
	if c.active != nil && c.active.Floor() == n {
		return nil
	}
	if err := c.activate(n); err != nil {
		return c.fail("switch floor", err)
	}
	c.info(fmt.Sprintf("Floor %d selected", n))
	return nil
}

func (c *Controller) activate(n int) error {
	s, err := c.deps.Registry.Activate(n)
	if err != nil {
		return err
	}
	if err := c.deps.Workflow.SetScene(s); err != nil {
		return err
	}
	if c.active != nil {
		c.active.ClearPending()
	}
	c.active = s
	c.deps.Viewport.Bind(s)
	if err := c.deps.Bus.Publish(events.Event{Name: events.FloorChanged, Floor: n}); err != nil {
		c.deps.Logger.Warn("Floor changed handlers failed", "error", err)
	}
	return nil
}

// SetZoom applies a zoom value in (0,100].
func (c *Controller) SetZoom(value int) error {
	if err := c.deps.Viewport.SetZoom(value); err != nil {
		return c.fail("zoom", err)
	}
	return nil
}

// EnterCapture starts a new capture on the active floor.
func (c *Controller) EnterCapture() error {
	if err := c.deps.Workflow.EnterCapture(); err != nil {
		return c.fail("new capture", err)
	}
	c.info(fmt.Sprintf("Click on floor %d to place the capture point", c.active.Floor()))
	return nil
}

// Cancel abandons the current capture.
func (c *Controller) Cancel() error {
	if err := c.deps.Workflow.Cancel(); err != nil {
		return c.fail("cancel", err)
	}
	c.info("Capture canceled")
	return nil
}

// Commit stores the pending capture under name.
func (c *Controller) Commit(ctx context.Context, name string) error {
	if err := c.deps.Workflow.Commit(ctx, name); err != nil {
		return c.fail("commit", err)
	}
	c.info("Capture location saved")
	return nil
}

// Click handles a pointer press in viewport coordinates.
func (c *Controller) Click(vx, vy float64) error {
	x, y := c.deps.Viewport.ToScene(vx, vy)
	return c.Press(x, y)
}

// Press handles a pointer press in scene coordinates.
func (c *Controller) Press(x, y float64) error {
	if err := c.deps.Workflow.Pointer(x, y); err != nil {
		return c.fail("press", err)
	}
	return nil
}

// Highlight emphasizes a marker on the active floor.
func (c *Controller) Highlight(name string) error {
	if err := c.active.Highlight(name); err != nil {
		return c.fail("highlight", err)
	}
	return nil
}

// Unhighlight removes the highlight on the active floor.
func (c *Controller) Unhighlight() error {
	if err := c.active.Unhighlight(); err != nil {
		return c.fail("unhighlight", err)
	}
	return nil
}

// Backup snapshots the store to path.
func (c *Controller) Backup(path string) error {
	if c.deps.Backup == nil {
		return c.fail("backup", errors.New("the configured storage does not support backups"))
	}
	if err := c.deps.Backup.Backup(path); err != nil {
		return c.fail("backup", err)
	}
	c.info("Backup written to " + path)
	return nil
}

// Markers lists the permanent markers of the active floor.
func (c *Controller) Markers() []scene.Marker {
	return c.active.Markers()
}

func (c *Controller) onMarkerSelected(e events.Event) error {
	if c.active == nil || e.Floor != c.active.Floor() {
		return nil
	}
	c.deps.Logger.Debug("Capture location selected", "floor", e.Floor, "name", e.MarkerName)
	if c.deps.Detail != nil {
		c.deps.Detail.ShowLocation(e.Floor, e.MarkerName)
	}
	return nil
}

func (c *Controller) onCaptureCanceled(events.Event) error {
	for _, s := range c.deps.Registry.Scenes() {
		s.ClearPending()
	}
	return nil
}

// Status is a snapshot of the editor state.
type Status struct {
	Floor       int
	Floors      int
	Mode        workflow.Mode
	Session     string
	Staged      *core.Position2D
	Name        string
	Zoom        int
	Factor      float64
	Pending     *core.Position2D
	Highlighted string
	Markers     int
}

// Status returns the current state.
func (c *Controller) Status() Status {
	wf := c.deps.Workflow
	st := Status{
		Floor:   c.active.Floor(),
		Floors:  c.deps.Registry.Count(),
		Mode:    wf.Mode(),
		Session: wf.SessionID(),
		Name:    wf.Name(),
		Zoom:    c.deps.Viewport.Zoom(),
		Factor:  c.deps.Viewport.Factor(),
		Markers: c.active.Len(),
	}
	if pos, ok := wf.Staged(); ok {
		st.Staged = &pos
	}
	if m, ok := c.active.Pending(); ok {
		st.Pending = &m.Position
	}
	st.Highlighted, _ = c.active.Highlighted()
	return st
}
