package controller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/OCAP2/fingerprint-editor/internal/events"
	"github.com/OCAP2/fingerprint-editor/internal/registry"
	"github.com/OCAP2/fingerprint-editor/internal/scene"
	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/internal/storage/memory"
	"github.com/OCAP2/fingerprint-editor/internal/view"
	"github.com/OCAP2/fingerprint-editor/internal/workflow"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type shown struct {
	floor int
	name  string
}

type recordingDetail struct {
	shown []shown
}

func (d *recordingDetail) ShowLocation(floor int, name string) {
	d.shown = append(d.shown, shown{floor, name})
}

type failingStore struct{ err error }

func (s *failingStore) InsertLocation(context.Context, core.Location) error { return s.err }

type fakeBackup struct{ paths []string }

func (b *fakeBackup) Backup(path string) error {
	b.paths = append(b.paths, path)
	return nil
}

type fixture struct {
	ctrl     *Controller
	bus      *events.Bus
	reg      *registry.Registry
	viewport *view.Viewport
	wf       *workflow.Workflow
	store    *memory.Backend
	detail   *recordingDetail
	messages []Message
	floors   []int
}

type option func(*workflow.Dependencies, *Dependencies)

func withStore(s workflow.Inserter) option {
	return func(w *workflow.Dependencies, _ *Dependencies) { w.Store = s }
}

func withBackup(b storage.Backupable) option {
	return func(_ *workflow.Dependencies, d *Dependencies) { d.Backup = b }
}

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()
	bus, err := events.New(nopLogger{})
	require.NoError(t, err)
	t.Cleanup(bus.Close)

	f := &fixture{bus: bus, detail: &recordingDetail{}}
	f.store = memory.New(
		core.Location{Name: "AP1", Floor: 1, Position: core.Position2D{X: 10, Y: 20}},
		core.Location{Name: "AP2", Floor: 1, Position: core.Position2D{X: 100, Y: 100}},
		core.Location{Name: "STAIRS", Floor: 2, Position: core.Position2D{X: 50, Y: 50}},
	)

	f.reg = registry.New(registry.Dependencies{
		Palette:   scene.DefaultPalette(),
		HitRadius: scene.DefaultHitRadius,
		Publisher: bus,
	})
	require.NoError(t, f.reg.Load(context.Background(), 3, f.store.QueryLocations))

	f.viewport, err = view.New(100)
	require.NoError(t, err)

	wdeps := workflow.Dependencies{Store: f.store, Publisher: bus}
	cdeps := Dependencies{
		Registry: f.reg,
		Viewport: f.viewport,
		Bus:      bus,
		Detail:   f.detail,
		Notifier: NotifierFunc(func(m Message) { f.messages = append(f.messages, m) }),
	}
	for _, o := range opts {
		o(&wdeps, &cdeps)
	}
	f.wf = workflow.New(wdeps)
	cdeps.Workflow = f.wf

	bus.Subscribe(events.FloorChanged, func(e events.Event) error {
		f.floors = append(f.floors, e.Floor)
		return nil
	})

	f.ctrl, err = New(cdeps)
	require.NoError(t, err)
	return f
}

func (f *fixture) last() Message {
	if len(f.messages) == 0 {
		return Message{}
	}
	return f.messages[len(f.messages)-1]
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Dependencies{})
	assert.Error(t, err)
}

func TestNewActivatesFirstFloor(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 1, f.ctrl.Active().Floor())
	assert.Same(t, f.ctrl.Active(), f.viewport.Scene())
	assert.Same(t, f.ctrl.Active(), f.wf.Scene())
	assert.Equal(t, 2, f.ctrl.Active().Len())
	assert.Equal(t, []int{1}, f.floors, "startup announces the first floor")
}

func TestMarkerClickRoutesToDetailOnce(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.Press(12, 21))

	assert.Equal(t, []shown{{1, "AP1"}}, f.detail.shown)
	_, pending := f.ctrl.Active().Pending()
	assert.False(t, pending)
}

func TestMarkerClickWhileCapturingKeepsPending(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.EnterCapture())
	require.NoError(t, f.ctrl.Press(40, 40))

	require.NoError(t, f.ctrl.Press(10, 20))

	assert.Equal(t, []shown{{1, "AP1"}}, f.detail.shown)
	m, ok := f.ctrl.Active().Pending()
	require.True(t, ok)
	assert.Equal(t, core.Position2D{X: 40, Y: 40}, m.Position)
	pos, _ := f.wf.Staged()
	assert.Equal(t, core.Position2D{X: 40, Y: 40}, pos)
}

func TestIdleClickLeavesNoPendingMarker(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Press(300, 300))

	_, pending := f.ctrl.Active().Pending()
	assert.False(t, pending)
	assert.Empty(t, f.detail.shown)
}

func TestCaptureThroughZoomedView(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.SetZoom(50))
	require.NoError(t, f.ctrl.EnterCapture())

	// factor 2: viewport (61.2, 80.8) is scene (30.6, 40.4)
	require.NoError(t, f.ctrl.Click(61.2, 80.8))
	require.NoError(t, f.ctrl.Commit(context.Background(), " lobby "))

	m, ok := f.ctrl.Active().Marker("LOBBY")
	require.True(t, ok)
	assert.Equal(t, core.Position2D{X: 31, Y: 40}, m.Position)
	assert.Equal(t, workflow.ModeIdle, f.wf.Mode())
	assert.Equal(t, LevelInfo, f.last().Level)

	stored, err := f.store.QueryLocations(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestSwitchFloorLockedWhileCapturing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.EnterCapture())

	err := f.ctrl.SwitchFloor(2)
	assert.ErrorIs(t, err, workflow.ErrFloorLocked)
	assert.Equal(t, 1, f.ctrl.Active().Floor())
	assert.Equal(t, LevelWarning, f.last().Level)
}

func TestSwitchFloor(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.SetZoom(25))

	require.NoError(t, f.ctrl.SwitchFloor(2))

	assert.Equal(t, 2, f.ctrl.Active().Floor())
	assert.Same(t, f.ctrl.Active(), f.viewport.Scene())
	assert.Equal(t, 4.0, f.viewport.Factor())
	assert.Equal(t, []int{1, 2}, f.floors)

	require.NoError(t, f.ctrl.Press(50, 50))
	assert.Equal(t, []shown{{2, "STAIRS"}}, f.detail.shown)

	// same floor again is a no-op
	require.NoError(t, f.ctrl.SwitchFloor(2))
	assert.Equal(t, []int{1, 2}, f.floors)
}

func TestSwitchFloorOutOfRange(t *testing.T) {
	f := newFixture(t)
	for _, n := range []int{0, 4, -1} {
		err := f.ctrl.SwitchFloor(n)
		assert.ErrorIs(t, err, registry.ErrRange)
	}
	assert.Equal(t, 1, f.ctrl.Active().Floor())
}

func TestSetZoomOutOfRange(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ctrl.SetZoom(0), view.ErrZoomRange)
	assert.ErrorIs(t, f.ctrl.SetZoom(101), view.ErrZoomRange)
	assert.Equal(t, 100, f.viewport.Zoom())
}

func TestCancelClearsPendingEverywhere(t *testing.T) {
	f := newFixture(t)
	other, err := f.reg.Activate(3)
	require.NoError(t, err)
	require.NoError(t, other.PlacePending(core.Position2D{X: 1, Y: 1}))

	require.NoError(t, f.ctrl.EnterCapture())
	require.NoError(t, f.ctrl.Press(200, 200))
	require.NoError(t, f.ctrl.Cancel())

	for _, s := range f.reg.Scenes() {
		_, pending := s.Pending()
		assert.False(t, pending, "floor %d", s.Floor())
	}
	assert.Equal(t, workflow.ModeIdle, f.wf.Mode())
}

func TestCommitBlankNameIsRecovered(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.EnterCapture())
	require.NoError(t, f.ctrl.Press(200, 200))

	err := f.ctrl.Commit(context.Background(), "")
	assert.ErrorIs(t, err, workflow.ErrBlankName)
	assert.Equal(t, LevelWarning, f.last().Level)
	assert.Equal(t, workflow.ModeCapturing, f.wf.Mode())
	assert.Equal(t, 2, f.ctrl.Active().Len())
}

func TestCommitStorageErrorIsRecovered(t *testing.T) {
	f := newFixture(t, withStore(&failingStore{err: errors.New("connection reset")}))
	require.NoError(t, f.ctrl.EnterCapture())
	require.NoError(t, f.ctrl.Press(200, 200))

	err := f.ctrl.Commit(context.Background(), "hall")
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.Equal(t, LevelError, f.last().Level)
	assert.Contains(t, f.last().Text, "connection reset")
	assert.Equal(t, workflow.ModeCapturing, f.wf.Mode())
	_, pending := f.ctrl.Active().Pending()
	assert.True(t, pending)
}

func TestHighlight(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.Highlight("AP2"))
	assert.Equal(t, "AP2", f.ctrl.Status().Highlighted)

	assert.ErrorIs(t, f.ctrl.Highlight("NOPE"), scene.ErrNotFound)
	assert.Equal(t, "AP2", f.ctrl.Status().Highlighted)

	require.NoError(t, f.ctrl.Unhighlight())
	assert.Empty(t, f.ctrl.Status().Highlighted)
}

func TestBackup(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.ctrl.Backup("x.db"))
	assert.Equal(t, LevelError, f.last().Level)

	b := &fakeBackup{}
	f = newFixture(t, withBackup(b))
	path := filepath.Join(t.TempDir(), "x.db")
	require.NoError(t, f.ctrl.Backup(path))
	assert.Equal(t, []string{path}, b.paths)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.SetZoom(50))
	require.NoError(t, f.ctrl.EnterCapture())
	require.NoError(t, f.ctrl.Press(200.4, 199.6))

	st := f.ctrl.Status()
	assert.Equal(t, 1, st.Floor)
	assert.Equal(t, 3, st.Floors)
	assert.Equal(t, workflow.ModeCapturing, st.Mode)
	assert.NotEmpty(t, st.Session)
	require.NotNil(t, st.Staged)
	assert.Equal(t, core.Position2D{X: 200, Y: 200}, *st.Staged)
	require.NotNil(t, st.Pending)
	assert.Equal(t, core.Position2D{X: 200, Y: 200}, *st.Pending)
	assert.Equal(t, 50, st.Zoom)
	assert.Equal(t, 2.0, st.Factor)
	assert.Equal(t, 2, st.Markers)
}

func TestDescribe(t *testing.T) {
	level, _ := describe(workflow.ErrNoPosition)
	assert.Equal(t, LevelWarning, level)
	level, text := describe(errors.New("boom"))
	assert.Equal(t, LevelError, level)
	assert.Contains(t, text, "boom")
	assert.Equal(t, "[warning] hi", Message{Level: LevelWarning, Text: "hi"}.String())
}
