package controller

import (
	"errors"
	"fmt"

	"github.com/OCAP2/fingerprint-editor/internal/registry"
	"github.com/OCAP2/fingerprint-editor/internal/scene"
	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/internal/view"
	"github.com/OCAP2/fingerprint-editor/internal/workflow"
)

// Level is the severity of an operator message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Message is shown to the operator.
type Message struct {
	Level Level
	Text  string
	Err   error
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.Level, m.Text)
}

// Notifier receives operator messages.
type Notifier interface {
	Notify(Message)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Message)

// Notify calls f(m).
func (f NotifierFunc) Notify(m Message) { f(m) }

// describe maps an error to the text and severity the operator sees.
func describe(err error) (Level, string) {
	switch {
	case errors.Is(err, workflow.ErrBlankName):
		return LevelWarning, "Please enter a name for the capture location"
	case errors.Is(err, workflow.ErrNoPosition):
		return LevelWarning, "Please click on the floor plan to choose a position first"
	case errors.Is(err, workflow.ErrNotCapturing):
		return LevelWarning, "No capture in progress"
	case errors.Is(err, workflow.ErrAlreadyCapturing):
		return LevelWarning, "A capture is already in progress"
	case errors.Is(err, workflow.ErrFloorLocked):
		return LevelWarning, "Finish or cancel the current capture before switching floors"
	case errors.Is(err, scene.ErrDuplicateName):
		return LevelWarning, "A capture location with this name already exists on this floor"
	case errors.Is(err, scene.ErrNotFound):
		return LevelWarning, "No such capture location on this floor"
	case errors.Is(err, registry.ErrRange):
		return LevelWarning, "No such floor"
	case errors.Is(err, view.ErrZoomRange):
		return LevelWarning, "Zoom must be between 1 and 100"
	case errors.Is(err, storage.ErrStorage):
		return LevelError, fmt.Sprintf("Storage error: %v", err)
	default:
		return LevelError, fmt.Sprintf("Unexpected error: %v", err)
	}
}

func (c *Controller) fail(op string, err error) error {
	level, text := describe(err)
	if level == LevelError {
		c.deps.Logger.Error("Operation failed", "op", op, "error", err)
	} else {
		c.deps.Logger.Debug("Operation refused", "op", op, "error", err)
	}
	c.deps.Notifier.Notify(Message{Level: level, Text: text, Err: err})
	return err
}

func (c *Controller) info(text string) {
	c.deps.Notifier.Notify(Message{Level: LevelInfo, Text: text})
}
