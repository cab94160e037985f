package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OCAP2/fingerprint-editor/internal/controller"
	"github.com/OCAP2/fingerprint-editor/internal/geo"
)

var errQuit = errors.New("quit")

const helpText = `Commands:
  floor N          switch to floor N
  zoom V           set zoom, 1..100 (100 is full size)
  new              start a new capture on the current floor
  click X Y        press at view coordinates
  press X Y        press at floor image coordinates
  commit NAME      save the pending capture as NAME
  cancel           abandon the pending capture
  highlight NAME   emphasize a capture location
  unhighlight      remove the emphasis
  list             list capture locations on the current floor
  status           show editor state
  backup PATH      write a copy of the database to PATH
  help             show this text
  quit             exit
`

// console is the line-oriented operator interface.
type console struct {
	ctrl *controller.Controller
	out  io.Writer
}

func newConsole(ctrl *controller.Controller, out io.Writer) *console {
	return &console{ctrl: ctrl, out: out}
}

// Run reads commands from in until EOF, quit or ctx is done.
func (c *console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	c.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if err := c.Execute(ctx, scanner.Text()); errors.Is(err, errQuit) {
			return nil
		}
		c.prompt()
	}
	return scanner.Err()
}

func (c *console) prompt() {
	fmt.Fprintf(c.out, "[floor %d] > ", c.ctrl.Active().Floor())
}

// Execute runs one command line. Operation failures are already reported by
// the controller's notifier; the returned error is for callers that care.
func (c *console) Execute(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "floor":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return c.usage("floor N")
		}
		return c.ctrl.SwitchFloor(n)
	case "zoom":
		v, err := strconv.Atoi(rest)
		if err != nil {
			return c.usage("zoom V")
		}
		return c.ctrl.SetZoom(v)
	case "new":
		return c.ctrl.EnterCapture()
	case "click", "press":
		// accept "x y" as well as "x,y"
		x, y, err := geo.ParseXY(strings.Join(strings.Fields(strings.ReplaceAll(rest, ",", " ")), ","))
		if err != nil {
			return c.usage(cmd + " X Y")
		}
		if cmd == "click" {
			return c.ctrl.Click(x, y)
		}
		return c.ctrl.Press(x, y)
	case "commit":
		return c.ctrl.Commit(ctx, rest)
	case "cancel":
		return c.ctrl.Cancel()
	case "highlight":
		return c.ctrl.Highlight(strings.ToUpper(rest))
	case "unhighlight":
		return c.ctrl.Unhighlight()
	case "list":
		c.list()
		return nil
	case "status":
		c.status()
		return nil
	case "backup":
		if rest == "" {
			return c.usage("backup PATH")
		}
		return c.ctrl.Backup(rest)
	case "help":
		fmt.Fprint(c.out, helpText)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		fmt.Fprintf(c.out, "Unknown command %q, type help for a list\n", cmd)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *console) usage(form string) error {
	fmt.Fprintf(c.out, "Usage: %s\n", form)
	return fmt.Errorf("usage: %s", form)
}

func (c *console) list() {
	st := c.ctrl.Status()
	markers := c.ctrl.Markers()
	fmt.Fprintf(c.out, "Floor %d: %d capture locations\n", st.Floor, len(markers))
	for _, m := range markers {
		mark := " "
		if m.Name == st.Highlighted {
			mark = "*"
		}
		fmt.Fprintf(c.out, " %s %s %s\n", mark, m.Name, m.Position)
	}
}

func (c *console) status() {
	st := c.ctrl.Status()
	fmt.Fprintf(c.out, "floor:       %d of %d\n", st.Floor, st.Floors)
	fmt.Fprintf(c.out, "mode:        %s\n", st.Mode)
	if st.Session != "" {
		fmt.Fprintf(c.out, "session:     %s\n", st.Session)
	}
	fmt.Fprintf(c.out, "zoom:        %d (scale %.2f)\n", st.Zoom, st.Factor)
	fmt.Fprintf(c.out, "locations:   %d\n", st.Markers)
	if st.Pending != nil {
		fmt.Fprintf(c.out, "pending:     %s\n", *st.Pending)
	}
	if st.Highlighted != "" {
		fmt.Fprintf(c.out, "highlighted: %s\n", st.Highlighted)
	}
}

func printMessage(out io.Writer) controller.NotifierFunc {
	return func(m controller.Message) {
		fmt.Fprintln(out, m.String())
	}
}
