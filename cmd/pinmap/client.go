package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/OCAP2/pinmap/internal/api"
	"github.com/OCAP2/pinmap/internal/config"
	"github.com/OCAP2/pinmap/internal/dispatcher"
	"github.com/OCAP2/pinmap/internal/geo"
	"github.com/OCAP2/pinmap/internal/logging"
	"github.com/OCAP2/pinmap/internal/projection"
	"github.com/OCAP2/pinmap/internal/syncer"
	"github.com/OCAP2/pinmap/internal/view"
	"github.com/spf13/viper"
)

// short names accepted at the prompt
var aliases = map[string]string{
	"load":   syncer.CmdLoad,
	"click":  syncer.CmdClick,
	"edit":   syncer.CmdEdit,
	"submit": syncer.CmdSubmit,
	"cancel": syncer.CmdCancel,
	"fit":    syncer.CmdFit,
}

const clientHelp = `commands:
  load                 reload pins from the server
  click <lat> <lng>    create a pin at widget position (lat = y, lng = x)
  edit <id>            start editing a pin name
  submit <id> <name>   rename a pin that is being edited
  cancel <id>          leave edit mode
  fit                  frame the viewport around the pins
  show                 draw the board
  help                 this text
  quit                 exit
`

// board is a client session: the text views, the projection store and the
// controller driving them.
type board struct {
	canvas     *view.Canvas
	list       *view.List
	alerts     *view.Alerts
	store      *projection.Store
	controller *syncer.Controller
	dispatcher *dispatcher.Dispatcher
}

func newBoard(rt *runtime, remote syncer.RemoteStore) (*board, error) {
	b := &board{
		canvas: view.NewCanvas(),
		list:   view.NewList(),
		alerts: view.NewAlerts(),
	}
	b.store = projection.NewStore(b.canvas, b.list)

	img := config.GetImage()
	ctrl, err := syncer.New(syncer.Dependencies{
		Remote:      remote,
		Store:       b.store,
		Canvas:      b.canvas,
		Notifier:    b.alerts,
		Logger:      rt.Logger,
		ImageBounds: geo.ImageBounds(img.Width, img.Height),
	})
	if err != nil {
		return nil, err
	}
	b.controller = ctrl

	d, err := dispatcher.New(logging.NewDispatcherLogger(rt.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	ctrl.RegisterHandlers(d)
	b.dispatcher = d

	count := b.store.Count
	rt.pinCount.Store(&count)
	return b, nil
}

// client runs the interactive board until quit or EOF.
func client(ctx context.Context, rt *runtime, in io.Reader, out io.Writer) error {
	remote := api.New(viper.GetString("api.serverUrl"))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := remote.Healthcheck(pingCtx); err != nil {
		rt.Logger.Warn("Pin server not reachable", "url", viper.GetString("api.serverUrl"), "error", err)
	}
	cancel()

	b, err := newBoard(rt, remote)
	if err != nil {
		return err
	}
	defer b.dispatcher.Wait()

	// a failed initial load is reported as an alert, the session continues
	_ = b.controller.Start(ctx)
	b.show(out)

	fmt.Fprint(out, clientHelp)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if quit := b.exec(ctx, out, scanner.Text()); quit {
			return nil
		}
	}
}

// exec runs one prompt line and reports whether the session should end.
func (b *board) exec(ctx context.Context, out io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprint(out, clientHelp)
		return false
	case "show":
		b.show(out)
		return false
	}

	command := fields[0]
	if full, ok := aliases[command]; ok {
		command = full
	}
	if !b.dispatcher.HasHandler(command) {
		fmt.Fprintf(out, "unknown command %q, try help\n", fields[0])
		return false
	}

	result, err := b.dispatcher.Dispatch(ctx, dispatcher.Event{
		Command:   command,
		Args:      fields[1:],
		Timestamp: time.Now(),
	})
	// clicks and reloads run in the background; wait so the board below reflects the response
	b.dispatcher.Wait()

	switch {
	case err != nil:
		fmt.Fprintf(out, "error: %v\n", err)
	case command == syncer.CmdEdit:
		fmt.Fprintf(out, "editing, current name: %v\n", result)
	case command == syncer.CmdFit:
		fmt.Fprintf(out, "%v\n", result)
	}
	b.show(out)
	return false
}

func (b *board) show(out io.Writer) {
	if err := view.Render(out, b.canvas, b.list); err != nil {
		fmt.Fprintf(out, "render: %v\n", err)
	}
	for _, msg := range b.alerts.Drain() {
		fmt.Fprintf(out, "! %s\n", msg)
	}
}
