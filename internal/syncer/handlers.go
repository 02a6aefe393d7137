package syncer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/OCAP2/pinmap/internal/dispatcher"
	"github.com/OCAP2/pinmap/internal/geo"
)

// Event commands handled by the controller.
const (
	CmdLoad   = "pins.load"
	CmdClick  = "map.click"
	CmdEdit   = "card.edit"
	CmdSubmit = "card.submit"
	CmdCancel = "card.cancel"
	CmdFit    = "map.fit"
)

// RegisterHandlers wires the controller flows into the dispatcher.
// Clicks run detached so that several creates can be in flight at once.
// Reloads are queued and run one at a time.
func (c *Controller) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(CmdLoad, c.handleLoad, dispatcher.Buffered(4), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(CmdClick, c.handleClick, dispatcher.Detached(), dispatcher.Logged())
	d.Register(CmdEdit, c.handleEdit, dispatcher.Logged())
	d.Register(CmdSubmit, c.handleSubmit, dispatcher.Logged())
	d.Register(CmdCancel, c.handleCancel, dispatcher.Logged())
	d.Register(CmdFit, c.handleFit)
}

func (c *Controller) handleLoad(ctx context.Context, e dispatcher.Event) (any, error) {
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c.deps.Store.Count(), nil
}

func (c *Controller) handleClick(ctx context.Context, e dispatcher.Event) (any, error) {
	// accepts "<lat> <lng>" or "<lat>,<lng>"
	pos, err := geo.LatLngFromString(strings.Join(e.Args, ","))
	if err != nil {
		return nil, fmt.Errorf("%s %v: %w", CmdClick, e.Args, err)
	}
	return c.Click(ctx, pos)
}

func (c *Controller) handleEdit(_ context.Context, e dispatcher.Event) (any, error) {
	id, err := pinID(e)
	if err != nil {
		return nil, err
	}
	return c.BeginEdit(id)
}

func (c *Controller) handleSubmit(ctx context.Context, e dispatcher.Event) (any, error) {
	id, err := pinID(e)
	if err != nil {
		return nil, err
	}
	if err := c.SubmitEdit(ctx, id, strings.Join(e.Args[1:], " ")); err != nil {
		return nil, err
	}
	return "renamed", nil
}

func (c *Controller) handleCancel(_ context.Context, e dispatcher.Event) (any, error) {
	id, err := pinID(e)
	if err != nil {
		return nil, err
	}
	c.CancelEdit(id)
	return "cancelled", nil
}

func (c *Controller) handleFit(context.Context, dispatcher.Event) (any, error) {
	if c.Fit() {
		return "fitted to pins", nil
	}
	return "fitted to image", nil
}

func pinID(e dispatcher.Event) (int64, error) {
	if len(e.Args) < 1 {
		return 0, fmt.Errorf("%s: missing pin id", e.Command)
	}
	id, err := strconv.ParseInt(e.Args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: bad pin id %q: %w", e.Command, e.Args[0], err)
	}
	return id, nil
}
