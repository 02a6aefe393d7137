package view

import (
	"fmt"
	"io"
)

// Render writes a text snapshot of the list and the canvas to w.
func Render(w io.Writer, canvas *Canvas, list *List) error {
	cards := list.Cards()
	if _, err := fmt.Fprintf(w, "Pins (%d)\n", len(cards)); err != nil {
		return err
	}
	if list.EmptyStateVisible() {
		if _, err := fmt.Fprintln(w, "  No pins yet. Click the map to add one."); err != nil {
			return err
		}
	}
	for _, c := range cards {
		if _, err := fmt.Fprintf(w, "  [%d] %s\n      %s\n", c.PinID, c.Name, c.Meta); err != nil {
			return err
		}
	}

	sw, ne := canvas.Viewport()
	if _, err := fmt.Fprintf(w, "Map %s - %s\n", sw, ne); err != nil {
		return err
	}
	for _, m := range canvas.Markers() {
		if _, err := fmt.Fprintf(w, "  %s\n", m); err != nil {
			return err
		}
	}
	return nil
}
