// Package projection keeps each pin's two UI projections, a map marker and a list card,
// in lockstep with the pin data they display.
package projection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/OCAP2/pinmap/pkg/core"
)

// entry is one live pin with both of its projections.
type entry struct {
	pin     core.Pin
	marker  MarkerHandle
	card    CardHandle
	editing bool
}

// Store maps pin IDs to their data and projection handles.
// Every method runs under a single lock, so a mutation is never observed half-applied.
type Store struct {
	mu      sync.RWMutex
	canvas  Canvas
	list    List
	entries map[int64]*entry
	order   []int64
}

// NewStore creates an empty Store drawing onto canvas and list.
func NewStore(canvas Canvas, list List) *Store {
	return &Store{
		canvas:  canvas,
		list:    list,
		entries: make(map[int64]*entry),
	}
}

// Upsert inserts pin or refreshes the existing one with the same ID.
// An existing pin keeps its marker and card; only their text changes.
func (s *Store) Upsert(pin core.Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertLocked(pin)
}

func (s *Store) upsertLocked(pin core.Pin) error {
	if e, ok := s.entries[pin.ID]; ok {
		e.pin = pin
		s.canvas.SetPopup(e.marker, pin.Name)
		s.list.SetCardName(e.card, pin.Name)
		return nil
	}

	marker, err := s.canvas.AddMarker(pin.LatLng(), pin.Name)
	if err != nil {
		return fmt.Errorf("add marker for pin %d: %w", pin.ID, err)
	}
	card, err := s.list.AppendCard(pin.ID, pin.Name, pin.Meta())
	if err != nil {
		// never leave a marker without its card
		s.canvas.RemoveMarker(marker)
		return fmt.Errorf("add card for pin %d: %w", pin.ID, err)
	}

	s.entries[pin.ID] = &entry{pin: pin, marker: marker, card: card}
	s.order = append(s.order, pin.ID)
	s.list.SetEmptyState(len(s.entries) == 0)
	return nil
}

// RenameLocal changes the displayed name of a registered pin. Unknown IDs are ignored.
func (s *Store) RenameLocal(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return
	}
	e.pin.Name = name
	s.canvas.SetPopup(e.marker, name)
	s.list.SetCardName(e.card, name)
}

// ClearAll removes every card and every marker and empties the registry.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	for _, id := range s.order {
		e := s.entries[id]
		s.list.RemoveCard(e.card)
		s.canvas.RemoveMarker(e.marker)
	}
	s.entries = make(map[int64]*entry)
	s.order = nil
	s.list.SetEmptyState(true)
}

// Replace clears the store and upserts pins in order, as one mutation.
// On error the previous pins are drawn again, edit mode included.
func (s *Store) Replace(pins []core.Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make([]entry, 0, len(s.order))
	for _, id := range s.order {
		prev = append(prev, *s.entries[id])
	}

	s.clearLocked()
	for _, p := range pins {
		if err := s.upsertLocked(p); err != nil {
			return errors.Join(err, s.restoreLocked(prev))
		}
	}
	s.list.SetEmptyState(len(s.entries) == 0)
	return nil
}

func (s *Store) restoreLocked(prev []entry) error {
	s.clearLocked()
	var errs []error
	for _, old := range prev {
		if err := s.upsertLocked(old.pin); err != nil {
			errs = append(errs, fmt.Errorf("restore: %w", err))
			continue
		}
		s.entries[old.pin.ID].editing = old.editing
	}
	s.list.SetEmptyState(len(s.entries) == 0)
	return errors.Join(errs...)
}

// Count returns the number of registered pins.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Has reports whether a pin with id is registered.
func (s *Store) Has(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// Get returns the registered pin with id.
func (s *Store) Get(id int64) (core.Pin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return core.Pin{}, false
	}
	return e.pin, true
}

// Pins returns all registered pins in card order.
func (s *Store) Pins() []core.Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pins := make([]core.Pin, 0, len(s.order))
	for _, id := range s.order {
		pins = append(pins, s.entries[id].pin)
	}
	return pins
}

// BeginEdit puts the card for id into pending-edit mode and returns the name to edit.
func (s *Store) BeginEdit(id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	e.editing = true
	return e.pin.Name, true
}

// EndEdit returns the card for id to idle and reports whether it was in edit mode.
func (s *Store) EndEdit(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || !e.editing {
		return false
	}
	e.editing = false
	return true
}

// Editing reports whether the card for id is in pending-edit mode.
func (s *Store) Editing(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return ok && e.editing
}
