package view

import (
	"sync"

	"github.com/OCAP2/pinmap/internal/projection"
)

// Card is a pin card as currently shown in the list.
type Card struct {
	Handle projection.CardHandle
	PinID  int64
	Name   string
	Meta   string
}

// List is an in-memory sidebar holding pin cards in display order.
type List struct {
	mu           sync.Mutex
	next         uint64
	cards        []Card
	emptyVisible bool
}

var _ projection.List = (*List)(nil)

// NewList creates a list showing the empty-state indicator.
func NewList() *List {
	return &List{emptyVisible: true}
}

// AppendCard adds a card at the end of the list.
func (l *List) AppendCard(id int64, name, meta string) (projection.CardHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	h := projection.CardHandle(l.next)
	l.cards = append(l.cards, Card{Handle: h, PinID: id, Name: name, Meta: meta})
	return h, nil
}

// SetCardName changes the name shown on a card.
func (l *List) SetCardName(h projection.CardHandle, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(h); i >= 0 {
		l.cards[i].Name = name
	}
}

// RemoveCard takes a card out of the list.
func (l *List) RemoveCard(h projection.CardHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(h); i >= 0 {
		l.cards = append(l.cards[:i], l.cards[i+1:]...)
	}
}

// SetEmptyState shows or hides the empty-state indicator.
func (l *List) SetEmptyState(visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emptyVisible = visible
}

// EmptyStateVisible reports whether the empty-state indicator is shown.
func (l *List) EmptyStateVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.emptyVisible
}

// Cards returns the cards in display order.
func (l *List) Cards() []Card {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Card, len(l.cards))
	copy(out, l.cards)
	return out
}

// CardFor returns the card showing pin id.
func (l *List) CardFor(id int64) (Card, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.cards {
		if c.PinID == id {
			return c, true
		}
	}
	return Card{}, false
}

func (l *List) indexLocked(h projection.CardHandle) int {
	for i, c := range l.cards {
		if c.Handle == h {
			return i
		}
	}
	return -1
}
