package projection_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/OCAP2/pinmap/internal/projection"
	"github.com/OCAP2/pinmap/internal/view"
	"github.com/OCAP2/pinmap/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingList refuses to append cards while fail is set, or for pin failOn.
type failingList struct {
	*view.List
	fail   bool
	failOn int64
}

func (l *failingList) AppendCard(id int64, name, meta string) (projection.CardHandle, error) {
	if l.fail || (l.failOn != 0 && id == l.failOn) {
		return 0, errors.New("list detached")
	}
	return l.List.AppendCard(id, name, meta)
}

func newTestStore() (*projection.Store, *view.Canvas, *view.List) {
	canvas := view.NewCanvas()
	list := view.NewList()
	return projection.NewStore(canvas, list), canvas, list
}

// assertPaired checks that every registered pin has exactly one marker and one card.
func assertPaired(t *testing.T, s *projection.Store, canvas *view.Canvas, list *view.List) {
	t.Helper()
	pins := s.Pins()
	require.Len(t, canvas.Markers(), len(pins))
	require.Len(t, list.Cards(), len(pins))
	for i, p := range pins {
		assert.Equal(t, p.ID, list.Cards()[i].PinID)
		assert.Equal(t, p.LatLng(), canvas.Markers()[i].Pos)
	}
	assert.Equal(t, len(pins) == 0, list.EmptyStateVisible())
}

func TestStore_UpsertNew(t *testing.T) {
	s, canvas, list := newTestStore()

	require.NoError(t, s.Upsert(core.Pin{ID: 1, Name: "Site A", X: 10, Y: 20}))

	assert.Equal(t, 1, s.Count())
	markers := canvas.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, core.LatLng{Lat: 20, Lng: 10}, markers[0].Pos)
	assert.Equal(t, "Site A", markers[0].Popup)

	card, ok := list.CardFor(1)
	require.True(t, ok)
	assert.Equal(t, "Site A", card.Name)
	assert.Equal(t, "x: 10.0, y: 20.0", card.Meta)
	assert.False(t, list.EmptyStateVisible())
}

func TestStore_UpsertExistingKeepsHandles(t *testing.T) {
	s, canvas, list := newTestStore()

	require.NoError(t, s.Upsert(core.Pin{ID: 1, Name: "Site A", X: 10, Y: 20}))
	before := canvas.Markers()[0].Handle
	cardBefore, _ := list.CardFor(1)

	require.NoError(t, s.Upsert(core.Pin{ID: 1, Name: "Site Alpha", X: 10, Y: 20}))

	assert.Equal(t, 1, s.Count())
	markers := canvas.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, before, markers[0].Handle)
	assert.Equal(t, "Site Alpha", markers[0].Popup)

	cardAfter, _ := list.CardFor(1)
	assert.Equal(t, cardBefore.Handle, cardAfter.Handle)
	assert.Equal(t, "Site Alpha", cardAfter.Name)

	p, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Site Alpha", p.Name)
}

func TestStore_UpsertCardFailureRemovesMarker(t *testing.T) {
	canvas := view.NewCanvas()
	list := &failingList{List: view.NewList(), fail: true}
	s := projection.NewStore(canvas, list)

	err := s.Upsert(core.Pin{ID: 1, Name: "Site A"})
	require.Error(t, err)

	assert.Equal(t, 0, s.Count())
	assert.Empty(t, canvas.Markers())
	assert.Empty(t, list.Cards())
	assert.True(t, list.EmptyStateVisible())
}

func TestStore_RenameLocal(t *testing.T) {
	s, canvas, list := newTestStore()
	require.NoError(t, s.Upsert(core.Pin{ID: 1, Name: "Site A", X: 10, Y: 20}))

	s.RenameLocal(1, "Site Alpha")

	assert.Equal(t, "Site Alpha", canvas.Markers()[0].Popup)
	card, _ := list.CardFor(1)
	assert.Equal(t, "Site Alpha", card.Name)
	p, _ := s.Get(1)
	assert.Equal(t, "Site Alpha", p.Name)
}

func TestStore_RenameLocal_UnknownIsNoop(t *testing.T) {
	s, canvas, list := newTestStore()
	require.NoError(t, s.Upsert(core.Pin{ID: 1, Name: "Site A"}))

	s.RenameLocal(99, "ghost")

	assert.Equal(t, 1, s.Count())
	assert.Equal(t, "Site A", canvas.Markers()[0].Popup)
	assert.Equal(t, "Site A", list.Cards()[0].Name)
	assert.False(t, s.Has(99))
}

func TestStore_ClearAllRemovesBothProjections(t *testing.T) {
	s, canvas, list := newTestStore()
	require.NoError(t, s.Upsert(core.Pin{ID: 1, Name: "Site A"}))
	require.NoError(t, s.Upsert(core.Pin{ID: 2, Name: "Site B"}))

	s.ClearAll()

	assert.Equal(t, 0, s.Count())
	assert.Empty(t, canvas.Markers())
	assert.Empty(t, list.Cards())
	assert.True(t, list.EmptyStateVisible())
}

func TestStore_ReplaceKeepsOrder(t *testing.T) {
	s, canvas, list := newTestStore()
	require.NoError(t, s.Upsert(core.Pin{ID: 9, Name: "stale"}))

	err := s.Replace([]core.Pin{
		{ID: 1, Name: "Site A", X: 10, Y: 20},
		{ID: 2, Name: "Site B", X: 30, Y: 40},
	})
	require.NoError(t, err)

	cards := list.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, "Site A", cards[0].Name)
	assert.Equal(t, "Site B", cards[1].Name)
	assert.False(t, s.Has(9))
	assertPaired(t, s, canvas, list)

	require.NoError(t, s.Replace(nil))
	assert.True(t, list.EmptyStateVisible())
	assertPaired(t, s, canvas, list)
}

func TestStore_ReplaceFailureKeepsPreviousBoard(t *testing.T) {
	canvas := view.NewCanvas()
	list := &failingList{List: view.NewList(), failOn: 4}
	s := projection.NewStore(canvas, list)
	require.NoError(t, s.Upsert(core.Pin{ID: 1, Name: "Site A", X: 10, Y: 20}))
	require.NoError(t, s.Upsert(core.Pin{ID: 2, Name: "Site B", X: 30, Y: 40}))
	_, ok := s.BeginEdit(2)
	require.True(t, ok)

	err := s.Replace([]core.Pin{
		{ID: 3, Name: "Site C", X: 50, Y: 60},
		{ID: 4, Name: "Site D", X: 70, Y: 80},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add card for pin 4")

	assert.Equal(t, []core.Pin{
		{ID: 1, Name: "Site A", X: 10, Y: 20},
		{ID: 2, Name: "Site B", X: 30, Y: 40},
	}, s.Pins())
	assert.False(t, s.Has(3))
	assert.True(t, s.Editing(2))
	assert.False(t, s.Editing(1))
	assertPaired(t, s, canvas, list.List)
}

func TestStore_CountMatchesDistinctIdentities(t *testing.T) {
	s, canvas, list := newTestStore()

	ids := []int64{1, 2, 1, 3, 2, 3, 4}
	for _, id := range ids {
		require.NoError(t, s.Upsert(core.Pin{ID: id, Name: "p"}))
	}

	assert.Equal(t, 4, s.Count())
	assertPaired(t, s, canvas, list)
}

func TestStore_InsertionOrder(t *testing.T) {
	s, _, list := newTestStore()
	for _, id := range []int64{5, 3, 8} {
		require.NoError(t, s.Upsert(core.Pin{ID: id, Name: "p"}))
	}

	var got []int64
	for _, p := range s.Pins() {
		got = append(got, p.ID)
	}
	assert.Equal(t, []int64{5, 3, 8}, got)
	assert.Equal(t, int64(8), list.Cards()[2].PinID)
}

func TestStore_EditMode(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.Upsert(core.Pin{ID: 1, Name: "Site A"}))

	name, ok := s.BeginEdit(1)
	require.True(t, ok)
	assert.Equal(t, "Site A", name)
	assert.True(t, s.Editing(1))

	assert.True(t, s.EndEdit(1))
	assert.False(t, s.Editing(1))
	assert.False(t, s.EndEdit(1), "second end has no session to close")
	assert.False(t, s.EndEdit(42))

	_, ok = s.BeginEdit(42)
	assert.False(t, ok)
	assert.False(t, s.Editing(42))
}

func TestStore_ConcurrentUpserts(t *testing.T) {
	s, canvas, list := newTestStore()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = s.Upsert(core.Pin{ID: id % 20, Name: "p"})
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 20, s.Count())
	assertPaired(t, s, canvas, list)
}
