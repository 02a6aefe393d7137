package view

import (
	"bytes"
	"testing"

	"github.com/OCAP2/pinmap/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvas_MarkerLifecycle(t *testing.T) {
	c := NewCanvas()

	h1, err := c.AddMarker(core.LatLng{Lat: 20, Lng: 10}, "Site A")
	require.NoError(t, err)
	h2, err := c.AddMarker(core.LatLng{Lat: 40, Lng: 30}, "Site B")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	c.SetPopup(h1, "Site Alpha")
	m, ok := c.Marker(h1)
	require.True(t, ok)
	assert.Equal(t, "Site Alpha", m.Popup)

	c.RemoveMarker(h1)
	_, ok = c.Marker(h1)
	assert.False(t, ok)

	markers := c.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, h2, markers[0].Handle)

	// unknown handles are ignored
	c.SetPopup(h1, "ghost")
	c.RemoveMarker(h1)
	assert.Len(t, c.Markers(), 1)
}

func TestCanvas_ClickAndViewport(t *testing.T) {
	c := NewCanvas()

	var got []core.LatLng
	c.OnClick(func(ll core.LatLng) { got = append(got, ll) })
	c.Click(core.LatLng{Lat: 1200, Lng: 500})

	require.Len(t, got, 1)
	assert.Equal(t, core.LatLng{Lat: 1200, Lng: 500}, got[0])

	c.FitBounds(core.LatLng{}, core.LatLng{Lat: 7049, Lng: 2000})
	sw, ne := c.Viewport()
	assert.Equal(t, core.LatLng{}, sw)
	assert.Equal(t, core.LatLng{Lat: 7049, Lng: 2000}, ne)
}

func TestList_Cards(t *testing.T) {
	l := NewList()
	assert.True(t, l.EmptyStateVisible())

	h1, _ := l.AppendCard(1, "Site A", "x: 10.0, y: 20.0")
	h2, _ := l.AppendCard(2, "Site B", "x: 30.0, y: 40.0")

	l.SetCardName(h2, "Site Beta")
	cards := l.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, "Site A", cards[0].Name)
	assert.Equal(t, "Site Beta", cards[1].Name)

	l.RemoveCard(h1)
	_, ok := l.CardFor(1)
	assert.False(t, ok)
	c, ok := l.CardFor(2)
	require.True(t, ok)
	assert.Equal(t, "x: 30.0, y: 40.0", c.Meta)

	l.SetEmptyState(false)
	assert.False(t, l.EmptyStateVisible())
}

func TestAlerts(t *testing.T) {
	a := NewAlerts()
	a.Alert("Failed to create pin")
	a.Alert("Rename failed: Pin not found")

	assert.Equal(t, []string{"Failed to create pin", "Rename failed: Pin not found"}, a.Pending())
	assert.Len(t, a.Drain(), 2)
	assert.Empty(t, a.Pending())
}

func TestRender(t *testing.T) {
	c := NewCanvas()
	l := NewList()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, c, l))
	assert.Contains(t, buf.String(), "No pins yet")

	_, _ = c.AddMarker(core.LatLng{Lat: 20, Lng: 10}, "Site A")
	_, _ = l.AppendCard(1, "Site A", "x: 10.0, y: 20.0")
	l.SetEmptyState(false)

	buf.Reset()
	require.NoError(t, Render(&buf, c, l))
	out := buf.String()
	assert.NotContains(t, out, "No pins yet")
	assert.Contains(t, out, "[1] Site A")
	assert.Contains(t, out, `marker (20, 10) "Site A"`)
}
