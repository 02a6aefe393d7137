package projection

import "github.com/OCAP2/pinmap/pkg/core"

// MarkerHandle identifies a marker owned by a Canvas. Opaque to the store.
type MarkerHandle uint64

// CardHandle identifies a card owned by a List. Opaque to the store.
type CardHandle uint64

// Canvas is the map widget: markers with popups over the image, in widget coordinates.
type Canvas interface {
	AddMarker(pos core.LatLng, popup string) (MarkerHandle, error)
	SetPopup(h MarkerHandle, text string)
	RemoveMarker(h MarkerHandle)
	FitBounds(sw, ne core.LatLng)
	OnClick(fn func(core.LatLng))
}

// List is the sidebar: an ordered set of pin cards plus the empty-state indicator.
type List interface {
	AppendCard(id int64, name, meta string) (CardHandle, error)
	SetCardName(h CardHandle, name string)
	RemoveCard(h CardHandle)
	SetEmptyState(visible bool)
}
