package mapview

import (
	"time"

	"github.com/geolocator/backend/internal/geo"
)

// TileLayer is the raster base layer.
type TileLayer struct {
	URL         string
	Attribution string
	MaxZoom     int
}

// Popup is the text bound to a marker.
type Popup struct {
	Lines []string
	Open  bool
}

type MarkerID uint64

// Layer is the rendering backend a Map drives. Implementations must call a
// FlyTo completion callback after FlyTo has returned, never from inside it.
type Layer interface {
	AddTileLayer(t TileLayer)
	SetView(center geo.Point, zoom int, animate bool)
	FlyTo(center geo.Point, zoom int, duration time.Duration, done func())
	AddMarker(at geo.Point, popup Popup) MarkerID
	RemoveMarker(id MarkerID)
	Remove()
}

// LayerFactory creates the backend for a freshly mounted map.
type LayerFactory func() (Layer, error)
