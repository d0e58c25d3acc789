// Package mapview owns the interactive map: its single live instance, the one
// location marker and the choice of view transition between selections.
package mapview

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/geolocator/backend/internal/geo"
	"github.com/geolocator/backend/internal/search"
)

var ErrClosed = errors.New("mapview: map has been torn down")

type Options struct {
	Center geo.Point
	Zoom   int
	Tiles  TileLayer
	Logger zerolog.Logger
}

// Map is a mounted map instance. Its handlers are serialized; layer
// completion callbacks may arrive on other goroutines.
type Map struct {
	mu     sync.Mutex
	layer  Layer
	logger zerolog.Logger
	closed bool

	marker    MarkerID
	markerAt  geo.Point
	hasMarker bool

	prev *geo.Point
	// seq identifies the latest Show so a delayed second phase can tell it
	// has been superseded.
	seq uint64
}

func newMap(layer Layer, opts Options) *Map {
	layer.SetView(opts.Center, opts.Zoom, false)
	layer.AddTileLayer(opts.Tiles)
	return &Map{layer: layer, logger: opts.Logger}
}

// Show moves the map to the selected location. An empty selection changes
// nothing.
func (m *Map) Show(sel search.Selection) (Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Transition{}, ErrClosed
	}
	f, ok := sel.Feature()
	if !ok {
		m.logger.Debug().Msg("no valid location data found")
		return Transition{Style: StyleNone}, nil
	}

	next := f.Properties.Point()
	popup := Popup{Lines: f.Properties.PopupLines(), Open: true}

	m.removeMarker()

	t := ChooseTransition(m.prev, next)
	m.seq++
	m.logger.Debug().
		Str("style", t.Style.String()).
		Float64("distance_km", t.DistanceKm).
		Float64("lat", next.Lat).
		Float64("lon", next.Lon).
		Msg("location updated")

	switch t.Style {
	case StyleImmediate:
		m.placeMarker(next, popup)
		m.layer.SetView(t.To, t.Zoom, true)
	case StyleZoomOutIn:
		seq := m.seq
		m.layer.FlyTo(t.Via, t.ViaZoom, t.Duration, func() {
			m.zoomIn(seq, t, popup)
		})
	default:
		m.placeMarker(next, popup)
		m.layer.FlyTo(t.To, t.Zoom, t.Duration, nil)
	}

	m.prev = &next
	return t, nil
}

// zoomIn is the second phase of StyleZoomOutIn, run once the zoom-out has
// finished. It is dropped if another Show or a teardown came first.
func (m *Map) zoomIn(seq uint64, t Transition, popup Popup) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || seq != m.seq {
		m.logger.Debug().Msg("skipping superseded zoom-in")
		return
	}
	m.placeMarker(t.To, popup)
	m.layer.FlyTo(t.To, t.Zoom, t.Duration, nil)
}

func (m *Map) placeMarker(at geo.Point, popup Popup) {
	m.marker = m.layer.AddMarker(at, popup)
	m.markerAt = at
	m.hasMarker = true
}

func (m *Map) removeMarker() {
	if !m.hasMarker {
		return
	}
	m.layer.RemoveMarker(m.marker)
	m.hasMarker = false
}

// Marker returns the position of the live marker, if there is one.
func (m *Map) Marker() (geo.Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markerAt, m.hasMarker
}

// Previous returns the last committed location.
func (m *Map) Previous() (geo.Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prev == nil {
		return geo.Point{}, false
	}
	return *m.prev, true
}

func (m *Map) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.removeMarker()
	m.layer.Remove()
	m.closed = true
}
