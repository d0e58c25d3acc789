package ui

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/geolocator/backend/internal/geo"
	"github.com/geolocator/backend/internal/mapview"
)

const (
	tileSize        = 256.0
	cellWidthPx     = 8.0
	cellHeightPx    = 16.0
	setViewDuration = 250 * time.Millisecond
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

type flight struct {
	from, to         geo.Point
	fromZoom, toZoom float64
	start            time.Time
	duration         time.Duration
}

type terminalMarker struct {
	at    geo.Point
	popup mapview.Popup
}

// TerminalLayer renders the map as a character grid. Flights complete on
// timer goroutines, so all state is guarded.
type TerminalLayer struct {
	mu  sync.Mutex
	now func() time.Time

	center  geo.Point
	zoom    float64
	anim    *flight
	tiles   mapview.TileLayer
	markers map[mapview.MarkerID]terminalMarker
	nextID  mapview.MarkerID
	timers  []*time.Timer
	removed bool
}

func NewTerminalLayer() *TerminalLayer {
	return &TerminalLayer{
		now:     time.Now,
		markers: map[mapview.MarkerID]terminalMarker{},
	}
}

func (l *TerminalLayer) AddTileLayer(t mapview.TileLayer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tiles = t
}

func (l *TerminalLayer) SetView(center geo.Point, zoom int, animate bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if animate {
		l.startFlight(center, zoom, setViewDuration)
		return
	}
	l.anim = nil
	l.center, l.zoom = center, float64(zoom)
}

func (l *TerminalLayer) FlyTo(center geo.Point, zoom int, duration time.Duration, done func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f := l.startFlight(center, zoom, duration)
	timer := time.AfterFunc(duration, func() {
		l.mu.Lock()
		if l.anim == f {
			l.land()
		}
		l.mu.Unlock()
		if done != nil {
			done()
		}
	})
	l.timers = append(l.timers, timer)
}

func (l *TerminalLayer) startFlight(center geo.Point, zoom int, duration time.Duration) *flight {
	from, fromZoom := l.position()
	f := &flight{
		from:     from,
		to:       center,
		fromZoom: fromZoom,
		toZoom:   float64(zoom),
		start:    l.now(),
		duration: duration,
	}
	l.anim = f
	return f
}

func (l *TerminalLayer) land() {
	l.center, l.zoom = l.anim.to, l.anim.toZoom
	l.anim = nil
}

// position is the current, possibly mid-flight, view.
func (l *TerminalLayer) position() (geo.Point, float64) {
	if l.anim == nil {
		return l.center, l.zoom
	}
	f := l.anim
	t := 1.0
	if f.duration > 0 {
		t = math.Min(1, float64(l.now().Sub(f.start))/float64(f.duration))
	}
	if t >= 1 {
		l.land()
		return l.center, l.zoom
	}
	p := geo.Point{
		Lat: f.from.Lat + (f.to.Lat-f.from.Lat)*t,
		Lon: f.from.Lon + (f.to.Lon-f.from.Lon)*t,
	}
	return p, f.fromZoom + (f.toZoom-f.fromZoom)*t
}

func (l *TerminalLayer) AddMarker(at geo.Point, popup mapview.Popup) mapview.MarkerID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.markers[l.nextID] = terminalMarker{at: at, popup: popup}
	return l.nextID
}

func (l *TerminalLayer) RemoveMarker(id mapview.MarkerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.markers, id)
}

func (l *TerminalLayer) Remove() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.timers {
		t.Stop()
	}
	l.timers = nil
	l.anim = nil
	l.removed = true
}

// Animating reports whether a flight is in progress.
func (l *TerminalLayer) Animating() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position()
	return l.anim != nil
}

// View returns the current center and zoom.
func (l *TerminalLayer) View() (geo.Point, float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position()
}

// MarkerCount is the number of markers on the layer.
func (l *TerminalLayer) MarkerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.markers)
}

// Render draws a width x height grid centered on the view, followed by the
// status line, open popups and the tile attribution.
func (l *TerminalLayer) Render(width, height int) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.removed {
		return "map unavailable"
	}
	width = max(width, 3)
	height = max(height, 3)

	center, zoom := l.position()
	cx, cy := project(center, zoom)

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	grid[height/2][width/2] = '+'

	var popups []string
	for _, m := range l.markers {
		mx, my := project(m.at, zoom)
		col := width/2 + int(math.Round((mx-cx)/cellWidthPx))
		row := height/2 + int(math.Round((my-cy)/cellHeightPx))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '●'
		}
		if m.popup.Open {
			popups = append(popups, popupText(m.popup))
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}

	status := fmt.Sprintf("%.5f, %.5f  zoom %.1f", center.Lat, center.Lon, zoom)
	if l.anim != nil {
		status += "  flying..."
	}
	b.WriteString(status)
	for _, p := range popups {
		b.WriteString("\n")
		b.WriteString(p)
	}
	if attr := attributionText(l.tiles.Attribution); attr != "" {
		b.WriteString("\n")
		b.WriteString(attr)
	}
	return b.String()
}

// project converts p to Web Mercator pixel coordinates at zoom.
func project(p geo.Point, zoom float64) (float64, float64) {
	scale := tileSize * math.Pow(2, zoom)
	lat := math.Max(-85.05112878, math.Min(85.05112878, p.Lat))
	sin := math.Sin(lat * math.Pi / 180)
	x := (p.Lon + 180) / 360 * scale
	y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * scale
	return x, y
}

func popupText(p mapview.Popup) string {
	lines := make([]string, 0, len(p.Lines))
	for _, line := range p.Lines {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func attributionText(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTag.ReplaceAllString(s, "")))
}
