package mapview

import (
	"fmt"
	"time"

	"github.com/geolocator/backend/internal/geo"
)

const (
	DetailZoom   = 18
	OverviewZoom = 7
	FlyDuration  = 2 * time.Second

	// NearKm and FarKm bound the plain fly transition: closer than NearKm
	// jumps, farther than FarKm zooms out over the previous point first.
	NearKm = 0.5
	FarKm  = 1.0
)

// Style is how the view moves to a newly selected location.
type Style int

const (
	StyleNone      Style = iota // nothing to show
	StyleFirst                  // no previous location: marker, then fly in
	StyleImmediate              // marker, then animated set-view, no zoom-out
	StyleFly                    // marker, then fly in
	StyleZoomOutIn              // fly out over the previous point, then marker and fly in
)

func (s Style) String() string {
	switch s {
	case StyleNone:
		return "none"
	case StyleFirst:
		return "first"
	case StyleImmediate:
		return "immediate"
	case StyleFly:
		return "fly"
	case StyleZoomOutIn:
		return "zoom-out-in"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Transition is the plan for one location update.
type Transition struct {
	Style      Style
	DistanceKm float64
	To         geo.Point
	Zoom       int
	Duration   time.Duration

	// Via and ViaZoom are the intermediate view of StyleZoomOutIn.
	Via     geo.Point
	ViaZoom int
}

// ChooseTransition picks the transition from prev (nil when nothing has been
// shown yet) to next.
func ChooseTransition(prev *geo.Point, next geo.Point) Transition {
	t := Transition{To: next, Zoom: DetailZoom}
	if prev == nil {
		t.Style = StyleFirst
		t.Duration = FlyDuration
		return t
	}

	d := prev.DistanceKm(next)
	t.DistanceKm = d
	t.Style = styleFor(d)
	switch t.Style {
	case StyleZoomOutIn:
		t.Duration = FlyDuration
		t.Via = *prev
		t.ViaZoom = OverviewZoom
	case StyleFly:
		t.Duration = FlyDuration
	}
	return t
}

// styleFor classifies a move of d km from a previously shown location.
// Both bounds are inclusive for StyleFly.
func styleFor(d float64) Style {
	switch {
	case d < NearKm:
		return StyleImmediate
	case d > FarKm:
		return StyleZoomOutIn
	default:
		return StyleFly
	}
}
