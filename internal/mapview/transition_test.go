package mapview

import (
	"math"
	"testing"

	"github.com/geolocator/backend/internal/geo"
)

// offsetNorth returns a point d km north of p.
func offsetNorth(p geo.Point, d float64) geo.Point {
	return geo.Point{Lat: p.Lat + d/6371.0*180/math.Pi, Lon: p.Lon}
}

func TestChooseTransitionFirstPlacement(t *testing.T) {
	next := geo.Point{Lat: 51.5, Lon: -0.1}
	tr := ChooseTransition(nil, next)
	if tr.Style != StyleFirst || tr.To != next || tr.Zoom != DetailZoom || tr.Duration != FlyDuration {
		t.Fatalf("unexpected first transition: %+v", tr)
	}
}

func TestChooseTransitionByDistance(t *testing.T) {
	prev := geo.Point{Lat: 51.505, Lon: -0.09}
	cases := []struct {
		km   float64
		want Style
	}{
		{0, StyleImmediate},
		{0.3, StyleImmediate},
		{0.7, StyleFly},
		{0.99, StyleFly},
		{5, StyleZoomOutIn},
		{500, StyleZoomOutIn},
	}
	for _, tc := range cases {
		tr := ChooseTransition(&prev, offsetNorth(prev, tc.km))
		if tr.Style != tc.want {
			t.Fatalf("%.2f km: got %v, want %v (distance %.4f)", tc.km, tr.Style, tc.want, tr.DistanceKm)
		}
		if tr.Zoom != DetailZoom {
			t.Fatalf("%.2f km: expected zoom %d, got %d", tc.km, DetailZoom, tr.Zoom)
		}
	}
}

func TestStyleForBoundaries(t *testing.T) {
	cases := []struct {
		km   float64
		want Style
	}{
		{0.4999, StyleImmediate},
		{0.5, StyleFly},
		{1.0, StyleFly},
		{1.0001, StyleZoomOutIn},
	}
	for _, tc := range cases {
		if got := styleFor(tc.km); got != tc.want {
			t.Fatalf("%.4f km: got %v, want %v", tc.km, got, tc.want)
		}
	}
}

func TestChooseTransitionZoomOutViaPrevious(t *testing.T) {
	prev := geo.Point{Lat: 51.505, Lon: -0.09}
	tr := ChooseTransition(&prev, offsetNorth(prev, 5))
	if tr.Via != prev || tr.ViaZoom != OverviewZoom {
		t.Fatalf("expected intermediate view at previous point zoom 7, got %+v zoom %d", tr.Via, tr.ViaZoom)
	}
	if tr.Duration != FlyDuration {
		t.Fatalf("unexpected duration: %s", tr.Duration)
	}
}
