package geocode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/geolocator/backend/internal/geo"
)

var (
	ErrMissingAPIKey = errors.New("geocode: api key is missing")
	ErrUpstream      = errors.New("geocode: upstream request failed")
)

// Coord is an optional coordinate component. The provider sends numbers on
// autocomplete and numeric strings on some resolved lookups; both decode.
// Anything else leaves it unset.
type Coord struct {
	Value float64
	Valid bool
}

func (c *Coord) UnmarshalJSON(b []byte) error {
	*c = Coord{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	c.Value, c.Valid = f, true
	return nil
}

func (c Coord) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// String renders the raw value, empty when absent.
func (c Coord) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// Properties are the provider fields this system reads. All optional.
type Properties struct {
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Category     string `json:"category,omitempty"`
	City         string `json:"city,omitempty"`
	Formatted    string `json:"formatted,omitempty"`
	Lat          Coord  `json:"lat"`
	Lon          Coord  `json:"lon"`
}

type Feature struct {
	Properties Properties `json:"properties"`
}

type FeatureCollection struct {
	Features []Feature `json:"features"`
}

// ErrorBody is the payload the proxy answers with on failure.
type ErrorBody struct {
	Error string `json:"error"`
}

// Label is the text shown in the query field once the feature is chosen.
func (p Properties) Label() string {
	return firstNonEmpty(p.AddressLine1, p.AddressLine2, p.State, p.Country)
}

// Row is the suggestion list entry, e.g. "10 Main St, London, United Kingdom (N1 9GU)".
func (p Properties) Row() string {
	return fmt.Sprintf("%s, %s, %s (%s)",
		p.AddressLine1,
		firstNonEmpty(p.AddressLine2, p.State),
		p.Country,
		firstNonEmpty(p.Postcode, p.Category),
	)
}

// PopupLines are the marker popup contents: address, state, country and the
// raw coordinates.
func (p Properties) PopupLines() []string {
	return []string{
		"Address:",
		p.AddressLine1,
		p.AddressLine2,
		p.State,
		p.Country,
		p.Lat.String(),
		p.Lon.String(),
	}
}

// Point returns the feature position. Missing components are 0.
func (p Properties) Point() geo.Point {
	return geo.Point{Lat: p.Lat.Value, Lon: p.Lon.Value}
}

// ParseFeatureCollection decodes a provider body. A body without features
// yields an empty collection.
func ParseFeatureCollection(body []byte) (FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("decode feature collection: %w", err)
	}
	if fc.Features == nil {
		fc.Features = []Feature{}
	}
	return fc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
