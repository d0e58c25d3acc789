// Package search holds the suggestion panel state machine: the query being
// typed, the debounced value that drives provider lookups, the current
// suggestion list and the committed selection.
//
// A Panel is not safe for concurrent use. Its owner delivers inputs one at a
// time (a UI event loop, a test) and performs the fetches it asks for.
package search

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/geolocator/backend/internal/geocode"
)

var ErrNoSuggestion = errors.New("search: no suggestion at index")

// Phase is the panel state.
type Phase int

const (
	PhaseIdle      Phase = iota // empty query, nothing shown
	PhaseSearching              // non-empty query, suggestions pending or listed
	PhaseSelected               // a suggestion was committed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// StalePolicy decides what happens to a response whose request has been
// superseded by a newer one.
type StalePolicy int

const (
	// LastResponseWins applies every successful response in arrival order,
	// so a slow older response can replace a newer list.
	LastResponseWins StalePolicy = iota
	// LatestRequestWins drops responses to anything but the newest request.
	LatestRequestWins
)

// Suggester fetches autocomplete candidates.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]geocode.Feature, error)
}

// FetchRequest is a lookup the panel wants performed.
type FetchRequest struct {
	Query      string
	Generation uint64
}

// FetchResult is handed back to Apply once a FetchRequest completes.
type FetchResult struct {
	Request  FetchRequest
	Features []geocode.Feature
	Err      error
}

// Fetch performs req with s.
func Fetch(ctx context.Context, s Suggester, req FetchRequest) FetchResult {
	features, err := s.Suggest(ctx, req.Query)
	return FetchResult{Request: req, Features: features, Err: err}
}

// Selection is the result set passed to the map. It never holds more than one
// feature.
type Selection struct {
	features []geocode.Feature
}

// NewSelection wraps f as a one-element result set.
func NewSelection(f geocode.Feature) Selection {
	return Selection{features: []geocode.Feature{f}}
}

func (s Selection) Len() int { return len(s.features) }

// Feature returns the selected feature, if any.
func (s Selection) Feature() (geocode.Feature, bool) {
	if len(s.features) == 0 {
		return geocode.Feature{}, false
	}
	return s.features[0], true
}

type syncKey struct {
	debounced string
	visible   bool
}

type Option func(*Panel)

func WithLogger(l zerolog.Logger) Option {
	return func(p *Panel) { p.logger = l }
}

func WithStaleResponses(policy StalePolicy) Option {
	return func(p *Panel) { p.stale = policy }
}

type Panel struct {
	phase       Phase
	query       string
	debounced   string
	visible     bool
	suggestions []geocode.Feature
	selection   Selection
	lastErr     error

	generation uint64
	synced     syncKey

	stale  StalePolicy
	logger zerolog.Logger
}

func New(opts ...Option) *Panel {
	p := &Panel{
		phase:   PhaseIdle,
		visible: true,
		synced:  syncKey{visible: true},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Input records the text field value. The caller also pushes text into its
// debouncer; the returned request, if any, must be fetched.
func (p *Panel) Input(text string) *FetchRequest {
	p.query = text
	if text == "" {
		p.phase = PhaseIdle
		p.visible = false
		p.suggestions = nil
	} else {
		p.phase = PhaseSearching
		p.visible = true
	}
	return p.sync()
}

// Focus re-enables the suggestion list, e.g. when the field regains focus.
func (p *Panel) Focus() *FetchRequest {
	p.visible = true
	if p.phase == PhaseSelected {
		p.phase = PhaseSearching
	}
	if p.query == "" {
		p.phase = PhaseIdle
	}
	return p.sync()
}

// Debounced records the debounced query value.
func (p *Panel) Debounced(q string) *FetchRequest {
	p.debounced = q
	return p.sync()
}

// sync reacts to a change of the (debounced, visible) pair: fetch when there
// is something to look up and the list may be shown, clear otherwise.
func (p *Panel) sync() *FetchRequest {
	key := syncKey{debounced: p.debounced, visible: p.visible}
	if key == p.synced {
		return nil
	}
	p.synced = key

	p.generation++
	if p.debounced != "" && p.visible {
		return &FetchRequest{Query: p.debounced, Generation: p.generation}
	}
	p.suggestions = nil
	return nil
}

// Apply installs a fetch result. Failures keep the current list.
func (p *Panel) Apply(res FetchResult) {
	if res.Err != nil {
		p.lastErr = res.Err
		p.logger.Error().Err(res.Err).Str("query", res.Request.Query).Msg("fetch suggestions failed")
		return
	}
	if p.stale == LatestRequestWins && res.Request.Generation != p.generation {
		p.logger.Debug().
			Uint64("generation", res.Request.Generation).
			Uint64("current", p.generation).
			Msg("dropping stale suggestions")
		return
	}
	p.lastErr = nil
	p.suggestions = res.Features
}

// Select commits the suggestion at index i and returns the result set for the
// map.
func (p *Panel) Select(i int) (Selection, error) {
	if i < 0 || i >= len(p.suggestions) {
		return Selection{}, ErrNoSuggestion
	}
	f := p.suggestions[i]

	p.query = f.Properties.Label()
	p.suggestions = nil
	p.visible = false
	p.phase = PhaseSelected
	p.selection = NewSelection(f)
	p.sync()

	return p.selection, nil
}

func (p *Panel) Phase() Phase { return p.phase }

func (p *Panel) Query() string { return p.query }

// Visible reports whether the dropdown is shown.
func (p *Panel) Visible() bool { return p.visible && len(p.suggestions) > 0 }

func (p *Panel) Suggestions() []geocode.Feature {
	return append([]geocode.Feature(nil), p.suggestions...)
}

// Rows are the dropdown lines in provider order.
func (p *Panel) Rows() []string {
	rows := make([]string, 0, len(p.suggestions))
	for _, f := range p.suggestions {
		rows = append(rows, f.Properties.Row())
	}
	return rows
}

func (p *Panel) Selection() Selection { return p.selection }

// Err is the last fetch failure, cleared by the next successful fetch.
func (p *Panel) Err() error { return p.lastErr }
