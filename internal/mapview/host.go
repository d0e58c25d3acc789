package mapview

import (
	"fmt"
	"sync"
)

// Host is the page-level owner of the map. It never holds more than one live
// instance.
type Host struct {
	factory LayerFactory
	opts    Options

	mu      sync.Mutex
	current *Map
}

func NewHost(factory LayerFactory, opts Options) *Host {
	return &Host{factory: factory, opts: opts}
}

// Mount returns the live map, creating it first if there is none.
func (h *Host) Mount() (*Map, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current != nil {
		return h.current, nil
	}
	layer, err := h.factory()
	if err != nil {
		return nil, fmt.Errorf("create map layer: %w", err)
	}
	h.current = newMap(layer, h.opts)
	h.opts.Logger.Info().
		Float64("lat", h.opts.Center.Lat).
		Float64("lon", h.opts.Center.Lon).
		Int("zoom", h.opts.Zoom).
		Msg("map initialized")
	return h.current, nil
}

// Current returns the live map without creating one.
func (h *Host) Current() (*Map, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.current != nil
}

// Unmount tears the live map down. Without one it does nothing.
func (h *Host) Unmount() {
	h.mu.Lock()
	m := h.current
	h.current = nil
	h.mu.Unlock()

	if m == nil {
		return
	}
	m.close()
	h.opts.Logger.Info().Msg("map cleaned up")
}

// Use mounts the map, runs fn with it and always unmounts afterwards.
func (h *Host) Use(fn func(*Map) error) error {
	m, err := h.Mount()
	if err != nil {
		return err
	}
	defer h.Unmount()
	return fn(m)
}
