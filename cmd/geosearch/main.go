package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/geolocator/backend/internal/config"
	"github.com/geolocator/backend/internal/geo"
	"github.com/geolocator/backend/internal/geocode"
	"github.com/geolocator/backend/internal/mapview"
	"github.com/geolocator/backend/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the UI, so logs go to a file or nowhere
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := zerolog.New(out).Level(level).With().Timestamp().Str("service", "geosearch").Logger()

	model, err := ui.NewModel(ui.Options{
		Suggester:     geocode.ProxyClient{BaseURL: cfg.ProxyURL},
		DebounceDelay: cfg.DebounceDelay,
		Map: mapview.Options{
			Center: geo.Point{Lat: cfg.Map.DefaultLat, Lon: cfg.Map.DefaultLon},
			Zoom:   cfg.Map.DefaultZoom,
			Tiles: mapview.TileLayer{
				URL:         cfg.Map.TileURL,
				Attribution: cfg.Map.TileAttribution,
				MaxZoom:     cfg.Map.TileMaxZoom,
			},
			Logger: logger,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("program error")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
