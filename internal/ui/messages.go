package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/geolocator/backend/internal/search"
)

const frameInterval = 100 * time.Millisecond

// debouncedMsg carries a query that has been stable for the debounce delay
type debouncedMsg struct {
	query string
}

// suggestionsMsg is sent when a suggestion fetch finishes
type suggestionsMsg struct {
	result search.FetchResult
}

// frameMsg redraws the map while a flight is in progress
type frameMsg time.Time

// waitForDebounced blocks until the debouncer settles on a value
func waitForDebounced(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return debouncedMsg{query: <-ch}
	}
}

func fetchSuggestions(s search.Suggester, req search.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return suggestionsMsg{result: search.Fetch(ctx, s, req)}
	}
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
