package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultGeoapifyURL = "https://api.geoapify.com"

// GeoapifyClient calls the provider autocomplete endpoint.
type GeoapifyClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// Autocomplete returns the provider body untouched so callers can relay it.
// It fails with ErrMissingAPIKey before any I/O when no key is set, and with
// an error wrapping ErrUpstream on transport failures or non-2xx answers.
func (g *GeoapifyClient) Autocomplete(ctx context.Context, text string) ([]byte, error) {
	if g.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	base := g.BaseURL
	if base == "" {
		base = defaultGeoapifyURL
	}

	params := url.Values{}
	params.Set("text", text)
	params.Set("apiKey", g.APIKey)
	endpoint := fmt.Sprintf("%s/v1/geocode/autocomplete?%s", base, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: geoapify http error: %s", ErrUpstream, resp.Status)
	}
	return body, nil
}

// redact drops the request URL, and with it the key, from transport errors
// that end up in logs.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

// Configured reports whether a provider key is present.
func (g *GeoapifyClient) Configured() bool {
	return g.APIKey != ""
}
