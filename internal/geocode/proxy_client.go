package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// defaultProxyClient has no timeout of its own; callers bound each
// request with a context deadline.
var defaultProxyClient = &http.Client{}

// ProxyClient talks to the geoapihide endpoint the way the page does.
type ProxyClient struct {
	BaseURL string
	Client  *http.Client
}

// Suggest fetches autocomplete candidates for query through the proxy.
func (p ProxyClient) Suggest(ctx context.Context, query string) ([]Feature, error) {
	client := p.Client
	if client == nil {
		client = defaultProxyClient
	}
	endpoint := strings.TrimRight(p.BaseURL, "/") + "/api/geoapihide?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb ErrorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			return nil, fmt.Errorf("proxy %s: %s", resp.Status, eb.Error)
		}
		return nil, fmt.Errorf("proxy http error: %s", resp.Status)
	}

	fc, err := ParseFeatureCollection(body)
	if err != nil {
		return nil, err
	}
	return fc.Features, nil
}
