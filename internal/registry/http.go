package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/metrics"
)

// HTTPResolver queries a registry endpoint:
//
//	GET {base}/pub_address?name=<name>&chain=<chainCode>&token=<currencyCode>
//
// 200 returns {"public_address": "..."}; 404 means the name is not
// registered and maps to ErrInvalidName.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResolver) ResolvePublicAddress(ctx context.Context, name, chainCode, currencyCode string) (string, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("chain", chainCode)
	q.Set("token", currencyCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/pub_address?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build registry request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.RegistryLookupsTotal.WithLabelValues("transport_error").Inc()
		return "", fmt.Errorf("registry lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.RegistryLookupsTotal.WithLabelValues("invalid_name").Inc()
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	case resp.StatusCode != http.StatusOK:
		metrics.RegistryLookupsTotal.WithLabelValues("http_error").Inc()
		return "", fmt.Errorf("registry lookup: endpoint returned %s", resp.Status)
	}

	var body struct {
		PublicAddress string `json:"public_address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.RegistryLookupsTotal.WithLabelValues("decode_error").Inc()
		return "", fmt.Errorf("decode registry response: %w", err)
	}
	if body.PublicAddress == "" {
		metrics.RegistryLookupsTotal.WithLabelValues("invalid_name").Inc()
		return "", fmt.Errorf("%w: empty address for %s", ErrInvalidName, name)
	}

	metrics.RegistryLookupsTotal.WithLabelValues("ok").Inc()
	return body.PublicAddress, nil
}
