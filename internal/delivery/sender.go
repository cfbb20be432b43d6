// Package delivery posts request-for-payment-address payloads to the
// requester's endpoint.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/metrics"
)

// HTTPSender delivers the address payload in a single fire-and-forget
// POST. Transport failures are reported to the caller, never retried.
type HTTPSender struct {
	client *http.Client
}

func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{client: &http.Client{Timeout: timeout}}
}

// Send serializes the payload map as JSON and POSTs it to postURL. The
// endpoint contract predates JSON content negotiation, so the body is
// sent as text/html.
func (s *HTTPSender) Send(ctx context.Context, postURL string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build payload request: %w", err)
	}
	req.Header.Set("Content-Type", "text/html")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.PayloadDeliveryLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PayloadDeliveriesTotal.WithLabelValues("transport_error").Inc()
		return fmt.Errorf("deliver payload: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		metrics.PayloadDeliveriesTotal.WithLabelValues("http_error").Inc()
		return fmt.Errorf("deliver payload: endpoint returned %s", resp.Status)
	}
	metrics.PayloadDeliveriesTotal.WithLabelValues("ok").Inc()
	return nil
}
