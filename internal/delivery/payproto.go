package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/engine"
)

// paymentRequest is the JSON payment request served at a
// payment-protocol URL.
type paymentRequest struct {
	Memo      string `json:"memo"`
	PaymentID string `json:"paymentId"`
	Outputs   []struct {
		Address string `json:"address"`
		Amount  string `json:"amount"`
	} `json:"outputs"`
}

// PaymentProtocolClient fetches spend parameters from a
// payment-protocol URL.
type PaymentProtocolClient struct {
	client *http.Client
}

func NewPaymentProtocolClient(timeout time.Duration) *PaymentProtocolClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &PaymentProtocolClient{client: &http.Client{Timeout: timeout}}
}

// Resolve fetches the payment request behind parsed.PaymentProtocolURL
// and maps it onto spend parameters. A request with no outputs yields
// nil spend info; the caller skips navigation.
func (c *PaymentProtocolClient) Resolve(ctx context.Context, parsed *engine.ParsedURI, wallet engine.Wallet) (*engine.SpendInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.PaymentProtocolURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	req.Header.Set("Accept", "application/payment-request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch payment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch payment request: endpoint returned %s", resp.Status)
	}

	var pr paymentRequest
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode payment request: %w", err)
	}
	if len(pr.Outputs) == 0 {
		return nil, nil
	}

	targets := make([]engine.SpendTarget, len(pr.Outputs))
	for i, out := range pr.Outputs {
		targets[i] = engine.SpendTarget{
			PublicAddress: out.Address,
			NativeAmount:  out.Amount,
		}
	}

	info := &engine.SpendInfo{
		SpendTargets:     targets,
		UniqueIdentifier: pr.PaymentID,
		LockInputs:       true,
	}
	if len(targets) == 1 {
		info.NativeAmount = targets[0].NativeAmount
	}
	if pr.Memo != "" {
		info.Metadata = &engine.URIMetadata{Notes: pr.Memo}
	}
	return info, nil
}
