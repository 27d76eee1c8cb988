package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const uidaiRequestTimeout = 8 * time.Second

// UIDAIConfig configures the primary verification provider.
type UIDAIConfig struct {
	BaseURL    string
	LicenseKey string
	// Mock short-circuits outbound calls and approves every structurally
	// valid number. Used in development and in environments without UIDAI
	// credentials.
	Mock bool
}

// UIDAIClient talks to the UIDAI verification API using a license key.
type UIDAIClient struct {
	cfg    UIDAIConfig
	client *http.Client
	now    func() time.Time
}

// UIDAIOption customises the client.
type UIDAIOption func(*UIDAIClient)

// WithUIDAIHTTPClient injects a custom HTTP client, primarily for testing.
func WithUIDAIHTTPClient(client *http.Client) UIDAIOption {
	return func(c *UIDAIClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithUIDAIClock overrides the clock used for mock reference ids.
func WithUIDAIClock(now func() time.Time) UIDAIOption {
	return func(c *UIDAIClient) {
		if now != nil {
			c.now = now
		}
	}
}

// NewUIDAIClient constructs the primary provider client.
func NewUIDAIClient(cfg UIDAIConfig, opts ...UIDAIOption) (*UIDAIClient, error) {
	if !cfg.Mock && cfg.LicenseKey == "" {
		return nil, errors.New("uidai client: license key is required outside mock mode")
	}

	client := &UIDAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: uidaiRequestTimeout},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies the provider in audit records.
func (c *UIDAIClient) Name() string { return "uidai" }

// Verify submits the number to the UIDAI API. The supporting document URL is
// forwarded when present.
func (c *UIDAIClient) Verify(ctx context.Context, req Request) (*Result, error) {
	if c.cfg.Mock {
		return &Result{ReferenceID: fmt.Sprintf("UIDAI_%d", c.now().UnixMilli())}, nil
	}

	body, err := json.Marshal(map[string]string{
		"aadhar_number": req.Number,
		"document_url":  req.Document,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/verify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.LicenseKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrProviderAuth
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("uidai client: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Verified    bool   `json:"verified"`
		ReferenceID string `json:"reference_id"`
		Reason      string `json:"reason"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("uidai client: decode response: %w", err)
	}

	if !payload.Verified {
		if payload.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrProviderRejected, payload.Reason)
		}
		return nil, ErrProviderRejected
	}

	ref := payload.ReferenceID
	if ref == "" {
		ref = fmt.Sprintf("UIDAI_%d", c.now().UnixMilli())
	}
	return &Result{ReferenceID: ref}, nil
}
