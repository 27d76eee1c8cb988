package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samudrayan/backend/internal/cache"
)

const (
	digilockerRequestTimeout = 8 * time.Second
	digilockerTokenKey       = "verification:digilocker:token"
	digilockerTokenSlack     = time.Minute
)

// DigiLockerConfig configures the fallback verification provider.
type DigiLockerConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Mock         bool
}

// DigiLockerClient verifies numbers through DigiLocker. Access tokens come
// from a client-credentials exchange and are cached until shortly before
// expiry.
type DigiLockerClient struct {
	cfg    DigiLockerConfig
	tokens cache.Store
	client *http.Client
	now    func() time.Time
}

// DigiLockerOption customises the client.
type DigiLockerOption func(*DigiLockerClient)

// WithDigiLockerHTTPClient injects a custom HTTP client, primarily for testing.
func WithDigiLockerHTTPClient(client *http.Client) DigiLockerOption {
	return func(c *DigiLockerClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithDigiLockerClock overrides the clock used for mock reference ids.
func WithDigiLockerClock(now func() time.Time) DigiLockerOption {
	return func(c *DigiLockerClient) {
		if now != nil {
			c.now = now
		}
	}
}

// NewDigiLockerClient constructs the fallback provider client. The token
// cache may be nil, in which case every call performs a fresh exchange.
func NewDigiLockerClient(cfg DigiLockerConfig, tokens cache.Store, opts ...DigiLockerOption) (*DigiLockerClient, error) {
	if !cfg.Mock && (cfg.ClientID == "" || cfg.ClientSecret == "") {
		return nil, errors.New("digilocker client: client credentials are required outside mock mode")
	}

	client := &DigiLockerClient{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{Timeout: digilockerRequestTimeout},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies the provider in audit records.
func (c *DigiLockerClient) Name() string { return "digilocker" }

// Verify checks the number against DigiLocker's identity records.
func (c *DigiLockerClient) Verify(ctx context.Context, req Request) (*Result, error) {
	if c.cfg.Mock {
		return &Result{ReferenceID: fmt.Sprintf("DL_%d", c.now().UnixMilli())}, nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"aadhar_number": req.Number})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/aadhaar/verify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Token may have been revoked server-side; drop the cached copy so
		// the next attempt re-authenticates.
		if c.tokens != nil {
			_ = c.tokens.Delete(ctx, digilockerTokenKey)
		}
		return nil, ErrProviderAuth
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("digilocker client: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Verified    bool   `json:"verified"`
		ReferenceID string `json:"reference_id"`
		Reason      string `json:"reason"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("digilocker client: decode response: %w", err)
	}

	if !payload.Verified {
		if payload.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrProviderRejected, payload.Reason)
		}
		return nil, ErrProviderRejected
	}

	ref := payload.ReferenceID
	if ref == "" {
		ref = fmt.Sprintf("DL_%d", c.now().UnixMilli())
	}
	return &Result{ReferenceID: ref}, nil
}

func (c *DigiLockerClient) accessToken(ctx context.Context) (string, error) {
	if c.tokens != nil {
		if cached, ok, err := c.tokens.Get(ctx, digilockerTokenKey); err == nil && ok && len(cached) > 0 {
			return string(cached), nil
		}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrProviderAuth, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", ErrProviderAuth, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrProviderAuth)
	}

	if c.tokens != nil && payload.ExpiresIn > 0 {
		ttl := time.Duration(payload.ExpiresIn)*time.Second - digilockerTokenSlack
		if ttl > 0 {
			_ = c.tokens.Set(ctx, digilockerTokenKey, []byte(payload.AccessToken), ttl)
		}
	}

	return payload.AccessToken, nil
}
