package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUnknownIdentity is returned when the external identity provider has no
// account for the supplied UID.
var ErrUnknownIdentity = errors.New("auth: unknown identity")

// Identity is the provider's view of an account.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// IdentityVerifier resolves a provider UID to the account it belongs to.
// Registration and login both verify the UID before touching local state.
type IdentityVerifier interface {
	Lookup(ctx context.Context, uid string) (*Identity, error)
}

// HTTPIdentityVerifier talks to the identity provider's admin API.
type HTTPIdentityVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPIdentityVerifier builds a verifier against the given provider API.
func NewHTTPIdentityVerifier(baseURL, apiKey string, client *http.Client) (*HTTPIdentityVerifier, error) {
	if baseURL == "" {
		return nil, errors.New("auth: identity provider base url is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPIdentityVerifier{baseURL: baseURL, apiKey: apiKey, client: client}, nil
}

// Lookup fetches the account record for a UID.
func (v *HTTPIdentityVerifier) Lookup(ctx context.Context, uid string) (*Identity, error) {
	if uid == "" {
		return nil, ErrUnknownIdentity
	}

	endpoint := fmt.Sprintf("%s/v1/accounts/%s", v.baseURL, url.PathEscape(uid))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: identity lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUnknownIdentity
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("auth: identity lookup returned status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&identity); err != nil {
		return nil, fmt.Errorf("auth: decode identity: %w", err)
	}
	if identity.UID == "" {
		identity.UID = uid
	}
	return &identity, nil
}

// StaticIdentityVerifier accepts every UID as-is. Used in development and in
// tests where the identity provider is out of scope.
type StaticIdentityVerifier struct{}

// Lookup trusts the caller-supplied UID.
func (StaticIdentityVerifier) Lookup(_ context.Context, uid string) (*Identity, error) {
	if uid == "" {
		return nil, ErrUnknownIdentity
	}
	return &Identity{UID: uid}, nil
}
