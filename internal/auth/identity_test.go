package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPIdentityVerifierLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/accounts/uid-77", r.URL.Path)
		require.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(Identity{UID: "uid-77", Email: "o@example.com", Phone: "9000000001"})
	}))
	defer server.Close()

	verifier, err := NewHTTPIdentityVerifier(server.URL, "key-1", nil)
	require.NoError(t, err)

	identity, err := verifier.Lookup(context.Background(), "uid-77")
	require.NoError(t, err)
	require.Equal(t, "uid-77", identity.UID)
	require.Equal(t, "o@example.com", identity.Email)
}

func TestHTTPIdentityVerifierUnknownUID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	verifier, err := NewHTTPIdentityVerifier(server.URL, "", nil)
	require.NoError(t, err)

	_, err = verifier.Lookup(context.Background(), "nobody")
	require.True(t, errors.Is(err, ErrUnknownIdentity))
}

func TestStaticIdentityVerifier(t *testing.T) {
	verifier := StaticIdentityVerifier{}

	identity, err := verifier.Lookup(context.Background(), "uid-1")
	require.NoError(t, err)
	require.Equal(t, "uid-1", identity.UID)

	_, err = verifier.Lookup(context.Background(), "")
	require.True(t, errors.Is(err, ErrUnknownIdentity))
}
