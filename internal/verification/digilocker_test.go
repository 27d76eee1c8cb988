package verification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samudrayan/backend/internal/cache"
	"github.com/samudrayan/backend/internal/database/testutil"
)

func TestDigiLockerMockMode(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client, err := NewDigiLockerClient(DigiLockerConfig{Mock: true}, nil,
		WithDigiLockerClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	result, err := client.Verify(context.Background(), Request{Number: "234567890124"})
	require.NoError(t, err)
	require.Equal(t, "DL_1772366400000", result.ReferenceID)
}

func TestDigiLockerRequiresCredentials(t *testing.T) {
	_, err := NewDigiLockerClient(DigiLockerConfig{}, nil)
	require.Error(t, err)
}

func TestDigiLockerVerifyWithTokenCaching(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		require.Equal(t, "client-1", r.PostForm.Get("client_id"))
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "token-abc", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/aadhaar/verify", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"verified": true, "reference_id": "DL_REF_9"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)

	client, err := NewDigiLockerClient(DigiLockerConfig{
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	}, store)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result, err := client.Verify(context.Background(), Request{Number: "234567890124"})
		require.NoError(t, err)
		require.Equal(t, "DL_REF_9", result.ReferenceID)
	}

	// The token exchange only happens once; later calls hit the cache.
	require.Equal(t, 1, tokenCalls)
}

func TestDigiLockerTokenFailureIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewDigiLockerClient(DigiLockerConfig{
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	}, nil)
	require.NoError(t, err)

	_, err = client.Verify(context.Background(), Request{Number: "234567890124"})
	require.True(t, errors.Is(err, ErrProviderAuth))
}

func TestDigiLockerDropsRevokedToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "verification:digilocker:token", []byte("stale-token"), time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewDigiLockerClient(DigiLockerConfig{
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	}, store)
	require.NoError(t, err)

	_, err = client.Verify(ctx, Request{Number: "234567890124"})
	require.True(t, errors.Is(err, ErrProviderAuth))

	_, ok, err := store.Get(ctx, "verification:digilocker:token")
	require.NoError(t, err)
	require.False(t, ok, "expected the revoked token to be evicted")
}
