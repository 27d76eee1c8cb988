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
)

func TestUIDAIMockMode(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client, err := NewUIDAIClient(UIDAIConfig{Mock: true},
		WithUIDAIClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	result, err := client.Verify(context.Background(), Request{Number: "234567890124"})
	require.NoError(t, err)
	require.Equal(t, "UIDAI_1772366400000", result.ReferenceID)
}

func TestUIDAIRequiresLicenseKey(t *testing.T) {
	_, err := NewUIDAIClient(UIDAIConfig{})
	require.Error(t, err)
}

func TestUIDAIVerify(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"verified":     true,
			"reference_id": "UIDAI_REF_77",
		})
	}))
	defer server.Close()

	client, err := NewUIDAIClient(UIDAIConfig{BaseURL: server.URL, LicenseKey: "license-1"})
	require.NoError(t, err)

	result, err := client.Verify(context.Background(), Request{Number: "234567890124", Document: "https://cdn/doc.pdf"})
	require.NoError(t, err)
	require.Equal(t, "UIDAI_REF_77", result.ReferenceID)
	require.Equal(t, "Bearer license-1", gotAuth)
	require.Equal(t, "234567890124", gotBody["aadhar_number"])
	require.Equal(t, "https://cdn/doc.pdf", gotBody["document_url"])
}

func TestUIDAIVerifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"verified": false, "reason": "no matching record"})
	}))
	defer server.Close()

	client, err := NewUIDAIClient(UIDAIConfig{BaseURL: server.URL, LicenseKey: "license-1"})
	require.NoError(t, err)

	_, err = client.Verify(context.Background(), Request{Number: "234567890124"})
	require.True(t, errors.Is(err, ErrProviderRejected))
	require.Contains(t, err.Error(), "no matching record")
}

func TestUIDAIVerifyStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrProviderAuth},
		{http.StatusForbidden, ErrProviderAuth},
		{http.StatusBadGateway, ErrProviderUnavailable},
		{http.StatusServiceUnavailable, ErrProviderUnavailable},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		client, err := NewUIDAIClient(UIDAIConfig{BaseURL: server.URL, LicenseKey: "license-1"})
		require.NoError(t, err)

		_, err = client.Verify(context.Background(), Request{Number: "234567890124"})
		require.True(t, errors.Is(err, tc.want), "status %d: got %v", tc.status, err)
		server.Close()
	}
}
