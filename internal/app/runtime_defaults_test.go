package app

import (
	"strings"
	"testing"
)

func TestApplyRuntimeDefaultsGeneratesMissingSecrets(t *testing.T) {
	cfg := &Config{}

	generated, err := ApplyRuntimeDefaults(cfg)
	if err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}

	if cfg.Auth.JWT.AccessSecret == "" {
		t.Fatal("expected access token secret to be generated")
	}
	if cfg.Auth.JWT.RefreshSecret == "" {
		t.Fatal("expected refresh token secret to be generated")
	}
	if cfg.Auth.JWT.AccessSecret == cfg.Auth.JWT.RefreshSecret {
		t.Fatal("expected distinct access and refresh secrets")
	}
	if cfg.Verification.MasterSecret == "" {
		t.Fatal("expected verification master secret to be generated")
	}
	for _, key := range []string{"auth.jwt.access_secret", "auth.jwt.refresh_secret", "verification.master_secret"} {
		if !generated[key] {
			t.Fatalf("expected generated map to include %s: %#v", key, generated)
		}
	}
}

func TestApplyRuntimeDefaultsPreservesExistingSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.JWT.AccessSecret = strings.Repeat("a", 10)
	cfg.Auth.JWT.RefreshSecret = strings.Repeat("b", 10)
	cfg.Verification.MasterSecret = strings.Repeat("c", 10)

	generated, err := ApplyRuntimeDefaults(cfg)
	if err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}

	if len(generated) != 0 {
		t.Fatalf("expected no keys generated, got %#v", generated)
	}
	if cfg.Auth.JWT.AccessSecret != strings.Repeat("a", 10) {
		t.Fatal("expected existing access secret to be preserved")
	}
}

func TestApplyRuntimeDefaultsNilConfig(t *testing.T) {
	_, err := ApplyRuntimeDefaults(nil)
	if err == nil || !strings.Contains(err.Error(), "config is nil") {
		t.Fatalf("expected nil config error, got %v", err)
	}
}

func TestGenerateHexKey(t *testing.T) {
	key, err := generateHexKey(4)
	if err != nil {
		t.Fatalf("generateHexKey returned error: %v", err)
	}
	if len(key) != 8 {
		t.Fatalf("expected encoded length 8, got %d", len(key))
	}

	if _, err = generateHexKey(0); err == nil {
		t.Fatal("expected error when length <= 0")
	}
}
