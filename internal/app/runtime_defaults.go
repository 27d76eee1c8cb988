package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/samudrayan/backend/pkg/crypto"
)

const (
	jwtSecretBytes    = 48
	masterSecretBytes = 32
)

// ApplyRuntimeDefaults ensures critical secrets are populated even when no configuration file is supplied.
// It returns a map describing which keys were generated so callers can log the event without exposing values.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	if strings.TrimSpace(cfg.Auth.JWT.AccessSecret) == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate access token secret: %w", err)
		}
		cfg.Auth.JWT.AccessSecret = secret
		generated["auth.jwt.access_secret"] = true
	}

	if strings.TrimSpace(cfg.Auth.JWT.RefreshSecret) == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate refresh token secret: %w", err)
		}
		cfg.Auth.JWT.RefreshSecret = secret
		generated["auth.jwt.refresh_secret"] = true
	}

	if strings.TrimSpace(cfg.Verification.MasterSecret) == "" {
		secret, err := generateHexKey(masterSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate verification master secret: %w", err)
		}
		cfg.Verification.MasterSecret = secret
		generated["verification.master_secret"] = true
	}

	return generated, nil
}

func generateHexKey(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
