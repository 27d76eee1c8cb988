package app

import (
	"strings"

	"github.com/samudrayan/backend/internal/verification"
)

// UIDAIClientConfig converts VerificationConfig into UIDAI client parameters.
func (c VerificationConfig) UIDAIClientConfig() verification.UIDAIConfig {
	return verification.UIDAIConfig{
		BaseURL:    strings.TrimSpace(c.UIDAI.BaseURL),
		LicenseKey: strings.TrimSpace(c.UIDAI.LicenseKey),
		Mock:       c.UIDAI.Mock,
	}
}

// DigiLockerClientConfig converts VerificationConfig into DigiLocker client parameters.
func (c VerificationConfig) DigiLockerClientConfig() verification.DigiLockerConfig {
	return verification.DigiLockerConfig{
		BaseURL:      strings.TrimSpace(c.DigiLocker.BaseURL),
		TokenURL:     strings.TrimSpace(c.DigiLocker.TokenURL),
		ClientID:     strings.TrimSpace(c.DigiLocker.ClientID),
		ClientSecret: c.DigiLocker.ClientSecret,
		Mock:         c.DigiLocker.Mock,
	}
}

// DigiLockerConfigured reports whether the fallback provider can be built.
func (c VerificationConfig) DigiLockerConfigured() bool {
	return c.DigiLocker.Mock || strings.TrimSpace(c.DigiLocker.ClientID) != ""
}

// MasterKey decodes the configured master secret into raw key bytes.
func (c VerificationConfig) MasterKey() ([]byte, error) {
	return DecodeKey(c.MasterSecret)
}
