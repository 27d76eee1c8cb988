package verification

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/samudrayan/backend/pkg/crypto"
)

const codecSaltLength = 16

// ErrDecrypt is returned when a stored Aadhar payload cannot be decrypted.
// It must never reach API responses; callers log it and treat the value as
// unreadable.
var ErrDecrypt = errors.New("verification: cannot decrypt stored identity number")

// Codec encrypts Aadhar numbers for at-rest storage. The AES-256-GCM key is
// derived from the configured master secret with Argon2id, so a tampered or
// foreign ciphertext fails authentication instead of decoding to garbage.
type Codec struct {
	key    []byte
	salt   []byte
	params crypto.Argon2Parameters
}

type codecConfig struct {
	params crypto.Argon2Parameters
	salt   []byte
}

// CodecOption configures the codec.
type CodecOption func(*codecConfig)

// WithSalt overrides the salt used for Argon2 key derivation.
func WithSalt(salt []byte) CodecOption {
	cp := make([]byte, len(salt))
	copy(cp, salt)
	return func(cfg *codecConfig) {
		cfg.salt = cp
	}
}

// WithArgon2Parameters overrides the Argon2 cost parameters.
func WithArgon2Parameters(params crypto.Argon2Parameters) CodecOption {
	return func(cfg *codecConfig) {
		cfg.params = params
	}
}

// NewCodec derives the encryption key from the provided master secret.
func NewCodec(masterSecret []byte, opts ...CodecOption) (*Codec, error) {
	if len(masterSecret) == 0 {
		return nil, errors.New("verification codec: master secret is required")
	}

	cfg := codecConfig{
		params: crypto.DefaultArgon2Params(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if len(cfg.salt) == 0 {
		sum := sha256.Sum256(masterSecret)
		cfg.salt = sum[:codecSaltLength]
	} else if len(cfg.salt) < codecSaltLength {
		return nil, fmt.Errorf("verification codec: salt must be at least %d bytes (got %d)", codecSaltLength, len(cfg.salt))
	}

	derived, err := crypto.DeriveKeyArgon2id(masterSecret, cfg.salt, cfg.params)
	if err != nil {
		return nil, fmt.Errorf("verification codec: derive key: %w", err)
	}

	return &Codec{
		key:    derived,
		salt:   append([]byte(nil), cfg.salt...),
		params: cfg.params,
	}, nil
}

// Encrypt seals an Aadhar number into a self-contained base64 payload.
func (c *Codec) Encrypt(number string) (string, error) {
	if len(c.key) == 0 {
		return "", errors.New("verification codec: key is not initialised")
	}
	return crypto.Encrypt([]byte(number), c.key)
}

// Decrypt opens a stored payload. Any failure, wrong key, truncation or
// tampering, surfaces as ErrDecrypt.
func (c *Codec) Decrypt(payload string) (string, error) {
	if len(c.key) == 0 {
		return "", errors.New("verification codec: key is not initialised")
	}

	plaintext, err := crypto.Decrypt(payload, c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}
