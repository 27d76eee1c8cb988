package verification

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samudrayan/backend/pkg/crypto"
)

func fastParams() crypto.Argon2Parameters {
	return crypto.Argon2Parameters{Time: 1, Memory: 64, Threads: 1, KeyLength: 32}
}

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	codec, err := NewCodec([]byte(secret), WithArgon2Parameters(fastParams()))
	require.NoError(t, err)
	return codec
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t, "master-secret")

	payload, err := codec.Encrypt("234567890124")
	require.NoError(t, err)
	require.NotContains(t, payload, "234567890124")

	number, err := codec.Decrypt(payload)
	require.NoError(t, err)
	require.Equal(t, "234567890124", number)
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	codec := newTestCodec(t, "master-secret")
	other := newTestCodec(t, "different-secret")

	payload, err := codec.Encrypt("234567890124")
	require.NoError(t, err)

	_, err = other.Decrypt(payload)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDecrypt))
}

func TestCodecRejectsTamperedPayload(t *testing.T) {
	codec := newTestCodec(t, "master-secret")

	payload, err := codec.Encrypt("234567890124")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = codec.Decrypt(tampered)
	require.True(t, errors.Is(err, ErrDecrypt))
}

func TestCodecDeterministicKeyDerivation(t *testing.T) {
	a := newTestCodec(t, "master-secret")
	b := newTestCodec(t, "master-secret")

	payload, err := a.Encrypt("234567890124")
	require.NoError(t, err)

	number, err := b.Decrypt(payload)
	require.NoError(t, err)
	require.Equal(t, "234567890124", number)
}

func TestNewCodecValidation(t *testing.T) {
	_, err := NewCodec(nil)
	require.Error(t, err)

	_, err = NewCodec([]byte("secret"), WithSalt([]byte("short")), WithArgon2Parameters(fastParams()))
	require.Error(t, err)
}
