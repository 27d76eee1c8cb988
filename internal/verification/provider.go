package verification

import (
	"context"
	"errors"
)

// Provider errors. Auth failures are internal detail; the state machine
// treats them as an ordinary provider failure and moves on to the fallback.
var (
	ErrProviderAuth        = errors.New("verification: provider authentication failed")
	ErrProviderUnavailable = errors.New("verification: provider unavailable")
	ErrProviderRejected    = errors.New("verification: provider rejected the identity")
)

// Request carries the identity details submitted to a provider. Document is
// an optional supporting-document URL and is only forwarded to providers that
// accept one.
type Request struct {
	Number   string
	Document string
}

// Result is a successful provider verification.
type Result struct {
	ReferenceID string
}

// Provider verifies an Aadhar number against an external authority.
type Provider interface {
	Name() string
	Verify(ctx context.Context, req Request) (*Result, error)
}
