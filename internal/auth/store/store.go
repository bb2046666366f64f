package store

import (
	"context"
	"time"

	dErrors "credanchor/pkg/domain-errors"
)

// ErrNoChallenge reports a login attempt with no live challenge for the wallet.
var ErrNoChallenge = dErrors.New(dErrors.CodeUnauthorized, "no active challenge for wallet")

// NonceStore holds single-use login challenges with a TTL. Consume must be
// atomic so a nonce can never be redeemed twice.
type NonceStore interface {
	Put(ctx context.Context, wallet, nonce string, ttl time.Duration) error
	Consume(ctx context.Context, wallet string) (string, error)
}
