// Package auth implements the wallet challenge/login flow. Signature
// verification against the wallet's public key is performed by the external
// signer; this service owns nonce issuance, single-use redemption, and
// session tokens.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"time"

	"credanchor/internal/auth/store"
	"credanchor/internal/platform/privacy"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// didMethodPrefix derives the identity handle from a wallet address. The
// derivation itself is a collaborator concern; this prefix only labels the
// handle namespace used throughout the service.
const didMethodPrefix = "did:anchor:"

// Challenge is a nonce the wallet must sign to authenticate.
type Challenge struct {
	Nonce   string `json:"nonce"`
	Message string `json:"message"`
}

// Session is the result of a successful login.
type Session struct {
	Token string     `json:"token"`
	DID   domain.DID `json:"did"`
}

// Service issues challenges and redeems them for session tokens.
type Service struct {
	nonces       store.NonceStore
	tokens       *TokenService
	challengeTTL time.Duration
	logger       *slog.Logger
}

// New creates an auth service.
func New(nonces store.NonceStore, tokens *TokenService, challengeTTL time.Duration, logger *slog.Logger) *Service {
	if nonces == nil || tokens == nil {
		panic("auth service: nonce store and token service are required")
	}
	return &Service{nonces: nonces, tokens: tokens, challengeTTL: challengeTTL, logger: logger}
}

// Challenge issues a fresh single-use nonce for the wallet. Issuing a new
// challenge invalidates any previous one for the same wallet.
func (s *Service) Challenge(ctx context.Context, wallet string) (Challenge, error) {
	if wallet == "" {
		return Challenge{}, dErrors.New(dErrors.CodeInvalidInput, "wallet address is required")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return Challenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "generate nonce")
	}
	nonce := base64.StdEncoding.EncodeToString(raw)

	if err := s.nonces.Put(ctx, wallet, nonce, s.challengeTTL); err != nil {
		return Challenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "store nonce")
	}

	return Challenge{
		Nonce:   nonce,
		Message: "Sign this message to authenticate: " + nonce,
	}, nil
}

// Login redeems a signed challenge for a session token. The nonce is consumed
// whether or not it matches; a mismatch forces a fresh challenge.
func (s *Service) Login(ctx context.Context, wallet, nonce, signature string) (Session, error) {
	if wallet == "" || nonce == "" || signature == "" {
		return Session{}, dErrors.New(dErrors.CodeInvalidInput, "wallet address, nonce, and signature are required")
	}

	stored, err := s.nonces.Consume(ctx, wallet)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return Session{}, err
		}
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "consume nonce")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(nonce)) != 1 {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "login with stale or mismatched nonce",
				"wallet", privacy.MaskWallet(wallet))
		}
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "challenge mismatch")
	}

	did := domain.DID(didMethodPrefix + wallet)
	token, err := s.tokens.Generate(did)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, DID: did}, nil
}
