// Package ledger talks to the immutable commitment log. As far as this system
// is concerned a commitment is a binary fact: the derived address either
// exists on the ledger or it does not.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"credanchor/pkg/domain"
)

// commitmentNamespace seeds commitment address derivation. It must never
// change: already-anchored credentials would become unfindable.
const commitmentNamespace = "credential"

// Address is a derived commitment address on the ledger.
type Address string

func (a Address) String() string { return string(a) }

// DeriveCommitmentAddress derives the ledger address for a credential's
// commitment. It is a pure function of the credential ID and the fixed
// namespace, and it is the single derivation used by both the publish path
// and the verifier.
func DeriveCommitmentAddress(id domain.CredentialID) Address {
	sum := sha256.Sum256([]byte(commitmentNamespace + id.String()))
	return Address(hex.EncodeToString(sum[:]))
}

// Client reads the commitment ledger. Implementations wrap transient
// transport failures in CodeLedgerUnavailable so callers can degrade instead
// of failing.
type Client interface {
	HasCommitment(ctx context.Context, addr Address) (bool, error)
}
