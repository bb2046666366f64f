package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"credanchor/internal/attestation"
	attstore "credanchor/internal/attestation/store"
	"credanchor/internal/audit"
	"credanchor/internal/credential/canonical"
	"credanchor/internal/credential/models"
	credstore "credanchor/internal/credential/store"
	"credanchor/internal/institution"
	"credanchor/internal/ledger"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// VerifierSuite walks the verdict precedence order: lookup, integrity,
// commitment, attestation, trust. Each test arranges the pipeline up to the
// step under test and checks both the status and the exact message.
type VerifierSuite struct {
	suite.Suite
	credentials  *credstore.InMemoryStore
	attestations *attstore.InMemoryStore
	ledgerClient *ledger.InMemoryClient
	trust        *institution.InMemoryStore
	auditEvents  *audit.InMemoryStore
	service      *Service

	owner domain.DID
	cred  models.StoredCredential
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.credentials = credstore.NewInMemoryStore()
	s.attestations = attstore.NewInMemoryStore()
	s.ledgerClient = ledger.NewInMemoryClient()
	s.trust = institution.NewInMemoryStore()
	s.auditEvents = audit.NewInMemoryStore()

	s.service = New(s.credentials, s.attestations, s.ledgerClient, s.trust,
		WithAuditor(audit.NewPublisher(s.auditEvents)),
	)

	s.owner = domain.DID("did:anchor:wallet123")
	s.cred = s.storeCredential(s.owner)
}

// storeCredential persists a well-formed credential whose stored hash matches
// its canonical hash.
func (s *VerifierSuite) storeCredential(owner domain.DID) models.StoredCredential {
	record := models.CredentialRecord{
		ID:        domain.NewCredentialID(),
		OwnerDID:  owner,
		Type:      models.TypeEducation,
		Issuer:    "MIT University",
		Title:     "Bachelor of",
		StartDate: "2016",
		EndDate:   "2020",
	}
	hash, err := canonical.Hash(record)
	s.Require().NoError(err)

	cred := models.StoredCredential{
		CredentialRecord: record,
		Hash:             hash,
		CreatedAt:        time.Now().UTC(),
	}
	s.Require().NoError(s.credentials.Save(context.Background(), cred))
	return cred
}

func (s *VerifierSuite) anchor(id domain.CredentialID) {
	s.ledgerClient.Anchor(ledger.DeriveCommitmentAddress(id))
}

func (s *VerifierSuite) attest(id domain.CredentialID, key domain.InstitutionKey) attestation.Attestation {
	att := attestation.Attestation{
		CredentialID:   id,
		CredentialHash: s.cred.Hash,
		InstitutionKey: key,
		Signature:      "sig",
		Timestamp:      time.Now().UTC(),
	}
	s.Require().NoError(s.attestations.Upsert(context.Background(), att))
	return att
}

func (s *VerifierSuite) registerInstitution(key domain.InstitutionKey, whitelisted bool) {
	s.Require().NoError(s.trust.Save(context.Background(), institution.Institution{
		Key:         key,
		Name:        "MIT University",
		Whitelisted: whitelisted,
		CreatedAt:   time.Now().UTC(),
	}))
}

func (s *VerifierSuite) TestUnknownCredentialIsNotVerified() {
	verdict, err := s.service.Verify(context.Background(), domain.NewCredentialID(), s.owner)

	s.Require().NoError(err)
	s.Equal(StatusNotVerified, verdict.Status)
	s.Equal("credential not found", verdict.Message)
	s.Nil(verdict.Credential)
}

func (s *VerifierSuite) TestCredentialOwnedBySomeoneElseIsNotVerified() {
	verdict, err := s.service.Verify(context.Background(), s.cred.ID, domain.DID("did:anchor:other"))

	s.Require().NoError(err)
	s.Equal(StatusNotVerified, verdict.Status)
	s.Equal("credential not found", verdict.Message)
}

func (s *VerifierSuite) TestTamperedCredentialIsNotVerified() {
	s.credentials.Corrupt(s.cred.ID, "deadbeef")
	// Even a fully anchored and attested credential must fail here: integrity
	// is checked before the ledger is ever consulted.
	s.anchor(s.cred.ID)
	key := domain.InstitutionKey("inst-pubkey-1")
	s.registerInstitution(key, true)
	s.attest(s.cred.ID, key)

	verdict, err := s.service.Verify(context.Background(), s.cred.ID, s.owner)

	s.Require().NoError(err)
	s.Equal(StatusNotVerified, verdict.Status)
	s.Equal("credential hash mismatch - possible tampering", verdict.Message)

	events := s.auditEvents.ByAction(audit.ActionIntegrityMismatch)
	s.Require().Len(events, 1)
	s.Equal(s.cred.ID, events[0].CredentialID)
	s.Equal(s.owner, events[0].OwnerDID)
}

func (s *VerifierSuite) TestLedgerFailureDegradesToNoAttestation() {
	s.ledgerClient.Fail(dErrors.New(dErrors.CodeLedgerUnavailable, "ledger request failed"))

	verdict, err := s.service.Verify(context.Background(), s.cred.ID, s.owner)

	s.Require().NoError(err, "a ledger fault must degrade, not error")
	s.Equal(StatusNoAttestation, verdict.Status)
	s.Equal("could not fetch on-chain data", verdict.Message)
	s.Require().NotNil(verdict.Credential)
	s.Equal(s.cred.ID, verdict.Credential.ID)
}

func (s *VerifierSuite) TestMissingCommitmentYieldsNoAttestation() {
	verdict, err := s.service.Verify(context.Background(), s.cred.ID, s.owner)

	s.Require().NoError(err)
	s.Equal(StatusNoAttestation, verdict.Status)
	s.Equal("credential commitment not found on-chain", verdict.Message)
	s.False(verdict.OnChain)
}

func (s *VerifierSuite) TestAnchoredButUnattestedYieldsNoAttestation() {
	s.anchor(s.cred.ID)

	verdict, err := s.service.Verify(context.Background(), s.cred.ID, s.owner)

	s.Require().NoError(err)
	s.Equal(StatusNoAttestation, verdict.Status)
	s.Equal("credential exists on-chain but has no institutional attestation", verdict.Message)
	s.True(verdict.OnChain)
	s.Require().NotNil(verdict.Credential)
}

func (s *VerifierSuite) TestAttestationFromUnknownInstitutionIsNotVerified() {
	s.anchor(s.cred.ID)
	s.attest(s.cred.ID, domain.InstitutionKey("never-registered"))

	verdict, err := s.service.Verify(context.Background(), s.cred.ID, s.owner)

	s.Require().NoError(err)
	s.Equal(StatusNotVerified, verdict.Status)
	s.Equal("attestation from non-whitelisted institution", verdict.Message)
}

func (s *VerifierSuite) TestAttestationFromDelistedInstitutionIsNotVerified() {
	key := domain.InstitutionKey("inst-pubkey-1")
	s.registerInstitution(key, false)
	s.anchor(s.cred.ID)
	s.attest(s.cred.ID, key)

	verdict, err := s.service.Verify(context.Background(), s.cred.ID, s.owner)

	s.Require().NoError(err)
	s.Equal(StatusNotVerified, verdict.Status)
	s.Equal("attestation from non-whitelisted institution", verdict.Message)
}

func (s *VerifierSuite) TestFullyAttestedCredentialIsVerified() {
	key := domain.InstitutionKey("inst-pubkey-1")
	s.registerInstitution(key, true)
	s.anchor(s.cred.ID)
	att := s.attest(s.cred.ID, key)

	verdict, err := s.service.Verify(context.Background(), s.cred.ID, s.owner)

	s.Require().NoError(err)
	s.Equal(StatusVerified, verdict.Status)
	s.Equal("credential verified with institutional attestation", verdict.Message)
	s.Require().NotNil(verdict.Credential)
	s.Equal(s.cred.ID, verdict.Credential.ID)
	s.Require().NotNil(verdict.Attestation)
	s.Equal("MIT University", verdict.Attestation.InstitutionName)
	s.WithinDuration(att.Timestamp, verdict.Attestation.Timestamp, time.Second)
}

func (s *VerifierSuite) TestVerifyRejectsMissingInputs() {
	_, err := s.service.Verify(context.Background(), domain.CredentialID{}, s.owner)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.Verify(context.Background(), s.cred.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
