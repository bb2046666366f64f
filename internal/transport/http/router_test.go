package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	attservice "credanchor/internal/attestation/service"
	attstore "credanchor/internal/attestation/store"
	"credanchor/internal/auth"
	authstore "credanchor/internal/auth/store"
	credservice "credanchor/internal/credential/service"
	credstore "credanchor/internal/credential/store"
	"credanchor/internal/institution"
	"credanchor/internal/ledger"
	"credanchor/internal/platform/health"
	"credanchor/internal/verification"
	"credanchor/pkg/domain"
)

const testResume = "Education\n" +
	"Bachelor of Science in CS, MIT University, 2016-2020\n" +
	"\n" +
	"Experience\n" +
	"Software Engineer at Acme Company, 2020-2023\n"

// APISuite drives the full credential lifecycle through the HTTP surface:
// challenge, login, upload, publish, request, attest, verify.
type APISuite struct {
	suite.Suite
	server       *httptest.Server
	ledgerClient *ledger.InMemoryClient
	trust        *institution.InMemoryStore
	instKey      domain.InstitutionKey
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	credentials := credstore.NewInMemoryStore()
	attestations := attstore.NewInMemoryStore()
	s.ledgerClient = ledger.NewInMemoryClient()
	s.trust = institution.NewInMemoryStore()
	s.instKey = domain.InstitutionKey("inst-pubkey-1")

	tokens := auth.NewTokenService("test-signing-key", time.Minute)
	authService := auth.New(authstore.NewInMemoryNonceStore(), tokens, time.Minute, logger)

	handler := NewHandler(
		credservice.New(credentials),
		verification.New(credentials, attestations, s.ledgerClient, s.trust),
		attservice.New(attestations, attestations, credentials, s.trust),
		authService,
		tokens,
		logger,
	)
	s.server = httptest.NewServer(NewRouter(handler, health.New(), logger))
	s.T().Cleanup(s.server.Close)
}

func (s *APISuite) postJSON(path, token string, body any) (int, map[string]any) {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)

	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, bytes.NewReader(raw))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *APISuite) getJSON(path, token string) (int, map[string]any) {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *APISuite) do(req *http.Request) (int, map[string]any) {
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// login walks the wallet challenge flow and returns a session token.
func (s *APISuite) login(wallet string) string {
	status, challenge := s.postJSON("/api/auth/challenge", "", map[string]string{"walletAddress": wallet})
	s.Require().Equal(http.StatusOK, status)
	nonce, _ := challenge["nonce"].(string)
	s.Require().NotEmpty(nonce)

	status, session := s.postJSON("/api/auth/login", "", map[string]string{
		"walletAddress": wallet,
		"nonce":         nonce,
		"signature":     "wallet-signature",
	})
	s.Require().Equal(http.StatusOK, status)
	token, _ := session["token"].(string)
	s.Require().NotEmpty(token)
	return token
}

// uploadResume posts a multipart resume and returns the created credential IDs.
func (s *APISuite) uploadResume(token, filename, content string) []string {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume", filename)
	s.Require().NoError(err)
	_, err = fw.Write([]byte(content))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/resume/upload", &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	status, body := s.do(req)
	s.Require().Equal(http.StatusOK, status, "upload response: %v", body)

	creds, _ := body["credentials"].([]any)
	ids := make([]string, 0, len(creds))
	for _, c := range creds {
		m, _ := c.(map[string]any)
		id, _ := m["credential_id"].(string)
		s.Require().NotEmpty(id)
		ids = append(ids, id)
	}
	return ids
}

func (s *APISuite) TestHealthEndpoint() {
	status, body := s.getJSON("/healthz", "")
	s.Equal(http.StatusOK, status)
	s.Equal("ok", body["status"])
}

func (s *APISuite) TestOwnerEndpointsRequireSession() {
	status, _ := s.getJSON("/api/credentials", "")
	s.Equal(http.StatusUnauthorized, status)

	status, _ = s.postJSON("/api/resume/publish", "bogus-token", map[string]any{"credentialIds": []string{}})
	s.Equal(http.StatusUnauthorized, status)
}

func (s *APISuite) TestUploadAndListCredentials() {
	token := s.login("wallet123")

	ids := s.uploadResume(token, "resume.txt", testResume)
	s.Len(ids, 2)

	status, body := s.getJSON("/api/credentials", token)
	s.Require().Equal(http.StatusOK, status)
	creds, _ := body["credentials"].([]any)
	s.Len(creds, 2)

	// Public read by ID works without a session.
	status, body = s.getJSON("/api/credentials/"+ids[0], "")
	s.Require().Equal(http.StatusOK, status)
	s.Equal(true, body["success"])
}

func (s *APISuite) TestUploadRejectsUnsupportedFormat() {
	token := s.login("wallet123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume", "resume.pdf")
	s.Require().NoError(err)
	_, err = fw.Write([]byte("%PDF-1.7"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/resume/upload", &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	status, _ := s.do(req)
	s.Equal(http.StatusBadRequest, status)
}

func (s *APISuite) TestFullVerificationLifecycle() {
	s.Require().NoError(s.trust.Save(context.Background(), institution.Institution{
		Key:         s.instKey,
		Name:        "MIT University",
		Whitelisted: true,
	}))

	token := s.login("wallet123")
	ids := s.uploadResume(token, "resume.txt", testResume)
	s.Require().Len(ids, 2)
	credID := ids[0]
	ownerDID := "did:anchor:wallet123"

	verifyReq := map[string]string{"credentialId": credID, "ownerDid": ownerDID}

	// Not anchored yet.
	status, verdict := s.postJSON("/api/verification/verify", "", verifyReq)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("NO_ATTESTATION", verdict["status"])
	s.Equal("credential commitment not found on-chain", verdict["message"])

	// Publish returns the commitment address; anchoring is the wallet's job,
	// simulated here against the in-memory ledger.
	status, body := s.postJSON("/api/resume/publish", token, map[string]any{"credentialIds": []string{credID}})
	s.Require().Equal(http.StatusOK, status)
	commitments, _ := body["commitments"].([]any)
	s.Require().Len(commitments, 1)
	addr, _ := commitments[0].(map[string]any)["commitment_address"].(string)
	s.Require().NotEmpty(addr)
	s.ledgerClient.Anchor(ledger.Address(addr))

	// Anchored but unattested.
	status, verdict = s.postJSON("/api/verification/verify", "", verifyReq)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("NO_ATTESTATION", verdict["status"])
	s.Equal(true, verdict["onChain"])

	// Owner asks the institution to attest.
	status, _ = s.postJSON("/api/verification/request", token, map[string]string{
		"credentialId":      credID,
		"institutionPubkey": s.instKey.String(),
	})
	s.Require().Equal(http.StatusCreated, status)

	status, body = s.getJSON("/api/institution/pending?institutionPubkey="+s.instKey.String(), "")
	s.Require().Equal(http.StatusOK, status)
	pending, _ := body["requests"].([]any)
	s.Require().Len(pending, 1)

	// Institution attests.
	status, body = s.postJSON("/api/institution/attest", "", map[string]string{
		"institutionPubkey": s.instKey.String(),
		"credentialId":      credID,
		"signature":         "institution-signature",
	})
	s.Require().Equal(http.StatusOK, status, "attest response: %v", body)

	// Verified end to end.
	status, verdict = s.postJSON("/api/verification/verify", "", verifyReq)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("VERIFIED", verdict["status"])
	s.Equal("credential verified with institutional attestation", verdict["message"])
	att, _ := verdict["attestation"].(map[string]any)
	s.Require().NotNil(att)
	s.Equal("MIT University", att["institution"])

	// The pending request was approved by the attestation.
	status, body = s.getJSON("/api/institution/pending?institutionPubkey="+s.instKey.String(), "")
	s.Require().Equal(http.StatusOK, status)
	pending, _ = body["requests"].([]any)
	s.Empty(pending)
}

func (s *APISuite) TestAttestFromUnknownInstitutionIsForbidden() {
	token := s.login("wallet123")
	ids := s.uploadResume(token, "resume.txt", testResume)

	status, _ := s.postJSON("/api/institution/attest", "", map[string]string{
		"institutionPubkey": "never-registered",
		"credentialId":      ids[0],
		"signature":         "sig",
	})
	s.Equal(http.StatusForbidden, status)
}

func (s *APISuite) TestVerifyValidatesInput() {
	status, _ := s.postJSON("/api/verification/verify", "", map[string]string{"credentialId": "not-a-uuid", "ownerDid": "did:anchor:w"})
	s.Equal(http.StatusBadRequest, status)
}
