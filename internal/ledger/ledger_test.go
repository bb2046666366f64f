package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/platform/circuit"
)

func TestDeriveCommitmentAddressIsDeterministic(t *testing.T) {
	id, err := domain.ParseCredentialID("a1b2c3d4-e5f6-7890-abcd-ef1234567890")
	require.NoError(t, err)

	first := DeriveCommitmentAddress(id)
	second := DeriveCommitmentAddress(id)

	assert.Equal(t, first, second)
	assert.Len(t, string(first), 64, "address is hex-encoded SHA-256")
}

func TestDeriveCommitmentAddressDiffersPerCredential(t *testing.T) {
	a := DeriveCommitmentAddress(domain.NewCredentialID())
	b := DeriveCommitmentAddress(domain.NewCredentialID())
	assert.NotEqual(t, a, b)
}

func TestHTTPClientHasCommitment(t *testing.T) {
	addr := DeriveCommitmentAddress(domain.NewCredentialID())

	tests := []struct {
		name    string
		status  int
		want    bool
		wantErr dErrors.Code
	}{
		{name: "anchored", status: http.StatusOK, want: true},
		{name: "not anchored", status: http.StatusNotFound, want: false},
		{name: "node error", status: http.StatusInternalServerError, wantErr: dErrors.CodeLedgerUnavailable},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: dErrors.CodeLedgerUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/v1/commitments/"+string(addr), r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL, time.Second)
			got, err := client.HasCommitment(context.Background(), addr)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPClientReportsTransportFailureAsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.HasCommitment(context.Background(), DeriveCommitmentAddress(domain.NewCredentialID()))

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
}

func TestHTTPClientShedsCallsWhileCircuitOpen(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second,
		WithBreaker(circuit.New("ledger", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))))
	addr := DeriveCommitmentAddress(domain.NewCredentialID())

	for i := 0; i < 2; i++ {
		_, err := client.HasCommitment(context.Background(), addr)
		require.Error(t, err)
	}
	require.Equal(t, 2, hits)

	_, err := client.HasCommitment(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	assert.Equal(t, 2, hits, "the open circuit short-circuits before the request")
}

func TestInMemoryClientAnchorAndFail(t *testing.T) {
	client := NewInMemoryClient()
	addr := DeriveCommitmentAddress(domain.NewCredentialID())

	ok, err := client.HasCommitment(context.Background(), addr)
	require.NoError(t, err)
	assert.False(t, ok)

	client.Anchor(addr)
	ok, err = client.HasCommitment(context.Background(), addr)
	require.NoError(t, err)
	assert.True(t, ok)

	client.Fail(dErrors.New(dErrors.CodeLedgerUnavailable, "down"))
	_, err = client.HasCommitment(context.Background(), addr)
	assert.Error(t, err)
}
