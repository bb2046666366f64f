package ledger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/platform/circuit"
)

// HTTPClient reads commitments from a ledger node's HTTP API. A circuit
// breaker sheds calls while the node is down so verification degrades
// immediately instead of waiting out the timeout on every request.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// WithBreaker sets a custom circuit breaker.
func WithBreaker(breaker *circuit.Breaker) HTTPClientOption {
	return func(c *HTTPClient) {
		c.breaker = breaker
	}
}

// NewHTTPClient creates a ledger client against the given node base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: circuit.New("ledger"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCommitment reports whether the commitment account at addr exists on the
// ledger. A 404 is a definite "no"; anything else that is not a 200 is
// reported as CodeLedgerUnavailable so the verifier can degrade its verdict.
func (c *HTTPClient) HasCommitment(ctx context.Context, addr Address) (bool, error) {
	if !c.breaker.Allow() {
		return false, dErrors.New(dErrors.CodeLedgerUnavailable, "ledger circuit open")
	}

	url := fmt.Sprintf("%s/v1/commitments/%s", c.baseURL, addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "create ledger request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return false, dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "ledger lookup failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		c.breaker.RecordSuccess()
		return true, nil
	case http.StatusNotFound:
		c.breaker.RecordSuccess()
		return false, nil
	default:
		c.breaker.RecordFailure()
		return false, dErrors.New(dErrors.CodeLedgerUnavailable,
			fmt.Sprintf("ledger returned status %d", resp.StatusCode))
	}
}
