package ledger

import (
	"context"
	"sync"
)

// InMemoryClient is a ledger fake for tests and local runs. Commitments are
// anchored by writing their address into the set; Fail forces the transient
// failure path.
type InMemoryClient struct {
	mu          sync.RWMutex
	commitments map[Address]struct{}
	failWith    error
}

var _ Client = (*InMemoryClient)(nil)

// NewInMemoryClient constructs an empty in-memory ledger.
func NewInMemoryClient() *InMemoryClient {
	return &InMemoryClient{commitments: make(map[Address]struct{})}
}

// Anchor records a commitment at the given address.
func (c *InMemoryClient) Anchor(addr Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commitments[addr] = struct{}{}
}

// Fail makes every subsequent lookup return err until Fail(nil) is called.
func (c *InMemoryClient) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

func (c *InMemoryClient) HasCommitment(_ context.Context, addr Address) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failWith != nil {
		return false, c.failWith
	}
	_, ok := c.commitments[addr]
	return ok, nil
}
