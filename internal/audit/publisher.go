package audit

import (
	"context"
)

// Publisher is the audit sink capability injected into services. Audit
// publishing is fail-open: callers log emit errors but never fail the
// business call on them.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store is an append-only audit event sink with read access for tests.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// StorePublisher adapts a Store into a Publisher.
type StorePublisher struct {
	store Store
}

// NewPublisher wraps a store as a synchronous publisher.
func NewPublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	return p.store.Append(ctx, event)
}
