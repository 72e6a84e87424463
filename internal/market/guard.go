package market

import "context"

type settlementKey struct{}

// enterSettlement marks the context of a value-moving operation before it
// takes the store lock. Independent callers are serialized by the lock; a
// call that arrives already marked was made from inside an in-flight
// settlement (a transfer callback re-entering the market) and fails
// loudly instead of deadlocking on the lock its caller holds.
func enterSettlement(ctx context.Context) (context.Context, error) {
	if ctx.Value(settlementKey{}) != nil {
		return nil, ErrReentrantCall
	}

	return context.WithValue(ctx, settlementKey{}, struct{}{}), nil
}
