// AngelaMos | 2026
// tx.go

package coretest

import "context"

// Transactor runs fn directly. In-memory repositories have nothing to roll
// back, so tests only observe ordering and error propagation.
type Transactor struct {
	Calls int
}

func (t *Transactor) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	t.Calls++
	return fn(ctx)
}
