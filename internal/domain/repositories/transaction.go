package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs check-then-mutate sequences atomically.
// Repositories called with the ctx passed to fn participate in the transaction.
type TransactionManager interface {
	// ExecTx executes fn within a transaction. Any error rolls the transaction back.
	ExecTx(ctx context.Context, fn TxFn) error
}
