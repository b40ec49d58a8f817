package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager groups several store writes so they land together
type TransactionManager interface {
	// ExecTx executes a function within a transaction. Writes made through
	// the returned context are rolled back if fn fails.
	ExecTx(ctx context.Context, fn TxFn) error
}
