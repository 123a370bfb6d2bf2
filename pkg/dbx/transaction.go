package dbx

import (
	"context"
)

// Transaction is a database transaction pinned to one pooled connection.
// TxCommit and TxRollback both release the connection; TxRollback after TxCommit does nothing,
// so it can always be deferred right after TxBegin.
// GetTx exposes the driver transaction (pgx.Tx for pgxdb) for driver specific calls such as CopyFrom.
type Transaction interface {
	TxExec(ctx context.Context, query string, args ...any) (int64, error)
	TxQuery(ctx context.Context, query string, args ...any) (any, error)
	TxCommit(ctx context.Context) error
	TxRollback(ctx context.Context)
	GetTx() any
}
