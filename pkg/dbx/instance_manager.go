package dbx

import (
	"context"
)

// InstanceManager owns the connection pool of a database instance.
//
// Query and Exec run on a connection borrowed from the pool for the duration of the call; TxBegin pins
// a connection until the transaction ends. query is either SQL text or the name of a PreparedStatement
// registered when the manager was created.
// Query returns the connection together with the rows; callers close the rows and then release the
// connection (see pgxdb.QueryAndScan).
type InstanceManager interface {
	TxBegin(ctx context.Context) (Transaction, error)
	Query(ctx context.Context, query string, args ...any) (conn any, rows any, err error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	CloseDbConnPool()
}
