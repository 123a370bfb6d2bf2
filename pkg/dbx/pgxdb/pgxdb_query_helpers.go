package pgxdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx"
	"github.com/pkg/errors"
)

// QueryAndScan executes a query and maps every row with scanFunc.
//
// Arguments:
//   - mgr: The instance manager responsible for managing the database connection.
//   - ctx: The context for the query execution.
//   - scanFunc: A function that maps the current row (pgx.Rows) to the desired type (T).
//   - query: The SQL query, or the name of a prepared statement.
//   - args: The variadic arguments for the SQL query, if any.
//
// Returns:
//   - []T: the mapped rows, in result order.
//   - error: Any error encountered during query execution or row scanning.
func QueryAndScan[T any](mgr dbx.InstanceManager, ctx context.Context, scanFunc func(rows pgx.Rows) (T, error), query string, args ...interface{}) ([]T, error) {
	conn, rows, err := mgr.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pgxRows := rows.(pgx.Rows)
	pgxConn := conn.(*pgxpool.Conn)

	defer func() {
		pgxRows.Close()
		pgxConn.Release()
	}()

	return collect(pgxRows, scanFunc)
}

// TxQueryAndScan is QueryAndScan within a transaction.
func TxQueryAndScan[T any](tx dbx.Transaction, ctx context.Context, scanFunc func(rows pgx.Rows) (T, error), query string, args ...interface{}) ([]T, error) {
	rows, err := tx.TxQuery(ctx, query, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pgxRows := rows.(pgx.Rows)
	defer pgxRows.Close()

	return collect(pgxRows, scanFunc)
}

func collect[T any](rows pgx.Rows, scanFunc func(rows pgx.Rows) (T, error)) ([]T, error) {
	results := []T{}
	for rows.Next() {
		result, err := scanFunc(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error mapping rows with scanFunc")
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	return results, nil
}
