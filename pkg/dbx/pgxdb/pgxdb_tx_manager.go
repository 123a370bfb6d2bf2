package pgxdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
)

//###################################
//#       Postgres TX Manager       #
//###################################

// PostgresTx - Postgres Transaction manager.
// Implements dbx.Transaction, providing methods to manage a PostgreSQL transaction.
type PostgresTx struct {
	tx       pgx.Tx
	conn     *pgxpool.Conn
	txId     int64
	finished bool
}

// GetTx - Returns the underlying pgx.Tx.
func (tx *PostgresTx) GetTx() any {
	return tx.tx
}

// TxCommit - Commits a transaction and releases the connection to the pool.
func (tx *PostgresTx) TxCommit(ctx context.Context) error {
	if tx.finished {
		return errorx.NewDatabaseError("transaction %d already finished", tx.txId)
	}

	defer tx.release()

	if err := tx.tx.Commit(ctx); err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("error during transaction commit: %d", tx.txId), err)
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction commit")
	}

	return nil
}

// TxRollback - Rolls back a transaction and releases the connection to the pool.
// It does nothing when the transaction was already committed or rolled back.
//
// Example Usage:
//
//	defer tx.TxRollback(ctx)
func (tx *PostgresTx) TxRollback(ctx context.Context) {
	if tx.finished {
		return
	}

	defer tx.release()

	if err := tx.tx.Rollback(ctx); err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("error Rolling Back transaction: %d", tx.txId), err)
	} else {
		logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Rollback transaction: %d", tx.txId))
	}
}

func (tx *PostgresTx) release() {
	tx.finished = true
	tx.conn.Release()
}

// TxQuery executes a query within the transaction and returns pgx.Rows, which the caller must close.
func (tx *PostgresTx) TxQuery(ctx context.Context, query string, args ...interface{}) (any, error) {
	rows, err := tx.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", query)
	}

	return rows, nil
}

// TxExec - Executes a command query under a transaction and returns the number of rows affected.
func (tx *PostgresTx) TxExec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	result, err := tx.tx.Exec(ctx, execQuery, args...)
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	return result.RowsAffected(), nil
}
