package pgxdb

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx"
	"github.com/pkg/errors"
)

// TxBulkInsertEntitiesWithTags inserts entities into tableName with pgx.CopyFrom inside the given transaction.
//
// The column list is derived from the `db` tags of the first entity; each entity's ToRow must return its
// values in that same order. An empty slice inserts nothing and is not an error.
//
// Arguments:
//   - tx: a transaction started by pgxdb.PostgresDB.TxBegin.
//   - ctx: The context for the copy.
//   - tableName: "table" or "schema.table" (CASE SENSITIVE).
//   - entities: the rows to insert.
//
// Returns:
//   - int64: The number of rows inserted.
//   - error: Any error encountered during the bulk insert.
func TxBulkInsertEntitiesWithTags[T dbx.RowConvertibleEntity](tx dbx.Transaction, ctx context.Context, tableName string, entities []T) (int64, error) {
	if len(entities) == 0 {
		return 0, nil
	}

	pgxTx, ok := tx.GetTx().(pgx.Tx)
	if !ok {
		return 0, errors.New("bulk insert requires a pgx transaction")
	}

	identifier, err := splitTableName(tableName)
	if err != nil {
		return 0, err
	}

	columnNames, err := dbx.DeriveColumnNamesFromTags(entities[0], "db")
	if err != nil {
		return 0, errors.Wrap(err, "error deriving column names")
	}

	rows := make([][]interface{}, len(entities))
	for i, entity := range entities {
		rows[i] = entity.ToRow()
	}

	rowCount, err := pgxTx.CopyFrom(ctx, identifier, columnNames, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, errors.Wrap(err, "bulk insert error")
	}

	return rowCount, nil
}

func splitTableName(tableName string) (pgx.Identifier, error) {
	parts := strings.Split(tableName, ".")
	switch len(parts) {
	case 1:
		return pgx.Identifier{parts[0]}, nil
	case 2:
		return pgx.Identifier{parts[0], parts[1]}, nil
	default:
		return nil, errors.Errorf("invalid table name format: %s", tableName)
	}
}
