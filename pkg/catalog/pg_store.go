package catalog

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/pkg/errors"
)

const TableName = "serving_prepared_statement"

// SchemaDDL creates the catalog table. It is idempotent.
const SchemaDDL = `
CREATE TABLE IF NOT EXISTS serving_prepared_statement
(
    feature_store_id              INT   NOT NULL,
    feature_view_name             TEXT  NOT NULL,
    feature_view_version          INT   NOT NULL,
    position                      INT   NOT NULL,
    feature_group_id              INT,
    prepared_statement_index      INT,
    prepared_statement_parameters JSONB,
    query_online                  TEXT,
    prefix                        TEXT,
    PRIMARY KEY (feature_store_id, feature_view_name, feature_view_version, position)
);
`

// Names of the statements prepared on every catalog connection.
const (
	stmtListStatements   = "catalogListStatements"
	stmtDeleteStatements = "catalogDeleteStatements"
)

// PreparedStatements returns the statements PgStore executes by name; they must be passed to
// pgxdb.NewPostgresDbManager.
func PreparedStatements() []dbx.PreparedStatement {
	return []dbx.PreparedStatement{
		dbx.NewPreparedStatement(stmtListStatements, `
SELECT feature_group_id, prepared_statement_index, prepared_statement_parameters, query_online, prefix
FROM serving_prepared_statement
WHERE feature_store_id = $1 AND feature_view_name = $2 AND feature_view_version = $3
ORDER BY position`),
		dbx.NewPreparedStatement(stmtDeleteStatements, `
DELETE FROM serving_prepared_statement
WHERE feature_store_id = $1 AND feature_view_name = $2 AND feature_view_version = $3`),
	}
}

// EnsureSchema creates the catalog table on a standalone connection, before the pool prepares its statements.
func EnsureSchema(ctx context.Context, dbConf dbx.ConnConfig) error {
	return pgxdb.ExecStandalone(ctx, dbConf, SchemaDDL)
}

// statementRow is the table layout of one statement.
type statementRow struct {
	FeatureStoreID              int     `db:"feature_store_id"`
	FeatureViewName             string  `db:"feature_view_name"`
	FeatureViewVersion          int     `db:"feature_view_version"`
	Position                    int     `db:"position"`
	FeatureGroupID              *int    `db:"feature_group_id"`
	PreparedStatementIndex      *int    `db:"prepared_statement_index"`
	PreparedStatementParameters []byte  `db:"prepared_statement_parameters"`
	QueryOnline                 *string `db:"query_online"`
	Prefix                      *string `db:"prefix"`
}

func (r statementRow) ToRow() []interface{} {
	var params interface{}
	if r.PreparedStatementParameters != nil {
		params = r.PreparedStatementParameters
	}

	return []interface{}{
		r.FeatureStoreID,
		r.FeatureViewName,
		r.FeatureViewVersion,
		r.Position,
		r.FeatureGroupID,
		r.PreparedStatementIndex,
		params,
		r.QueryOnline,
		r.Prefix,
	}
}

func newStatementRow(view FeatureView, position int, stmt *servingstmt.ServingPreparedStatement) (statementRow, error) {
	row := statementRow{
		FeatureStoreID:         view.FeatureStoreID,
		FeatureViewName:        view.Name,
		FeatureViewVersion:     view.Version,
		Position:               position,
		FeatureGroupID:         stmt.GetFeatureGroupID(),
		PreparedStatementIndex: stmt.GetPreparedStatementIndex(),
		QueryOnline:            stmt.GetQueryOnline(),
		Prefix:                 stmt.GetPrefix(),
	}

	if params := stmt.GetPreparedStatementParameters(); params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return statementRow{}, errors.Wrapf(err, "encoding parameters of statement %d", position)
		}
		row.PreparedStatementParameters = data
	}

	return row, nil
}

func scanStatement(rows pgx.Rows) (*servingstmt.ServingPreparedStatement, error) {
	var (
		stmt   = servingstmt.NewEmpty()
		params []byte
	)

	if err := rows.Scan(&stmt.FeatureGroupID, &stmt.PreparedStatementIndex, &params, &stmt.QueryOnline, &stmt.Prefix); err != nil {
		return nil, err
	}

	if params != nil {
		parameters, err := servingstmt.DecodeParameters(params)
		if err != nil {
			return nil, err
		}
		stmt.SetPreparedStatementParameters(parameters)
	}

	return stmt, nil
}

// PgStore is the Postgres Store, on top of a pool created with PreparedStatements.
type PgStore struct {
	db dbx.InstanceManager
}

func NewPgStore(db dbx.InstanceManager) *PgStore {
	return &PgStore{db: db}
}

// Replace swaps the statements of view for stmts in a single transaction. Nil statements are skipped.
func (s *PgStore) Replace(ctx context.Context, view FeatureView, stmts []*servingstmt.ServingPreparedStatement) error {
	rows := make([]statementRow, 0, len(stmts))
	for _, stmt := range stmts {
		if stmt == nil {
			continue
		}

		row, err := newStatementRow(view, len(rows), stmt)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	tx, err := s.db.TxBegin(ctx)
	if err != nil {
		return err
	}
	defer tx.TxRollback(ctx)

	if _, err := tx.TxExec(ctx, stmtDeleteStatements, view.FeatureStoreID, view.Name, view.Version); err != nil {
		return err
	}

	inserted, err := pgxdb.TxBulkInsertEntitiesWithTags(tx, ctx, TableName, rows)
	if err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error storing statements of %s", view)
	}

	// Read back through the list statement before committing, so the view holds exactly the inserted rows.
	stored, err := pgxdb.TxQueryAndScan(tx, ctx, scanStatement, stmtListStatements, view.FeatureStoreID, view.Name, view.Version)
	if err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error reading back statements of %s", view)
	}
	if int64(len(stored)) != inserted {
		return errorx.NewDatabaseError("statements of %s not replaced: %d stored, %d inserted", view, len(stored), inserted)
	}

	if err := tx.TxCommit(ctx); err != nil {
		return err
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("stored %d serving prepared statements for %s", len(stored), view))

	return nil
}

func (s *PgStore) List(ctx context.Context, view FeatureView) ([]*servingstmt.ServingPreparedStatement, error) {
	stmts, err := pgxdb.QueryAndScan(s.db, ctx, scanStatement, stmtListStatements, view.FeatureStoreID, view.Name, view.Version)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "error listing statements of %s", view)
	}

	return stmts, nil
}

func (s *PgStore) Delete(ctx context.Context, view FeatureView) (int64, error) {
	return s.db.Exec(ctx, stmtDeleteStatements, view.FeatureStoreID, view.Name, view.Version)
}
