package pgxdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/pkg/errors"
)

//###################################
//#    PostgresDB - dbx manager.     #
//###################################

// PostgresDB implements dbx.InstanceManager over a pgxpool.Pool.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgresDbManager creates the connection pool and prepares the given statements on every connection it opens.
func NewPostgresDbManager(ctx context.Context, dbConf dbx.ConnConfig, preparedStatements ...dbx.PreparedStatement) (dbx.InstanceManager, error) {
	pool, err := newConnectionPool(ctx, dbConf, preparedStatements...)
	if err != nil {
		return nil, err
	}

	logx.
		GetLogger().
		LogInfo(ctx, fmt.Sprintf("Created new InstanceManager Connection Pool: DB=%s, HOST=%s, PORT=%d",
			pool.Config().ConnConfig.Database,
			pool.Config().ConnConfig.Host,
			pool.Config().ConnConfig.Port))

	return &PostgresDB{pool: pool}, nil
}

// ExecStandalone runs sql on a dedicated connection that is closed afterwards, outside of any pool.
// It is meant for schema setup that must happen before statements are prepared on pooled connections.
func ExecStandalone(ctx context.Context, dbConf dbx.ConnConfig, sql string) error {
	poolConfig, err := createConnectionConfiguration(dbConf)
	if err != nil {
		return err
	}

	conn, err := pgx.ConnectConfig(ctx, poolConfig.ConnConfig)
	if err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error connecting to %s", dbConf.DBName)
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			logx.GetLogger().LogWarning(ctx, "error closing standalone connection", err)
		}
	}()

	if _, err := conn.Exec(ctx, sql); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error executing standalone statement")
	}

	return nil
}

func newConnectionPool(ctx context.Context, dbConf dbx.ConnConfig, preparedStatements ...dbx.PreparedStatement) (*pgxpool.Pool, error) {
	poolConfig, err := createConnectionConfiguration(dbConf)
	if err != nil {
		return nil, err
	}

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return setupPreparedStatements(ctx, conn, preparedStatements...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating New Connection Pool")
	}

	return pool, nil
}

func createConnectionConfiguration(dbConf dbx.ConnConfig) (*pgxpool.Config, error) {
	if dbConf.DBName == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Name is EMPTY")
	}

	if dbConf.User == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_User is EMPTY")
	}

	if dbConf.Password == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Password is EMPTY")
	}

	poolConfig, err := pgxpool.ParseConfig("")
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error parsing default Connection Pool ConnConfig")
	}

	poolConfig.ConnConfig.Database = dbConf.DBName
	poolConfig.ConnConfig.User = dbConf.User
	poolConfig.ConnConfig.Password = dbConf.Password

	if dbConf.MaxConn > 0 {
		poolConfig.MaxConns = dbConf.MaxConn
	}

	if dbConf.MinConn > 0 && dbConf.MinConn <= poolConfig.MaxConns {
		poolConfig.MinConns = dbConf.MinConn
	}

	if dbConf.CloudSqlInstance != "" {
		// the port is defined by the unix socket mounted in the container at runtime
		logx.GetLogger().LogInfo(context.TODO(), "Connecting to DB trough CLOUD SQL PROXY")
		poolConfig.ConnConfig.Host = fmt.Sprintf("/cloudsql/%s", dbConf.CloudSqlInstance)
	} else {
		logx.
			GetLogger().
			LogInfo(context.TODO(), fmt.Sprintf("Connecting to DB on HOST:%s and PORT:%d",
				dbConf.Host,
				uint16(dbConf.Port)))
		poolConfig.ConnConfig.Host = dbConf.Host
		poolConfig.ConnConfig.Port = uint16(dbConf.Port)
	}

	return poolConfig, nil
}

func setupPreparedStatements(ctx context.Context, conn *pgx.Conn, preparedStatements ...dbx.PreparedStatement) error {
	for _, stmt := range preparedStatements {
		_, err := conn.Prepare(ctx, stmt.GetName(), stmt.GetQuery())
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "Failed to prepare statement '%s'", stmt.GetName())
		}
	}

	return nil
}

func acquireConnectionFromPool(ctx context.Context, db *PostgresDB) (*pgxpool.Conn, error) {
	if db.pool == nil {
		return nil, errorx.NewDatabaseError("error, Connection Pool To DB not initialized")
	}

	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "Error acquiring connection from pool", err)
		return nil, errors.Wrap(err, "Error acquiring connection from pool")
	}

	return conn, nil
}

// CloseDbConnPool - close dbx connection pool.
func (dbm *PostgresDB) CloseDbConnPool() {
	if dbm.pool != nil {
		dbm.pool.Close()
		logx.GetLogger().LogInfo(context.TODO(), "DB Connection Pool Successfully Closed!")
	}
}

// TxBegin starts a new database transaction on a connection acquired from the pool.
//
// The connection is held by the returned transaction and released by TxCommit or TxRollback.
//
// Example Usage:
//
//	tx, err := dbm.TxBegin(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.TxRollback(ctx)
//
//	if _, err := tx.TxExec(ctx, "catalogDeleteStatements", fsID, name, version); err != nil {
//	    return err
//	}
//
//	return tx.TxCommit(ctx)
func (dbm *PostgresDB) TxBegin(ctx context.Context) (dbx.Transaction, error) {
	conn, err := acquireConnectionFromPool(ctx, dbm)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		return nil, errorx.NewDatabaseErrorWrapper(err, "error starting transaction")
	}

	return &PostgresTx{tx: tx, conn: conn, txId: dbx.GenerateRandomInt64Id()}, nil
}

// Query executes a SQL query and returns both the resulting rows and the database connection.
//
// The caller owns both results: rows must be closed and the connection released once the rows
// have been consumed.
//
//	conn, rows, err := dbm.Query(ctx, "SELECT * FROM my_table WHERE id = $1", 123)
//	if err != nil {
//	    // Handle error
//	}
//	defer conn.(*pgxpool.Conn).Release()
//	defer rows.(pgx.Rows).Close()
func (dbm *PostgresDB) Query(ctx context.Context, query string, args ...interface{}) (any, any, error) {
	conn, err := acquireConnectionFromPool(ctx, dbm)
	if err != nil {
		return nil, nil, err
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		conn.Release()
		return nil, nil, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", query)
	}

	return conn, rows, nil
}

// Exec executes a SQL command that does not return rows and returns the number of rows affected.
// The connection is released before returning.
func (dbm *PostgresDB) Exec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	conn, err := acquireConnectionFromPool(ctx, dbm)
	if err != nil {
		return 0, err
	}

	defer conn.Release()

	result, err := conn.Exec(ctx, execQuery, args...)
	if err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("Error executing query '%s'", execQuery), err)

		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	return result.RowsAffected(), nil
}
