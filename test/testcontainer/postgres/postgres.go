// Package postgres starts a disposable Postgres container for integration tests.
package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresContainerImage = "docker.io/postgres:16-alpine"
	postgresContainerPort  = nat.Port("5432/tcp")

	MainDbName     = "catalog"
	MainDbUser     = "postgres"
	MainDbPassword = "password"
)

// PostgresContainer represents the postgres Container type used in the module.
type PostgresContainer struct {
	Container  *postgres.PostgresContainer
	MappedPort nat.Port
	Host       string
	DbName     string
	DbUser     string
	DbPassword string
}

// StartPostgresContainer starts a container and terminates it when the test ends.
func StartPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	pg, err := postgres.Run(ctx,
		postgresContainerImage,
		postgres.WithDatabase(MainDbName),
		postgres.WithUsername(MainDbUser),
		postgres.WithPassword(MainDbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	require.NotNil(t, pg)

	t.Cleanup(func() {
		logx.GetLogger().LogInfo(ctx, "Terminating the Container ....")
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("error terminating the Container: %v", err)
		}
	})

	mappedPort, err := pg.MappedPort(ctx, postgresContainerPort)
	require.NoError(t, err)

	host, err := pg.Host(ctx)
	require.NoError(t, err)

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Postgres running at %s:%s", host, mappedPort.Port()))

	return &PostgresContainer{
		Container:  pg,
		MappedPort: mappedPort,
		Host:       host,
		DbName:     MainDbName,
		DbUser:     MainDbUser,
		DbPassword: MainDbPassword,
	}
}

// ConnConfig returns the connection configuration of the container database.
func (c *PostgresContainer) ConnConfig() dbx.ConnConfig {
	return dbx.ConnConfig{
		Host:     c.Host,
		Port:     int32(c.MappedPort.Int()),
		DBName:   c.DbName,
		User:     c.DbUser,
		Password: c.DbPassword,
		MaxConn:  2,
	}
}

// SetupDatabaseConnection opens a pool on the container with the given statements prepared, closed when the test ends.
func (c *PostgresContainer) SetupDatabaseConnection(ctx context.Context, t *testing.T, preparedStatements ...dbx.PreparedStatement) dbx.InstanceManager {
	t.Helper()

	db, err := pgxdb.NewPostgresDbManager(ctx, c.ConnConfig(), preparedStatements...)
	require.NoError(t, err)
	t.Cleanup(db.CloseDbConnPool)

	return db
}
