package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-serving-stmt/pkg/catalog"
	"github.com/marcodd23/go-serving-stmt/pkg/configmgr"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx"
	"github.com/marcodd23/go-serving-stmt/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/messaging"
	"github.com/marcodd23/go-serving-stmt/pkg/messaging/gpubsub"
	"github.com/marcodd23/go-serving-stmt/pkg/serverx/fibersrv"
	"github.com/marcodd23/go-serving-stmt/pkg/shutdown"
	"github.com/spf13/cobra"
)

// DefaultShutdownTimeoutMilli - timeout for cleaning up resources before shutting down the server.
const DefaultShutdownTimeoutMilli = 5000

func newServeCmd(a *app) *cobra.Command {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prepared statement catalog REST API",
		Long: `Serve exposes GET, PUT and DELETE on
/featurestores/{fsId}/featureview/{name}/version/{version}/preparedstatement
backed by the Postgres database of the database section, or by process memory with --memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx, a.config, inMemory)
			if err != nil {
				return err
			}

			store, closeNotifier, err := withNotifications(ctx, a.config, store)
			if err != nil {
				closeStore()
				return err
			}

			serverManager := fibersrv.NewFiberServer(a.config)
			serverManager.Setup(ctx, func(appServer *fiber.App) {
				catalog.RegisterRoutes(appServer, store)
			})
			serverManager.RunAsync()

			timeout := a.config.GetServerConfig().ShutdownTimeoutMilli
			if timeout <= 0 {
				timeout = DefaultShutdownTimeoutMilli
			}

			return shutdown.WaitForShutdown(ctx, timeout, func(timeoutCtx context.Context) {
				if err := serverManager.Shutdown(timeoutCtx); err != nil {
					logx.GetLogger().LogError(timeoutCtx, "Error shutting down the catalog server", err)
				}
				closeNotifier(timeoutCtx)
				closeStore()
			})
		},
	}

	cmd.Flags().BoolVar(&inMemory, "memory", false, "keep statements in memory instead of Postgres")

	return cmd
}

func openStore(ctx context.Context, config configmgr.Config, inMemory bool) (catalog.Store, func(), error) {
	if inMemory {
		logx.GetLogger().LogInfo(ctx, "Serving statements from memory")
		return catalog.NewMemoryStore(), func() {}, nil
	}

	dbConf := connConfig(config.GetDatabaseConfig())

	if err := catalog.EnsureSchema(ctx, dbConf); err != nil {
		return nil, nil, err
	}

	db, err := pgxdb.NewPostgresDbManager(ctx, dbConf, catalog.PreparedStatements()...)
	if err != nil {
		return nil, nil, err
	}

	return catalog.NewPgStore(db), db.CloseDbConnPool, nil
}

// withNotifications wraps store in a catalog.NotifyingStore when a notifications topic is configured.
func withNotifications(ctx context.Context, config configmgr.Config, store catalog.Store) (catalog.Store, func(context.Context), error) {
	conf := config.GetNotificationsConfig()
	if conf.Topic == "" {
		return store, func(context.Context) {}, nil
	}

	publisher, err := gpubsub.NewPubSubBufferedPublisherFactory(ctx, conf.ProjectID, messaging.TopicPublishConfig{
		BatchSize:           conf.BatchSize,
		FlushDelayThreshold: time.Duration(conf.FlushDelayMilli) * time.Millisecond,
		MaxRetryCount:       conf.MaxRetryCount,
	})
	if err != nil {
		return nil, nil, err
	}

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Publishing catalog changes to %s", conf.Topic))

	closeNotifier := func(ctx context.Context) {
		if err := publisher.Close(ctx); err != nil {
			logx.GetLogger().LogError(ctx, "Error closing the catalog change publisher", err)
		}
	}

	return catalog.NewNotifyingStore(store, publisher, conf.Topic), closeNotifier, nil
}

func connConfig(conf *configmgr.DatabaseConfig) dbx.ConnConfig {
	return dbx.ConnConfig{
		Host:             conf.Host,
		Port:             conf.Port,
		DBName:           conf.Name,
		User:             conf.User,
		Password:         conf.Password,
		MaxConn:          conf.MaxConn,
		MinConn:          conf.MinConn,
		CloudSqlInstance: conf.CloudSqlInstance,
	}
}
