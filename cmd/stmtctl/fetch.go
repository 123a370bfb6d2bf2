package main

import (
	"context"
	"strconv"

	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/fsclient"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/marcodd23/go-serving-stmt/pkg/shutdown"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		batch   bool
		baseURL string
		apiKey  string
	)

	cmd := &cobra.Command{
		Use:   "fetch <featureStoreId> <featureView> <version>",
		Short: "Fetch the serving prepared statements of a feature view from the feature store",
		Long: `Fetch calls the feature store REST API configured in the featureStore section
(or with --url and --api-key) and prints the statements of a feature view version.

Example:
  stmtctl fetch 67 transactions 1 --batch`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsID, err := strconv.Atoi(args[0])
			if err != nil {
				return errorx.NewGeneralErrorWrapper(err, "invalid feature store id '%s'", args[0])
			}

			version, err := strconv.Atoi(args[2])
			if err != nil {
				return errorx.NewGeneralErrorWrapper(err, "invalid feature view version '%s'", args[2])
			}

			conf := fsclient.ConfigFrom(a.config)
			if baseURL != "" {
				conf.BaseURL = baseURL
			}
			if apiKey != "" {
				conf.APIKey = apiKey
			}

			client, err := fsclient.New(conf)
			if err != nil {
				return err
			}

			var stmts []*servingstmt.ServingPreparedStatement

			err = shutdown.RunTaskWithContextCancellationCheck(cmd.Context(), func(cancelCtx context.Context, terminateSignal chan struct{}) error {
				result := make(chan error, 1)
				go func() {
					var fetchErr error
					stmts, fetchErr = client.GetServingPreparedStatements(cancelCtx, fsID, args[1], version, batch)
					result <- fetchErr
				}()

				select {
				case <-terminateSignal:
					return errorx.NewGeneralError("fetch interrupted")
				case err := <-result:
					return err
				}
			})
			if err != nil {
				return err
			}

			return printCollection(cmd, stmts)
		},
	}

	cmd.Flags().BoolVar(&batch, "batch", false, "fetch the statements used for batch lookups")
	cmd.Flags().StringVar(&baseURL, "url", "", "feature store REST base url (overrides featureStore.url)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "feature store api key (overrides featureStore.apiKey)")

	return cmd
}
