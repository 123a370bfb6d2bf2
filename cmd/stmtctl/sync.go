package main

import (
	"fmt"

	"github.com/marcodd23/go-serving-stmt/pkg/catalog"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/fsclient"
	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		batch    bool
		workers  int
		inMemory bool
		baseURL  string
		apiKey   string
	)

	cmd := &cobra.Command{
		Use:   "sync <featureStoreId>/<featureView>/<version>...",
		Short: "Copy serving prepared statements from the feature store into the catalog",
		Long: `Sync fetches the statements of every given feature view version from the feature store
and replaces them in the catalog database, several views at a time. Statements with negative
ids or indexes fail their view; the other views are still synced.

Example:
  stmtctl sync 67/transactions/1 67/orders/2 --workers 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			views := make([]catalog.FeatureView, 0, len(args))
			for _, arg := range args {
				view, err := catalog.ParseFeatureView(arg)
				if err != nil {
					return err
				}
				views = append(views, view)
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

			store, closeStore, err := openStore(ctx, a.config, inMemory)
			if err != nil {
				return err
			}
			defer closeStore()

			store, closeNotifier, err := withNotifications(ctx, a.config, store)
			if err != nil {
				return err
			}
			defer closeNotifier(ctx)

			failed := 0
			for _, res := range catalog.NewSyncer(client, store, workers).Sync(ctx, views, batch) {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tFAILED\t%v\n", res.View, res.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tOK\t%d statements\n", res.View, res.Count)
			}

			if failed > 0 {
				return errorx.NewGeneralError("%d of %d feature views failed to sync", failed, len(views))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&batch, "batch", false, "sync the statements used for batch lookups")
	cmd.Flags().IntVar(&workers, "workers", 4, "feature views synced concurrently")
	cmd.Flags().StringVar(&baseURL, "url", "", "feature store REST base url (overrides featureStore.url)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "feature store api key (overrides featureStore.apiKey)")
	cmd.Flags().BoolVar(&inMemory, "memory", false, "sync into process memory instead of Postgres (dry run)")

	return cmd
}
