package main

import (
	"github.com/marcodd23/go-serving-stmt/pkg/configmgr"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/spf13/cobra"
)

// cliConfig is the configuration shared by every subcommand.
type cliConfig struct {
	configmgr.BaseConfig `mapstructure:",squash"`
}

// app holds the state resolved by the root command before a subcommand runs.
type app struct {
	configFile string
	config     *cliConfig
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "stmtctl",
		Short:         "Inspect, fetch and serve serving prepared statements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: property[-<env>].yaml in the working directory)")

	rootCmd.AddCommand(newDecodeCmd(a))
	rootCmd.AddCommand(newFetchCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newSyncCmd(a))

	return rootCmd
}

// loadConfig reads the configuration and sets up the logger on stderr, keeping stdout for command output.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg := &cliConfig{}

	var err error
	if a.configFile != "" {
		err = configmgr.ReadConfiguration(a.configFile, cfg)
	} else {
		err = configmgr.LoadConfigForEnv(cfg)
	}
	if err != nil {
		return err
	}

	if cfg.Name == "" {
		cfg.Name = cmd.Root().Name()
	}

	logx.SetupLoggerWithWriter(cfg, cmd.ErrOrStderr())
	a.config = cfg

	return nil
}
