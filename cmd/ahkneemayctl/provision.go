package main

import (
	"ahkneemay/infrastructure/di"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the image bucket and the users and animes tables",
		Long: `Create the image bucket and both tables for the configured prefix.
Resources that already exist are reused, so the command can run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, err := di.ProvideLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			resources, err := di.Provision(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("Provisioning failed", zap.Error(err))
				return err
			}

			return printJSON(cmd.OutOrStdout(), resources)
		},
	}
}
