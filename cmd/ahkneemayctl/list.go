package main

import (
	"errors"

	"ahkneemay/application/queries"
	querybus "ahkneemay/application/queries/bus"
	"ahkneemay/infrastructure/di"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the anime list of one user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return errors.New("--owner is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			container, cleanup, err := di.InitializeContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			defer container.Logger.Sync()

			result, err := querybus.Ask[*queries.ListEntriesResult](cmd.Context(), container.QueryBus, queries.ListEntriesQuery{Owner: owner})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "username whose list is printed")
	return cmd
}
