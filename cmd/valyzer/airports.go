package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valyzer/valyzer/internal/cli"
)

func airportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airports",
		Short: "Manage the local airport reference dataset",
	}

	cmd.AddCommand(airportsImportCmd())
	cmd.AddCommand(airportsSearchCmd())

	return cmd
}

func airportsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <airports.csv>",
		Short: "Import an OpenFlights-format airports file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			count, err := store.ImportCSV(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				cli.SuccessStyle.Render(fmt.Sprintf("Imported %d airports", count)))
			return nil
		},
	}
}

func airportsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search airports by city, name or IATA code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			airports, err := store.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(airports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.WarningStyle.Render("No airports found"))
				return nil
			}

			for _, a := range airports {
				fmt.Fprintln(cmd.OutOrStdout(), a.DisplayName())
			}
			return nil
		},
	}
}
