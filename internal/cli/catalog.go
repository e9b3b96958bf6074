package cli

import (
	"github.com/spf13/cobra"
)

func newZipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zips",
		Short: "List the zip codes that can be guessed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ZipList

			if err := client.Get("/api/zips", &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRandomItemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "random-item",
		Short: "Show a random home from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Home

			if err := client.Get("/api/random-item", &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
