package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	committeesChambers []string
	committeesJSON     bool
)

var committeesCmd = &cobra.Command{
	Use:   "committees",
	Short: "List committees discovered on the legislature site",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fetcher, err := initFetcher()
		if err != nil {
			return err
		}

		committees, err := fetcher.Committees(ctx, committeesChambers)
		if err != nil {
			return eris.Wrap(err, "list committees")
		}

		if committeesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(committees)
		}

		for _, c := range committees {
			fmt.Printf("%-5s %-6s %s\n", c.ID, c.Chamber, c.Name)
		}
		return nil
	},
}

func init() {
	committeesCmd.Flags().StringSliceVar(&committeesChambers, "chamber", []string{"Joint", "House"}, "chambers to list")
	committeesCmd.Flags().BoolVar(&committeesJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(committeesCmd)
}
