package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/legis-cli/internal/model"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the confirmation cache",
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <bill-id>",
	Short: "Show cached parser entries for a bill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		billID := args[0]
		out := make(map[string]any)
		for _, kind := range []model.DocumentKind{model.KindSummary, model.KindVotes} {
			entry, err := store.GetParser(ctx, billID, kind)
			if err != nil {
				return eris.Wrapf(err, "cache: get %s", kind)
			}
			if entry != nil {
				out[string(kind)] = entry
			}
		}
		if len(out) == 0 {
			fmt.Printf("no cached entries for %s\n", billID)
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var cacheConfirmedCmd = &cobra.Command{
	Use:   "confirmed <bill-id> <kind>",
	Short: "Report whether a bill's cached entry was ever confirmed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		confirmed, err := store.IsConfirmed(ctx, args[0], model.DocumentKind(args[1]))
		if err != nil {
			return eris.Wrap(err, "cache: confirmed lookup")
		}
		fmt.Println(confirmed)
		return nil
	},
}

var cacheSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Report whether a keyword appears anywhere in cached values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		found, err := store.Search(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "cache: search")
		}
		fmt.Println(found)
		return nil
	},
}

var cacheClearAnnouncementCmd = &cobra.Command{
	Use:   "clear-announcement <bill-id>",
	Short: "Drop a bill's cached hearing announcement so the next run re-scrapes it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ClearAnnouncement(ctx, args[0]); err != nil {
			return eris.Wrap(err, "cache: clear announcement")
		}
		fmt.Printf("cleared announcement for %s\n", args[0])
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheGetCmd, cacheConfirmedCmd, cacheSearchCmd, cacheClearAnnouncementCmd)
	rootCmd.AddCommand(cacheCmd)
}
