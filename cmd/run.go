package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runCommitteeID    string
	runHeadless       bool
	runNoExtensions   bool
	runLimitHearings  int
	runPrintArtifacts bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run compliance checks for a single committee",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, runHeadless, !runNoExtensions, runLimitHearings)
		if err != nil {
			return err
		}
		defer e.Close()

		results, err := e.Runner.RunCommittee(ctx, runCommitteeID)
		if err != nil {
			return eris.Wrap(err, "committee run")
		}

		zap.L().Info("run complete",
			zap.String("committee_id", runCommitteeID),
			zap.Int("bills", len(results)),
		)

		if runPrintArtifacts {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runCommitteeID, "committee", "", "committee ID, e.g. J33 (required)")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "auto-accept candidates instead of prompting")
	runCmd.Flags().BoolVar(&runNoExtensions, "no-extensions", false, "skip extension-order collection, use cached extensions only")
	runCmd.Flags().IntVar(&runLimitHearings, "limit-hearings", 0, "only process the N oldest hearings (0 = all)")
	runCmd.Flags().BoolVar(&runPrintArtifacts, "print", false, "print result JSON to stdout")
	_ = runCmd.MarkFlagRequired("committee")
	rootCmd.AddCommand(runCmd)
}
