package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	batchCommittees    []string
	batchFile          string
	batchHeadless      bool
	batchNoExtensions  bool
	batchLimitHearings int
)

// committeeFile is the YAML shape accepted by --file. Either a bare list of
// IDs or a list of committee objects works.
type committeeFile struct {
	Committees []struct {
		ID string `yaml:"id"`
	} `yaml:"committees"`
	IDs []string `yaml:"ids"`
}

func loadCommitteeFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read committee file")
	}
	var parsed committeeFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, eris.Wrap(err, "parse committee file")
	}
	ids := append([]string{}, parsed.IDs...)
	for _, c := range parsed.Committees {
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil, eris.Errorf("no committee IDs in %s", path)
	}
	return ids, nil
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run compliance checks for several committees sequentially",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ids := batchCommittees
		if batchFile != "" {
			fromFile, err := loadCommitteeFile(batchFile)
			if err != nil {
				return err
			}
			ids = append(ids, fromFile...)
		}
		if len(ids) == 0 {
			return eris.New("no committees given: use --committee or --file")
		}

		e, err := initEnv(ctx, batchHeadless, !batchNoExtensions, batchLimitHearings)
		if err != nil {
			return err
		}
		defer e.Close()

		return e.Runner.RunBatch(ctx, ids)
	},
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchCommittees, "committee", nil, "committee ID, repeatable")
	batchCmd.Flags().StringVar(&batchFile, "file", "", "YAML file listing committee IDs")
	batchCmd.Flags().BoolVar(&batchHeadless, "headless", false, "auto-accept candidates instead of prompting")
	batchCmd.Flags().BoolVar(&batchNoExtensions, "no-extensions", false, "skip extension-order collection, use cached extensions only")
	batchCmd.Flags().IntVar(&batchLimitHearings, "limit-hearings", 0, "only process the N oldest hearings per committee (0 = all)")
	rootCmd.AddCommand(batchCmd)
}
