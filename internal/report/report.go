// Package report writes per-committee result artifacts: a JSON file for
// downstream tooling and an XLSX workbook for human review.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/legis-cli/internal/model"
)

// JSONPath returns the artifact path for a committee's JSON results.
func JSONPath(dir, committeeID string) string {
	return filepath.Join(dir, "basic_"+committeeID+".json")
}

// XLSXPath returns the artifact path for a committee's workbook.
func XLSXPath(dir, committeeID string) string {
	return filepath.Join(dir, "basic_"+committeeID+".xlsx")
}

// WriteJSON writes the results as indented JSON, creating dir if needed.
func WriteJSON(path string, results []model.BillResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "report: create output dir")
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return eris.Wrap(err, "report: marshal results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "report: write json")
	}
	return nil
}

// xlsxHeaders is the column order of the workbook. Keep in sync with
// appendRow.
var xlsxHeaders = []string{
	"Bill",
	"Title",
	"Hearing Date",
	"60-Day Deadline",
	"Effective Deadline",
	"Extension Date",
	"Reported Out",
	"Summary",
	"Votes",
	"Notice",
	"Notice Gap (days)",
	"State",
	"Reason",
	"Bill URL",
}

// WriteXLSX writes the results as a single-sheet workbook named after the
// committee.
func WriteXLSX(path, committeeID string, results []model.BillResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "report: create output dir")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(committeeID)
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeaders {
		header.AddCell().SetString(h)
	}
	for _, r := range results {
		appendRow(sheet, r)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}

func appendRow(sheet *xlsx.Sheet, r model.BillResult) {
	row := sheet.AddRow()
	row.AddCell().SetString(r.BillID)
	row.AddCell().SetString(r.BillTitle)
	row.AddCell().SetString(r.HearingDate)
	row.AddCell().SetString(r.Deadline60)
	row.AddCell().SetString(r.EffectiveDeadline)
	row.AddCell().SetString(r.ExtensionDate)
	row.AddCell().SetString(yesNo(r.ReportedOut))
	row.AddCell().SetString(yesNo(r.SummaryPresent))
	row.AddCell().SetString(yesNo(r.VotesPresent))
	row.AddCell().SetString(r.NoticeStatus)
	gap := ""
	if r.NoticeGapDays != nil {
		gap = strconv.Itoa(*r.NoticeGapDays)
	}
	row.AddCell().SetString(gap)
	row.AddCell().SetString(r.State)
	row.AddCell().SetString(r.Reason)
	row.AddCell().SetString(r.BillURL)
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
