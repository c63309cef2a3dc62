package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litsort/litsort/internal/report"
)

var reportBibBy string

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportSummaryCmd)
	reportCmd.AddCommand(reportFailuresCmd)
	reportCmd.AddCommand(reportBibCmd)
	reportBibCmd.Flags().StringVar(&reportBibBy, "by", "journal", "Dimension to group by (journal, author, year, subject)")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Query a batch outcome ledger",
	Long: `Query the litsort-report.jsonl ledger written by 'litsort process
--references'. The ledger is loaded into an ephemeral in-memory SQLite
database for querying; nothing on disk is modified.`,
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary <dir>",
	Short: "Outcome counts by method, tier and error tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportSummary,
}

var reportFailuresCmd = &cobra.Command{
	Use:   "failures <dir>",
	Short: "List problematic documents and why they failed",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportFailures,
}

var reportBibCmd = &cobra.Command{
	Use:   "bib <dir>",
	Short: "Reference strings grouped by a categorization dimension",
	Long: `Print full reference strings for every successfully resolved document,
grouped by a dimension value.

Examples:
  litsort report bib ~/papers
  litsort report bib --by year --human ~/papers`,
	Args: cobra.ExactArgs(1),
	RunE: runReportBib,
}

// openLedger loads the ledger under dir (or a ledger file path given
// directly) into an in-memory database. The caller closes the DB.
func openLedger(arg string) *report.DB {
	path := arg
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		path = filepath.Join(arg, report.LedgerName)
	}
	if _, err := os.Stat(path); err != nil {
		exitWithError(ExitDataError, "no ledger at %s (run 'litsort process --references' first)", path)
	}

	db, err := report.OpenMemory()
	if err != nil {
		exitWithError(ExitError, "opening report database: %v", err)
	}
	if _, err := db.LoadLedger(path); err != nil {
		db.Close()
		exitWithError(ExitDataError, "loading ledger: %v", err)
	}
	return db
}

func runReportSummary(cmd *cobra.Command, args []string) error {
	db := openLedger(args[0])
	defer db.Close()

	sum, err := db.Summary()
	if err != nil {
		exitWithError(ExitError, "summarizing ledger: %v", err)
	}

	if !humanOutput {
		return outputJSON(sum)
	}

	outputHuman("Total:       %d\n", sum.Total)
	outputHuman("Renamed:     %d\n", sum.Renamed)
	outputHuman("Problematic: %d\n", sum.Problematic)
	printCountsHuman("By method", sum.ByMethod)
	printCountsHuman("By tier", sum.ByTier)
	printCountsHuman("By error tag", sum.ByTag)
	return nil
}

// printCountsHuman prints a count map sorted by key.
func printCountsHuman(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outputHuman("\n%s:\n", title)
	for _, k := range keys {
		outputHuman("  %-28s %d\n", k, counts[k])
	}
}

func runReportFailures(cmd *cobra.Command, args []string) error {
	db := openLedger(args[0])
	defer db.Close()

	failures, err := db.Failures()
	if err != nil {
		exitWithError(ExitError, "listing failures: %v", err)
	}

	if !humanOutput {
		return outputJSON(failures)
	}

	if len(failures) == 0 {
		outputHuman("No problematic documents.\n")
		return nil
	}
	for _, f := range failures {
		tag := f.ErrorTag
		if tag == "" {
			tag = "unknown"
		}
		outputHuman("%s\n  method: %s  tier: %s  tag: %s\n", f.File, f.Method, f.Tier, tag)
	}
	return nil
}

func runReportBib(cmd *cobra.Command, args []string) error {
	db := openLedger(args[0])
	defer db.Close()

	groups, err := db.BibliographyBy(reportBibBy)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if !humanOutput {
		return outputJSON(groups)
	}

	for i, g := range groups {
		if i > 0 {
			outputHuman("\n")
		}
		value := g.Value
		if value == "" {
			value = "(none)"
		}
		outputHuman("%s\n%s\n", value, strings.Repeat("-", len(value)))
		for _, ref := range g.References {
			outputHuman("  %s\n", ref)
		}
	}
	return nil
}
