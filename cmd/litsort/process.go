package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/litsort/litsort/internal/ai"
	"github.com/litsort/litsort/internal/batch"
	"github.com/litsort/litsort/internal/config"
	"github.com/litsort/litsort/internal/organize"
	"github.com/litsort/litsort/internal/pdf"
	"github.com/litsort/litsort/internal/pipeline"
	"github.com/litsort/litsort/internal/report"
)

var (
	processWorkers        int
	processOCR            bool
	processBackups        bool
	processMoveUnresolved bool
	processSeparateAI     bool
	processReferences     bool
	processCategorize     []string
	processAI             bool
	processDryRun         bool
)

func init() {
	rootCmd.AddCommand(processCmd)
	registerProcessFlags(processCmd)
}

func registerProcessFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&processWorkers, "workers", config.DefaultWorkers, "Concurrent document workers")
	cmd.Flags().BoolVar(&processOCR, "ocr", false, "Recognize text on scanned documents (needs tesseract and pdftoppm)")
	cmd.Flags().BoolVar(&processBackups, "backups", true, "Copy originals into backups/ before renaming")
	cmd.Flags().BoolVar(&processMoveUnresolved, "move-unresolved", false, "Move unresolved documents into 'Unnamed Article'")
	cmd.Flags().BoolVar(&processSeparateAI, "separate-ai-folder", false, "File AI-derived names under 'AI Named Content'")
	cmd.Flags().BoolVar(&processReferences, "references", false, "Write the litsort-report.jsonl outcome ledger")
	cmd.Flags().StringSliceVar(&processCategorize, "categorize", nil, "Copy renamed documents into 'Categorized Article' by dimension (journal,author,year,subject)")
	cmd.Flags().BoolVar(&processAI, "ai", false, "Fall back to AI metadata extraction when no DOI resolves")
	cmd.Flags().BoolVar(&processDryRun, "dry-run", false, "Resolve and report without touching any file")
}

var processCmd = &cobra.Command{
	Use:   "process <dir>",
	Short: "Resolve metadata and file every PDF in a directory",
	Long: `Process every top-level PDF in a directory: extract a DOI, resolve its
metadata through the source chain, rename the file to "(Author, Year) -
Title.pdf", and route it by confidence:

  HIGH    -> Named Article/     (DOI-resolved or validated AI metadata)
  MEDIUM  -> Named Article/     (unvalidated AI metadata; see --separate-ai-folder)
  FAILED  -> left in place      (or Unnamed Article/ with --move-unresolved)

Examples:
  litsort process ~/papers
  litsort process --ai --separate-ai-folder ~/papers
  litsort process --references --categorize journal,year ~/papers
  litsort process --dry-run --human ~/papers`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		exitWithError(ExitDataError, "not a directory: %s", dir)
	}

	opts := config.LoadOptions(vip)
	applyProcessFlags(cmd, opts)

	for _, dim := range opts.Categorize {
		if !validDimension(dim) {
			exitWithError(ExitConfigError, "unknown categorize dimension %q (want journal, author, year or subject)", dim)
		}
	}

	creds := config.LoadCredentials()
	registry, _ := config.BuildRegistry(creds, opts)

	var ocr pdf.OCR
	if opts.OCR {
		t := &pdf.Tesseract{}
		if !t.Available() {
			exitWithError(ExitConfigError, "OCR needs tesseract and pdftoppm on PATH")
		}
		ocr = t
	}

	var guesser pipeline.Guesser
	if opts.AI {
		if creds.AIAPIKey == "" {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		guesser = ai.NewClient(creds.AIAPIKey,
			ai.WithModel(opts.AIModel),
			ai.WithRequestsPerMinute(opts.AIRequestsPerMinute))
	}

	p := &pipeline.Pipeline{
		Root:    dir,
		Extract: func(path string) (*pdf.Extraction, error) { return pdf.Extract(path, ocr) },
		Sources: registry,
		AI:      guesser,
		Opts: pipeline.Options{
			Backups:          opts.Backups,
			MoveUnresolved:   opts.MoveUnresolved,
			SeparateAIFolder: opts.SeparateAIFolder,
			Categorize:       opts.Categorize,
			DryRun:           opts.DryRun,
		},
	}

	// Ctrl-C stops dispatching new documents; in-flight ones finish.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	summary, runErr := batch.Run(ctx, dir, p, batch.Options{Workers: opts.Workers}, progressPrinter())
	if summary == nil {
		exitWithError(ExitError, "processing %s: %v", dir, runErr)
	}

	snap := summary.Stats.Snapshot()
	resp := ProcessResponse{
		Directory:   dir,
		DryRun:      opts.DryRun,
		Processed:   snap.Processed,
		Renamed:     snap.Renamed,
		Problematic: snap.Problematic,
		Categories:  snap.Categories,
		Interrupted: runErr != nil,
	}
	if opts.References {
		resp.References = summary.References()
	}
	if opts.References && !opts.DryRun {
		ledgerPath := filepath.Join(dir, report.LedgerName)
		rows := make([]report.Row, 0, len(summary.Tasks))
		for _, t := range summary.Tasks {
			rows = append(rows, report.RowFromTask(t))
		}
		if err := report.WriteLedger(ledgerPath, rows); err != nil {
			exitWithError(ExitError, "writing outcome ledger: %v", err)
		}
		resp.Ledger = ledgerPath
	}
	if opts.DryRun {
		resp.Tasks = summary.Tasks
	}

	if humanOutput {
		printProcessHuman(resp)
	} else {
		outputJSON(resp)
	}

	if runErr != nil {
		os.Exit(ExitError)
	}
	return nil
}

// applyProcessFlags lets explicitly set flags win over config file and env.
func applyProcessFlags(cmd *cobra.Command, opts *config.Options) {
	f := cmd.Flags()
	if f.Changed("workers") {
		opts.Workers = processWorkers
	}
	if f.Changed("ocr") {
		opts.OCR = processOCR
	}
	if f.Changed("backups") {
		opts.Backups = processBackups
	}
	if f.Changed("move-unresolved") {
		opts.MoveUnresolved = processMoveUnresolved
	}
	if f.Changed("separate-ai-folder") {
		opts.SeparateAIFolder = processSeparateAI
	}
	if f.Changed("references") {
		opts.References = processReferences
	}
	if f.Changed("categorize") {
		opts.Categorize = processCategorize
	}
	if f.Changed("ai") {
		opts.AI = processAI
	}
	if f.Changed("dry-run") {
		opts.DryRun = processDryRun
	}
	if opts.Workers <= 0 {
		opts.Workers = config.DefaultWorkers
	}
}

func validDimension(dim string) bool {
	switch dim {
	case organize.DimJournal, organize.DimAuthor, organize.DimYear, organize.DimSubject:
		return true
	}
	return false
}

// progressPrinter renders per-document completion events: prose lines in
// human mode, one JSON object per line otherwise.
func progressPrinter() batch.Progress {
	return func(ev batch.Event) {
		if humanOutput {
			status := "ok"
			if !ev.Success {
				status = "failed"
			}
			outputHuman("[%3.0f%%] %-6s %s\n", ev.Percent, status, ev.Filename)
		} else {
			outputJSONCompact(ev)
		}
	}
}

// printProcessHuman prints the batch result in human-readable format.
func printProcessHuman(resp ProcessResponse) {
	if resp.Processed == 0 && !resp.Interrupted {
		outputHuman("No PDF documents found in %s\n", resp.Directory)
		return
	}

	if resp.DryRun {
		outputHuman("\nDry run - no changes made\n")
		for _, t := range resp.Tasks {
			name := filepath.Base(t.Path)
			if t.FinalPath != "" {
				outputHuman("  %s -> %s\n", name, t.FinalPath)
			} else if t.ErrorTag != "" {
				outputHuman("  %s stays (%s)\n", name, t.ErrorTag)
			} else {
				outputHuman("  %s stays\n", name)
			}
		}
	}

	outputHuman("\nProcessed:   %d\n", resp.Processed)
	outputHuman("Renamed:     %d\n", resp.Renamed)
	outputHuman("Problematic: %d\n", resp.Problematic)
	for dim, counts := range resp.Categories {
		outputHuman("Categorized by %s: %d values\n", dim, len(counts))
	}
	if resp.Ledger != "" {
		outputHuman("Ledger:      %s\n", resp.Ledger)
	}
	if resp.Interrupted {
		outputHuman("Interrupted before completion.\n")
	}
}
