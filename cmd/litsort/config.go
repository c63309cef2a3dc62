package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/litsort/litsort/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and its origins",
	Long: `Show the pipeline options a run would use, the config file they came
from, and which credentials are present. Credential values are never
printed.`,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	opts := config.LoadOptions(vip)
	creds := config.LoadCredentials()

	resp := ConfigShowResponse{
		Options:          opts,
		ConfigFile:       vip.ConfigFileUsed(),
		GlobalConfigPath: config.GlobalConfigPath(),
		Credentials: map[string]bool{
			"scopus_api_key":  creds.ScopusAPIKey != "",
			"unpaywall_email": creds.UnpaywallEmail != "",
			"s2_api_key":      creds.S2APIKey != "",
			"openalex_email":  creds.OpenAlexEmail != "",
			"crossref_email":  creds.CrossrefEmail != "",
			"ai_api_key":      creds.AIAPIKey != "",
		},
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	if resp.ConfigFile != "" {
		outputHuman("Config file:   %s\n", resp.ConfigFile)
	} else {
		outputHuman("Config file:   (none found)\n")
	}
	outputHuman("Global config: %s\n", resp.GlobalConfigPath)

	outputHuman("\nOptions:\n")
	outputHuman("  workers:                %d\n", opts.Workers)
	outputHuman("  ocr:                    %v\n", opts.OCR)
	outputHuman("  backups:                %v\n", opts.Backups)
	outputHuman("  move_unresolved:        %v\n", opts.MoveUnresolved)
	outputHuman("  separate_ai_folder:     %v\n", opts.SeparateAIFolder)
	outputHuman("  references:             %v\n", opts.References)
	outputHuman("  categorize:             %v\n", opts.Categorize)
	outputHuman("  ai:                     %v\n", opts.AI)
	outputHuman("  ai_model:               %s\n", opts.AIModel)
	outputHuman("  ai_requests_per_minute: %d\n", opts.AIRequestsPerMinute)
	outputHuman("  sources:                %v\n", opts.Sources)
	outputHuman("  disabled_sources:       %v\n", opts.DisabledSources)
	outputHuman("  dry_run:                %v\n", opts.DryRun)

	outputHuman("\nCredentials present:\n")
	keys := make([]string, 0, len(resp.Credentials))
	for k := range resp.Credentials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		mark := "no"
		if resp.Credentials[k] {
			mark = "yes"
		}
		outputHuman("  %-18s %s\n", k, mark)
	}
	return nil
}
