// Package main provides the litsort CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/litsort/litsort/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// vip holds the layered pipeline configuration (file, env, defaults).
var vip = viper.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "litsort",
	Short: "Metadata resolution and filing for academic PDF collections",
	Long: `litsort names, files, and catalogs directories of academic PDFs.

For each document it pulls out a DOI, resolves bibliographic metadata
through a chain of scholarly APIs (OpenAlex, Crossref, DataCite,
Europe PMC, Semantic Scholar, Scopus, Unpaywall), optionally falls
back to AI extraction with title validation, then renames the file to
its citation and routes it into a folder matching the confidence of
what was found.

All commands output JSON by default for agent integration.
Use --human flag for human-readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (for API keys and contact emails)
	_ = godotenv.Load()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litsort.yaml or ~/.config/litsort/litsort.yaml)")
	rootCmd.Version = Version
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	config.InitViper(vip, cfgFile)
}
