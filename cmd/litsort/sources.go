package main

import (
	"github.com/spf13/cobra"

	"github.com/litsort/litsort/internal/config"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show the effective metadata source chain",
	Long: `Show the source chain a process run would query, in order.

Free sources are always enabled. Scopus needs SCOPUS_API_KEY and
Unpaywall needs UNPAYWALL_EMAIL; without their credential they are
listed but disabled. Order and enablement can be overridden with the
sources and disabled_sources config keys.`,
	RunE: runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	opts := config.LoadOptions(vip)
	creds := config.LoadCredentials()
	_, specs := config.BuildRegistry(creds, opts)

	if !humanOutput {
		return outputJSON(SourcesResponse{Sources: specs})
	}

	for i, s := range specs {
		state := "enabled"
		if !s.Enabled {
			state = "disabled"
			if s.Credential != "" && !s.HasCredential {
				state = "disabled (needs " + s.Credential + ")"
			}
		}
		outputHuman("%d. %-18s %s\n", i+1, s.Name, state)
	}
	return nil
}
