package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/logging"
	"github.com/pubsync/pubsync/internal/record"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve DOI [DOI...]",
	Short: "Resolve single DOIs and print their normalized metadata",
	Long: `Resolve each DOI through its registration agency and print the
normalized metadata as JSON.

Useful for checking why a publication fails enrichment before deciding
whether it belongs in broken_dois.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

// ResolveResponse is the JSON output for one resolved DOI.
type ResolveResponse struct {
	DOI      string           `json:"doi"`
	Agency   string           `json:"agency"`
	Metadata *record.Metadata `json:"metadata"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	log := logging.New(verbose)
	cfg := loadConfig(log)
	if err := cfg.ValidateResolve(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	ctx := cmd.Context()
	stack := newMetadataStack(log, cfg.Email)

	failed := false
	for _, raw := range args {
		d, err := doi.Parse(raw)
		if err != nil {
			log.Error().Err(err).Str("doi", raw).Msg("resolution failed")
			failed = true
			continue
		}

		agency, err := stack.resolver.Agency(ctx, d)
		if err != nil {
			log.Error().Err(err).Str("doi", d.String()).Msg("resolution failed")
			failed = true
			continue
		}

		var meta *record.Metadata
		switch agency {
		case "Crossref":
			meta, err = stack.crossref.Normalize(ctx, d)
		case "DataCite":
			meta, err = stack.datacite.Normalize(ctx, d)
		default:
			err = fmt.Errorf("unknown registration agency %q", agency)
		}
		if err != nil {
			log.Error().Err(err).Str("doi", d.String()).Str("agency", agency).Msg("normalization failed")
			failed = true
			continue
		}

		outputJSON(ResolveResponse{DOI: d.String(), Agency: agency, Metadata: meta})
	}

	if failed {
		os.Exit(ExitDataError)
	}
	return nil
}
