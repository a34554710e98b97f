package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pubsync/pubsync/internal/config"
	"github.com/pubsync/pubsync/internal/fetch"
	"github.com/pubsync/pubsync/internal/logging"
	"github.com/pubsync/pubsync/internal/pubxml"
	"github.com/pubsync/pubsync/internal/reconcile"
	"github.com/pubsync/pubsync/internal/record"
	"github.com/pubsync/pubsync/internal/researchfish"
	"github.com/pubsync/pubsync/internal/roster"
)

var (
	runMaxPages int
	runXMLPath  string
)

func init() {
	// Load .env file if present (for RF_USERNAME and friends)
	_ = godotenv.Load()

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVarP(&runMaxPages, "pages", "p", 0, "Cap on outcome feed pages pulled (0 = all)")
	runCmd.Flags().StringVarP(&runXMLPath, "xml", "x", "", "XML output path; if not set, no feed is written")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full reconciliation and emit the publications feed",
	Long: `Run a full reconciliation pass:

  1. Seed the record set from the previously published feed.
  2. Pull the reported publication outcomes from the grant platform.
  3. Enrich every DOI from its registration agency and Unpaywall.
  4. Match authors against the people roster.
  5. Emit the publications XML for the website.

Publications that cannot be enriched are logged and left out of the
feed; only an unreachable upstream service aborts the run. Steps 4
and 5 need --xml; without it the pass stops after enrichment and the
outcome lives in the logs only.`,
	RunE: runReconciliation,
}

func runReconciliation(cmd *cobra.Command, args []string) error {
	log := logging.New(verbose)
	cfg := loadConfig(log)
	if err := cfg.ValidateRun(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	ctx := cmd.Context()

	platform, err := researchfish.New(researchfish.WithFetchOptions(fetch.WithLogger(log)))
	if err != nil {
		exitWithError(ExitError, "building platform client: %v", err)
	}
	if err := platform.Login(ctx, cfg.RFUsername, cfg.RFPassword); err != nil {
		exitWithError(ExitConfigError, "logging in to the outcome platform: %v", err)
	}

	stack := newMetadataStack(log, cfg.Email)
	pipeline := reconcile.New(platform, stack.resolver, stack.crossref, stack.datacite, stack.feeds,
		reconcile.WithBrokenDOIs(cfg.BrokenDOIs),
		reconcile.WithLogger(log),
	)

	set, err := pipeline.Run(ctx, reconcile.Options{
		LegacyFeedURL: cfg.LegacyExportXMLURL,
		MaxPages:      runMaxPages,
	})
	if err != nil {
		exitWithError(ExitError, "reconciliation failed: %v", err)
	}

	if err := writeFeed(ctx, log, cfg, stack.feeds, set, runXMLPath); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}

// writeFeed matches contributors against the people roster, renders
// the publications feed for set, and writes it to path. An empty path
// skips emission entirely, the roster fetch included; the results of
// the run then live only in the logs.
func writeFeed(ctx context.Context, log zerolog.Logger, cfg *config.Config, fc *fetch.Client, set *record.Set, path string) error {
	if path == "" {
		log.Info().Int("dois", set.Len()).Int("enriched", set.Enriched()).Msg("no XML output path set, feed not written")
		return nil
	}
	matcher := loadRoster(ctx, log, cfg, fc)
	out, err := pubxml.NewWriter(cfg.Organisation, matcher).Render(set)
	if err != nil {
		return fmt.Errorf("rendering publications feed: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing publications feed: %w", err)
	}
	log.Info().Str("path", path).Int("bytes", len(out)).Msg("publications feed written")
	return nil
}

// loadRoster fetches and parses the people table. Roster problems are
// never fatal; a missing or partial roster only degrades contributor
// matching.
func loadRoster(ctx context.Context, log zerolog.Logger, cfg *config.Config, fc *fetch.Client) *roster.Matcher {
	if cfg.PeopleDataCSVURL == "" {
		log.Warn().Msg("people data URL not configured, contributors will not be matched")
		return roster.NewMatcher(nil, log)
	}
	data, err := fc.Get(ctx, cfg.PeopleDataCSVURL, nil, nil)
	if err != nil {
		log.Warn().Err(err).Msg("fetching people data failed, contributors will not be matched")
		return roster.NewMatcher(nil, log)
	}
	people, warnings, err := roster.ParseCSV(data)
	if err != nil {
		log.Warn().Err(err).Msg("parsing people data failed, contributors will not be matched")
		return roster.NewMatcher(nil, log)
	}
	for _, w := range warnings {
		log.Warn().Msg(w.Error())
	}
	log.Info().Int("people", len(people)).Msg("people roster loaded")
	return roster.NewMatcher(people, log)
}
