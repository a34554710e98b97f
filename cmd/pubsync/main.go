// Package main provides the pubsync CLI entry point.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pubsync/pubsync/internal/config"
	"github.com/pubsync/pubsync/internal/crossref"
	"github.com/pubsync/pubsync/internal/datacite"
	"github.com/pubsync/pubsync/internal/fetch"
	"github.com/pubsync/pubsync/internal/ra"
	"github.com/pubsync/pubsync/internal/unpaywall"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubsync",
	Short: "Reconcile institutional publication records into a website feed",
	Long: `pubsync reconciles the publications reported on the institute's grant
outcome platform with the feed published on the website.

It pulls reported outcomes, merges them with the previously published
feed, enriches every DOI from its registration agency (Crossref or
DataCite) plus Unpaywall, matches authors against the people roster,
and emits the publications XML the website imports.

Credentials and feed locations come from a YAML config file, a .env
file, or the environment; see 'pubsync config'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

// loadConfig reads the config file and applies environment overrides.
// A missing or unreadable file is only a warning; credentials can come
// entirely from the environment.
func loadConfig(log zerolog.Logger) *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", configPath).Msg("config file not loaded, relying on environment")
	}
	cfg.ApplyEnv()
	return cfg
}

// userAgent identifies the synchronizer to the metadata services, with
// a contact address as Crossref's etiquette asks.
func userAgent(email string) string {
	return fmt.Sprintf("pubsync/%s (https://github.com/pubsync/pubsync; mailto:%s)", Version, email)
}

// metadataStack bundles the clients every DOI resolution needs.
type metadataStack struct {
	feeds    *fetch.Client
	resolver *ra.Resolver
	crossref *crossref.Normalizer
	datacite *datacite.Normalizer
}

// newMetadataStack builds the shared resolution and normalization
// clients.
func newMetadataStack(log zerolog.Logger, email string) *metadataStack {
	feeds := fetch.New(fetch.WithLogger(log))

	// Crossref closes the connection after every response, so
	// keep-alives only produce connection resets there. The polite
	// pool expects a contact address and a modest request rate.
	crossrefFetch := fetch.New(
		fetch.WithHTTPClient(&http.Client{Transport: &http.Transport{DisableKeepAlives: true}}),
		fetch.WithUserAgent(userAgent(email)),
		fetch.WithRateLimit(2),
		fetch.WithLogger(log),
	)

	return &metadataStack{
		feeds:    feeds,
		resolver: ra.New(feeds),
		crossref: crossref.NewNormalizer(crossref.NewClient(crossrefFetch), unpaywall.New(feeds, email)),
		datacite: datacite.NewNormalizer(datacite.NewClient(feeds)),
	}
}
