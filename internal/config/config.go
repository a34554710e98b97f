// Package config handles the synchronizer's configuration file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given on the
// command line.
const DefaultPath = "config.yaml"

// DefaultOrganisation is stamped on every serialized publication
// unless the config overrides it.
const DefaultOrganisation = "EI"

// Config holds everything a reconciliation run needs. The platform
// credentials usually come from the environment rather than the file;
// ApplyEnv layers them on top of whatever the file carried.
type Config struct {
	RFUsername string `yaml:"rf_username" json:"rf_username"`
	RFPassword string `yaml:"rf_password" json:"-"`
	// Email identifies the operator to the metadata services that
	// ask for a contact address.
	Email              string `yaml:"email" json:"email"`
	LegacyExportXMLURL string `yaml:"legacy_export_xml_url" json:"legacy_export_xml_url"`
	PeopleDataCSVURL   string `yaml:"people_data_csv_url" json:"people_data_csv_url"`
	Organisation       string `yaml:"organisation" json:"organisation"`
	// BrokenDOIs maps DOIs that are known to be unresolvable to a
	// note explaining what is wrong with them. Enrichment skips
	// these instead of burning retries on them every run.
	BrokenDOIs map[string]string `yaml:"broken_dois" json:"broken_dois"`
}

// envOverrides maps environment variables to config fields.
var envOverrides = map[string]func(*Config, string){
	"RF_USERNAME":           func(c *Config, v string) { c.RFUsername = v },
	"RF_PASSWORD":           func(c *Config, v string) { c.RFPassword = v },
	"PUBSYNC_EMAIL":         func(c *Config, v string) { c.Email = v },
	"LEGACY_EXPORT_XML_URL": func(c *Config, v string) { c.LegacyExportXMLURL = v },
	"PEOPLE_DATA_CSV_URL":   func(c *Config, v string) { c.PeopleDataCSVURL = v },
}

// Load reads the config file at path. A missing or unreadable file is
// not fatal: Load always returns a usable Config with defaults
// applied, and the error tells the caller whether to warn.
func Load(path string) (*Config, error) {
	cfg := &Config{Organisation: DefaultOrganisation}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Organisation == "" {
		cfg.Organisation = DefaultOrganisation
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables on c. Set variables win over
// file values; unset ones leave the file values alone.
func (c *Config) ApplyEnv() {
	for name, set := range envOverrides {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			set(c, v)
		}
	}
}

// ValidateRun checks that c carries everything a full reconciliation
// run needs. The optional feeds are not checked here; the pipeline
// degrades per feed when they are absent.
func (c *Config) ValidateRun() error {
	var missing []string
	if c.RFUsername == "" {
		missing = append(missing, "rf_username (or RF_USERNAME)")
	}
	if c.RFPassword == "" {
		missing = append(missing, "rf_password (or RF_PASSWORD)")
	}
	if c.Email == "" {
		missing = append(missing, "email (or PUBSYNC_EMAIL)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete configuration, missing: %v", missing)
	}
	return nil
}

// ErrNoEmail is returned by ValidateResolve when no contact address is
// configured.
var ErrNoEmail = errors.New("no contact email configured")

// ValidateResolve checks the subset of the config a single-DOI resolve
// needs. Only the contact email is required; the platform credentials
// and feed URLs are not used.
func (c *Config) ValidateResolve() error {
	if c.Email == "" {
		return ErrNoEmail
	}
	return nil
}
