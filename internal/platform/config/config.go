// Package config assembles runtime configuration: process settings from the
// environment (optionally seeded from a .env file) and the per-source feed
// catalog from a YAML file, so endpoints and rate limits change without a
// rebuild.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process-level configuration.
type Config struct {
	Addr          string   `env:"MANDATA_ADDR" envDefault:":8080"`
	DatabaseURL   string   `env:"DATABASE_URL"`
	RedisURL      string   `env:"REDIS_URL"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic    string   `env:"KAFKA_TOPIC" envDefault:"mandata.changes"`
	JWTSigningKey string   `env:"JWT_SIGNING_KEY"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string   `env:"LOG_FORMAT" envDefault:"json"`
	SourcesFile   string   `env:"SOURCES_FILE" envDefault:"sources.yml"`
}

// Load reads the environment into a Config. A .env file in the working
// directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Feed describes one external feed: where it lives and how politely to
// fetch it.
type Feed struct {
	URL string `yaml:"url"`
	// IndexURL and BallotURL serve the roll-call feed (assemblee only):
	// the HTML index page and a printf template for the per-scrutin JSON.
	IndexURL  string `yaml:"index_url"`
	BallotURL string `yaml:"ballot_url"`
	// PersonQuery and PartyQuery are SPARQL bodies (wikidata only).
	PersonQuery string `yaml:"person_query"`
	PartyQuery  string `yaml:"party_query"`
	// PageSize bounds paginated fetches (judilibre only).
	PageSize int `yaml:"page_size"`
	// MinInterval is the minimum delay between two requests to this service.
	MinInterval time.Duration `yaml:"min_interval"`
}

// UnmarshalYAML accepts min_interval as a Go duration string ("500ms");
// yaml.v3 has no native time.Duration decoding.
func (f *Feed) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		URL         string `yaml:"url"`
		IndexURL    string `yaml:"index_url"`
		BallotURL   string `yaml:"ballot_url"`
		PersonQuery string `yaml:"person_query"`
		PartyQuery  string `yaml:"party_query"`
		PageSize    int    `yaml:"page_size"`
		MinInterval string `yaml:"min_interval"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	f.URL = raw.URL
	f.IndexURL = raw.IndexURL
	f.BallotURL = raw.BallotURL
	f.PersonQuery = raw.PersonQuery
	f.PartyQuery = raw.PartyQuery
	f.PageSize = raw.PageSize
	if raw.MinInterval != "" {
		d, err := time.ParseDuration(raw.MinInterval)
		if err != nil {
			return fmt.Errorf("parse min_interval: %w", err)
		}
		f.MinInterval = d
	}
	return nil
}

// Catalog maps source names to their feed definitions.
type Catalog struct {
	Sources map[string]Feed `yaml:"sources"`
}

// LoadCatalog reads the YAML source catalog.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read source catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse source catalog: %w", err)
	}
	return c, nil
}

// Feed returns the catalog entry for a source name.
func (c Catalog) Feed(name string) (Feed, error) {
	f, ok := c.Sources[name]
	if !ok {
		return Feed{}, fmt.Errorf("source %q not in catalog", name)
	}
	return f, nil
}
