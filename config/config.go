// Package config — explicit configuration for the fill workflow.
//
// Every knob lives in one struct: paths, language codes, credentials,
// and the retry/backoff/delay parameters. Defaults can be overridden by
// an optional potool.yaml next to the input catalog, and flags override
// both. Validation runs before any file is touched.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project configuration file.
const FileName = "potool.yaml"

// Environment variables for provider credentials.
const (
	EnvAppID  = "POTOOL_APP_ID"
	EnvAppKey = "POTOOL_APP_KEY"
)

// Config holds everything a fill run needs.
type Config struct {
	// Input is the catalog to fill; Output is where the filled catalog
	// is written (defaults to Input).
	Input  string
	Output string

	// From and To are the provider's language codes.
	From string
	To   string

	// AppID and AppKey are the provider credentials. Never read from
	// potool.yaml — they come from flags, environment, or the
	// credential store.
	AppID  string
	AppKey string

	// CacheFile is the translation cache path.
	CacheFile string

	// Retries is the attempt budget per text.
	Retries int
	// RetryDelay is the base backoff delay (doubled per attempt).
	RetryDelay time.Duration
	// RequestDelay is the pause after each successful API call.
	RequestDelay time.Duration

	// Endpoint overrides the provider API URL (testing, proxies).
	Endpoint string
}

// fileSchema is the potool.yaml shape. Delays are "1s"-style strings.
type fileSchema struct {
	Input        string `yaml:"input"`
	Output       string `yaml:"output"`
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	CacheFile    string `yaml:"cache_file"`
	Retries      int    `yaml:"retries"`
	RetryDelay   string `yaml:"retry_delay"`
	RequestDelay string `yaml:"request_delay"`
	Endpoint     string `yaml:"endpoint"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		From:         "en",
		To:           "zh",
		CacheFile:    "translations.cache.json",
		Retries:      3,
		RetryDelay:   time.Second,
		RequestDelay: time.Second,
	}
}

// Load returns Default overlaid with potool.yaml from dir, if present.
// A missing file is not an error; a malformed one is.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	if file.Input != "" {
		cfg.Input = file.Input
	}
	if file.Output != "" {
		cfg.Output = file.Output
	}
	if file.From != "" {
		cfg.From = file.From
	}
	if file.To != "" {
		cfg.To = file.To
	}
	if file.CacheFile != "" {
		cfg.CacheFile = file.CacheFile
	}
	if file.Retries != 0 {
		cfg.Retries = file.Retries
	}
	if file.Endpoint != "" {
		cfg.Endpoint = file.Endpoint
	}
	if file.RetryDelay != "" {
		d, err := time.ParseDuration(file.RetryDelay)
		if err != nil {
			return cfg, fmt.Errorf("%s: retry_delay: %w", path, err)
		}
		cfg.RetryDelay = d
	}
	if file.RequestDelay != "" {
		d, err := time.ParseDuration(file.RequestDelay)
		if err != nil {
			return cfg, fmt.Errorf("%s: request_delay: %w", path, err)
		}
		cfg.RequestDelay = d
	}
	return cfg, nil
}

// Validate checks the configuration before the run starts. Missing
// credentials are fatal here, before any file is opened.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("no input catalog specified")
	}
	if c.AppID == "" || c.AppKey == "" {
		return fmt.Errorf("missing provider credentials: set %s and %s (or --app-id/--app-key)",
			EnvAppID, EnvAppKey)
	}
	if c.From == "" || c.To == "" {
		return fmt.Errorf("source and target language codes are required")
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.RetryDelay < 0 || c.RequestDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}
