package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
)

// Environment variable and config file keys for each setting.
const (
	KeyURL         = "MEILISEARCH_URL"
	KeyAPIKey      = "MEILISEARCH_API_KEY"
	KeyAPIKeyFile  = "MEILISEARCH_API_KEY_FILE"
	KeyIndex       = "MEILISEARCH_INDEX"
	KeyResultLimit = "RESULTS_LIMIT"

	// PathEnv names the config file when no explicit path is given.
	PathEnv     = "MEILIDOCS_CONFIG"
	DefaultPath = ".meilidocs.json"
)

// Config holds the user-facing settings of the search tool.
type Config struct {
	MeilisearchURL    string        // Root of the Meilisearch instance
	MeilisearchAPIKey string        // Bearer credential; empty sends no Authorization header
	MeilisearchIndex  string        // Index to search
	ResultsLimit      int           // Max hits requested per search
	Timeout           time.Duration // Per-request timeout
}

// fileConfig mirrors the config file. Absent keys leave defaults untouched.
type fileConfig struct {
	URL          *string `json:"MEILISEARCH_URL"`
	APIKey       *string `json:"MEILISEARCH_API_KEY"`
	Index        *string `json:"MEILISEARCH_INDEX"`
	ResultsLimit *int    `json:"RESULTS_LIMIT"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		MeilisearchURL:    "http://meilisearch:7700",
		MeilisearchAPIKey: "",
		MeilisearchIndex:  "web_docs",
		ResultsLimit:      5,
		Timeout:           10 * time.Second,
	}
}

// ResolvePath returns path, or the MEILIDOCS_CONFIG value, or DefaultPath.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(PathEnv); env != "" {
		return env
	}
	return DefaultPath
}

// Load builds a Config from defaults, the optional config file at path and
// the environment, in that order of precedence (later wins).
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := cfg.applyFile(ResolvePath(path)); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Config files may carry comments and trailing commas
	var fc fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if fc.URL != nil {
		c.MeilisearchURL = *fc.URL
	}
	if fc.APIKey != nil {
		c.MeilisearchAPIKey = *fc.APIKey
	}
	if fc.Index != nil {
		c.MeilisearchIndex = *fc.Index
	}
	if fc.ResultsLimit != nil {
		c.ResultsLimit = *fc.ResultsLimit
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(KeyURL); ok {
		c.MeilisearchURL = v
	}
	if v, ok := os.LookupEnv(KeyAPIKey); ok {
		c.MeilisearchAPIKey = v
	}
	// Docker secrets
	if keyFile := os.Getenv(KeyAPIKeyFile); keyFile != "" {
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", KeyAPIKeyFile, err)
		}
		c.MeilisearchAPIKey = strings.TrimSpace(string(content))
	}
	if v, ok := os.LookupEnv(KeyIndex); ok {
		c.MeilisearchIndex = v
	}
	if v, ok := os.LookupEnv(KeyResultLimit); ok {
		limit, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", KeyResultLimit, v, err)
		}
		c.ResultsLimit = limit
	}
	return nil
}
