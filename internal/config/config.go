// Package config loads the wardsync configuration exactly once at startup.
// Every other package receives the resulting Config struct by reference and
// never reads environment state directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the external API endpoints. These match the OAuth2 flow used
// by the Member Tools mobile app.
const (
	DefaultAPIBaseURL = "https://membertools-api.churchofjesuschrist.org"
	DefaultTokenURL   = "https://id.churchofjesuschrist.org/oauth2/default/v1/token"
	DefaultClientID   = "0oa18r3e96fyH2lUI358"
)

// Config holds all runtime configuration for a sync run.
type Config struct {
	// Storage
	DBPath string

	// Credential store and seed input
	TokensFile string
	SeedFile   string

	// Rotating sync log (empty disables file logging)
	LogFile string

	// Operational switches
	DryRun     bool // fetch and summarize only, no database writes
	UnitNumber int  // restrict processing to one unit (0 = use home unit)

	// External API
	APIBaseURL  string
	TokenURL    string
	ClientID    string
	Timezone    string
	HTTPTimeout time.Duration
}

// Load builds the configuration from config file and environment via viper.
// Precedence: environment (WARDSYNC_*) > config file > defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config search paths: project .wardsync/ (walking up from CWD), then
	// user config dir, then home.
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			wsDir := filepath.Join(dir, ".wardsync")
			if info, err := os.Stat(wsDir); err == nil && info.IsDir() {
				v.AddConfigPath(wsDir)
				break
			}
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "wardsync"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".wardsync"))
	}

	v.SetEnvPrefix("WARDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", defaultDBPath())
	v.SetDefault("tokens-file", defaultTokensPath())
	v.SetDefault("seed-file", "ward_callings_seed.json")
	v.SetDefault("log-file", "")
	v.SetDefault("dry-run", false)
	v.SetDefault("unit", 0)
	v.SetDefault("api-base-url", DefaultAPIBaseURL)
	v.SetDefault("token-url", DefaultTokenURL)
	v.SetDefault("client-id", DefaultClientID)
	v.SetDefault("timezone", "America/Chicago")
	v.SetDefault("http-timeout", "30s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found - use defaults
	}

	cfg := &Config{
		DBPath:      v.GetString("db"),
		TokensFile:  v.GetString("tokens-file"),
		SeedFile:    v.GetString("seed-file"),
		LogFile:     v.GetString("log-file"),
		DryRun:      v.GetBool("dry-run"),
		UnitNumber:  v.GetInt("unit"),
		APIBaseURL:  v.GetString("api-base-url"),
		TokenURL:    v.GetString("token-url"),
		ClientID:    v.GetString("client-id"),
		Timezone:    v.GetString("timezone"),
		HTTPTimeout: v.GetDuration("http-timeout"),
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	return cfg, nil
}

func defaultDBPath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".wardsync", "wardsync.db")
	}
	return "wardsync.db"
}

func defaultTokensPath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".wardsync", "oauth_tokens.json")
	}
	return ".oauth_tokens.json"
}
