package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	Retry     RetryConfig     `yaml:"retry"`
	Matching  MatchingConfig  `yaml:"matching"`
	Crawl     CrawlConfig     `yaml:"crawl"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ProviderConfig holds one provider's rate budget and credentials.
// Credentials pass through to the adapter as-is and are never logged.
type ProviderConfig struct {
	Requests   int    `yaml:"requests"`
	PerSeconds int    `yaml:"per_seconds"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	MusicBrainz ProviderConfig `yaml:"musicbrainz"`
	LastFM      ProviderConfig `yaml:"lastfm"`
	Genius      ProviderConfig `yaml:"genius"`
}

// RetryConfig holds the shared retry policy.
type RetryConfig struct {
	MaxAttempts   int `yaml:"max_attempts"`
	BaseDelayMS   int `yaml:"base_delay_ms"`
	MaxDelayMS    int `yaml:"max_delay_ms"`
	JitterPercent int `yaml:"jitter_percent"`
}

// MatchingConfig holds identity matching settings.
type MatchingConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// CrawlConfig holds crawl bounds and filters.
type CrawlConfig struct {
	MaxReleases    int      `yaml:"max_releases"`
	Concurrency    int      `yaml:"concurrency"`
	ExcludedTitles []string `yaml:"excluded_titles"`
}

// OutputConfig holds result persistence settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level          string `yaml:"level"`
	Format         string `yaml:"format"`
	FilePath       string `yaml:"file_path,omitempty"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb,omitempty"`
	FileMaxFiles   int    `yaml:"file_max_files,omitempty"`
	FileMaxAgeDays int    `yaml:"file_max_age_days,omitempty"`
}

// Default returns a Config with sensible defaults. MusicBrainz gets
// the conservative one-request-per-second budget its terms ask for.
func Default() *Config {
	return &Config{
		Providers: ProvidersConfig{
			MusicBrainz: ProviderConfig{Requests: 1, PerSeconds: 1},
			LastFM:      ProviderConfig{Requests: 5, PerSeconds: 1},
			Genius:      ProviderConfig{Requests: 60, PerSeconds: 30},
		},
		Retry: RetryConfig{
			MaxAttempts:   3,
			BaseDelayMS:   1000,
			MaxDelayMS:    60000,
			JitterPercent: 10,
		},
		Matching: MatchingConfig{Threshold: 0.8},
		Crawl: CrawlConfig{
			Concurrency: 4,
		},
		Output: OutputConfig{Dir: "output"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("CL_LASTFM_API_KEY"); v != "" {
		c.Providers.LastFM.APIKey = v
	}
	if v := os.Getenv("CL_GENIUS_TOKEN"); v != "" {
		c.Providers.Genius.APIKey = v
	}
	if v := os.Getenv("CL_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("CL_MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Matching.Threshold = f
		}
	}
	if v := os.Getenv("CL_MAX_RELEASES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Crawl.MaxReleases = n
		}
	}
	if v := os.Getenv("CL_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Crawl.Concurrency = n
		}
	}
	if v := os.Getenv("CL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CL_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("CL_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	for name, p := range map[string]ProviderConfig{
		"musicbrainz": c.Providers.MusicBrainz,
		"lastfm":      c.Providers.LastFM,
		"genius":      c.Providers.Genius,
	} {
		if p.Requests < 1 || p.PerSeconds < 1 {
			return fmt.Errorf("provider %s: rate budget must be at least 1 request per 1 second", name)
		}
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}
	if c.Retry.JitterPercent < 0 || c.Retry.JitterPercent > 100 {
		return fmt.Errorf("retry jitter_percent must be in [0, 100], got %d", c.Retry.JitterPercent)
	}
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		return fmt.Errorf("matching threshold must be in (0, 1], got %g", c.Matching.Threshold)
	}
	if c.Crawl.Concurrency < 1 {
		return fmt.Errorf("crawl concurrency must be at least 1")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output dir is required")
	}
	return nil
}

// RateBudgets converts the per-provider settings into limiter budgets.
func (c *Config) RateBudgets() map[provider.ProviderName]provider.RateBudget {
	return map[provider.ProviderName]provider.RateBudget{
		provider.NameMusicBrainz: {MaxRequests: c.Providers.MusicBrainz.Requests, WindowSeconds: float64(c.Providers.MusicBrainz.PerSeconds)},
		provider.NameLastFM:      {MaxRequests: c.Providers.LastFM.Requests, WindowSeconds: float64(c.Providers.LastFM.PerSeconds)},
		provider.NameGenius:      {MaxRequests: c.Providers.Genius.Requests, WindowSeconds: float64(c.Providers.Genius.PerSeconds)},
	}
}

// RetryPolicy converts the retry settings into an executor policy.
func (c *Config) RetryPolicy() provider.RetryPolicy {
	return provider.RetryPolicy{
		MaxAttempts:   c.Retry.MaxAttempts,
		BaseDelay:     time.Duration(c.Retry.BaseDelayMS) * time.Millisecond,
		MaxDelay:      time.Duration(c.Retry.MaxDelayMS) * time.Millisecond,
		JitterPercent: uint64(c.Retry.JitterPercent),
	}
}
