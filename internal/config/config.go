package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

// BackendEnv overrides the backend setting of the config file.
const BackendEnv = "SIDEMAN_CREDITS_BACKEND"

// Config contains the program configuration
type Config struct {
	Backend            string        `yaml:"backend"`
	CachePath          string        `yaml:"cache_path"`
	LoadedTTL          time.Duration `yaml:"loaded_ttl"`
	NotFoundTTL        time.Duration `yaml:"not_found_ttl"`
	ErrorTTL           time.Duration `yaml:"error_ttl"`
	WikipediaAPIURL    string        `yaml:"wikipedia_api_url"`
	MusicBrainzAPIURL  string        `yaml:"musicbrainz_api_url"`
	UserAgent          string        `yaml:"user_agent"`
	SearchLimit        int           `yaml:"search_limit"`
	AmbiguityThreshold float64       `yaml:"ambiguity_threshold"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	Port               int           `yaml:"port"`
	Verbose            bool          `yaml:"verbose"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Backend:            string(credits.BackendWikipedia),
		CachePath:          filepath.Join(homeDir(), ".cache", "sideman", "credits.json"),
		LoadedTTL:          7 * 24 * time.Hour,
		NotFoundTTL:        24 * time.Hour,
		ErrorTTL:           10 * time.Minute,
		WikipediaAPIURL:    "https://en.wikipedia.org/w/api.php",
		MusicBrainzAPIURL:  "https://musicbrainz.org/ws/2",
		UserAgent:          "sideman/1.0 ( https://github.com/jacogrande/sideman )",
		SearchLimit:        5,
		AmbiguityThreshold: 0.08,
		PollInterval:       2 * time.Second,
		Port:               8080,
	}
}

// Load reads .env, the config file at path (or the first standard location
// when path is empty) and the environment overrides, in that order.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg, os.Getenv)
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(BackendEnv)); v != "" {
		cfg.Backend = v
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.CachePath = ExpandHome(cfg.CachePath)

	return cfg, nil
}

// CreditsBackend returns the parsed backend setting. Unrecognized values
// select wikipedia.
func (c *Config) CreditsBackend() credits.Backend {
	return credits.ParseBackend(c.Backend)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./sideman.yaml",
		"./sideman.yml",
		filepath.Join(home, ".config", "sideman", "config.yaml"),
		filepath.Join(home, ".config", "sideman", "config.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "sideman", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "sideman", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid. An unknown backend is not
// an error; it falls back to wikipedia.
func (c *Config) Validate() error {
	if c.CachePath == "" {
		return fmt.Errorf("cache_path cannot be empty")
	}

	for name, ttl := range map[string]time.Duration{
		"loaded_ttl":    c.LoadedTTL,
		"not_found_ttl": c.NotFoundTTL,
		"error_ttl":     c.ErrorTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, ttl)
		}
	}

	if c.SearchLimit < 1 || c.SearchLimit > 50 {
		return fmt.Errorf("search_limit must be between 1 and 50, got %d", c.SearchLimit)
	}

	if c.AmbiguityThreshold < 0 || c.AmbiguityThreshold > 1 {
		return fmt.Errorf("ambiguity_threshold must be between 0.0 and 1.0, got %.2f", c.AmbiguityThreshold)
	}

	if c.PollInterval < 500*time.Millisecond {
		return fmt.Errorf("poll_interval must be at least 500ms, got %s", c.PollInterval)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	for name, u := range map[string]string{
		"wikipedia_api_url":   c.WikipediaAPIURL,
		"musicbrainz_api_url": c.MusicBrainzAPIURL,
	} {
		if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must start with http:// or https://", name)
		}
	}

	return nil
}
