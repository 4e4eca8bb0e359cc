package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ahgraber/karakeep-client/karakeep"
)

// Config carries everything needed to talk to a Karakeep server. Values are
// resolved in precedence order: command-line flags, then environment
// variables (a .env file in the working directory is loaded first), then the
// YAML config file, then defaults.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	Verbose    bool          `yaml:"verbose"`
	NoValidate bool          `yaml:"no_validate"`
	LogLevel   string        `yaml:"log_level"`
}

// globalFlags holds the pre-subcommand flag values; empty string or false
// means the flag was not set and lower-precedence sources apply.
type globalFlags struct {
	configPath string
	baseURL    string
	apiKey     string
	timeout    time.Duration
	verbose    bool
	noValidate bool
	logLevel   string
}

// loadConfig resolves the effective configuration from flags, environment,
// and the config file.
func loadConfig(flags globalFlags) (*Config, error) {
	// .env in the working directory feeds os.Getenv; a missing file is fine
	_ = godotenv.Load()

	cfg := &Config{
		Timeout:  30 * time.Second,
		LogLevel: "info",
	}

	path := flags.configPath
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		if err := readConfigFile(path, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file %s: %w", path, err)
			}
			// the default config file is optional
		}
	}

	if v := os.Getenv(karakeep.EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(karakeep.EnvAPIKey); v != "" {
		cfg.APIKey = v
	}

	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.apiKey != "" {
		cfg.APIKey = flags.apiKey
	}
	if flags.timeout > 0 {
		cfg.Timeout = flags.timeout
	}
	if flags.verbose {
		cfg.Verbose = true
	}
	if flags.noValidate {
		cfg.NoValidate = true
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	return cfg, nil
}

// readConfigFile unmarshals a YAML config file into cfg in place.
func readConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	return nil
}

// defaultConfigPath returns the config file path following platform
// conventions. Returns empty string if home directory cannot be determined.
func defaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "karakeep", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "karakeep", "config.yaml")
	}
	return ""
}
