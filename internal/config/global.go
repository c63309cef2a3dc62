// Package config handles litsort's pipeline options, global credentials,
// and source registry assembly.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents credentials stored in ~/.config/litsort/config.yml.
type GlobalConfig struct {
	ScopusAPIKey   string `yaml:"scopus_api_key,omitempty"`
	UnpaywallEmail string `yaml:"unpaywall_email,omitempty"`
	S2APIKey       string `yaml:"s2_api_key,omitempty"`
	OpenAlexEmail  string `yaml:"openalex_email,omitempty"`
	CrossrefEmail  string `yaml:"crossref_email,omitempty"`
	AIAPIKey       string `yaml:"ai_api_key,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "litsort"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/litsort/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment value when set, falling back to
// the config file value. Credentials in the process environment always
// win over the file.
func GetConfigValue(envKey, configValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configValue
}

// GetScopusAPIKey returns the Scopus API key.
func GetScopusAPIKey() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("SCOPUS_API_KEY", cfg.ScopusAPIKey)
}

// GetUnpaywallEmail returns the Unpaywall contact email.
func GetUnpaywallEmail() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("UNPAYWALL_EMAIL", cfg.UnpaywallEmail)
}

// GetS2APIKey returns the Semantic Scholar API key.
func GetS2APIKey() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("S2_API_KEY", cfg.S2APIKey)
}

// GetOpenAlexEmail returns the OpenAlex polite-pool email.
func GetOpenAlexEmail() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("OPENALEX_EMAIL", cfg.OpenAlexEmail)
}

// GetCrossrefEmail returns the Crossref contact email.
func GetCrossrefEmail() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("CROSSREF_EMAIL", cfg.CrossrefEmail)
}

// GetAIAPIKey returns the generative-service API key. ANTHROPIC_API_KEY
// is honored so the service's own tooling conventions keep working.
func GetAIAPIKey() string {
	if v := os.Getenv("AI_API_KEY"); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("ANTHROPIC_API_KEY", cfg.AIAPIKey)
}

// HelpfulConfigMessage explains how to set up credentials that a run
// is missing.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`Missing credentials.

Tip: Create %s to store API keys and contact emails:
  mkdir -p %s
  echo 'scopus_api_key: your-key' >> %s
  echo 'unpaywall_email: you@example.org' >> %s

Environment variables (SCOPUS_API_KEY, UNPAYWALL_EMAIL, S2_API_KEY,
OPENALEX_EMAIL, CROSSREF_EMAIL, AI_API_KEY) take priority over the file.`,
		configPath,
		filepath.Dir(configPath),
		configPath,
		configPath)
}
