package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/litsort/litsort/internal/ai"
)

// Defaults for pipeline options not set in the config file.
const (
	DefaultWorkers = 4
)

// Options is the pipeline configuration, layered from litsort.yaml,
// LITSORT_* environment variables, and command-line flags.
type Options struct {
	Workers             int      `json:"workers"`
	OCR                 bool     `json:"ocr"`
	Backups             bool     `json:"backups"`
	MoveUnresolved      bool     `json:"move_unresolved"`
	SeparateAIFolder    bool     `json:"separate_ai_folder"`
	References          bool     `json:"references"`
	Categorize          []string `json:"categorize,omitempty"`
	AI                  bool     `json:"ai"`
	AIModel             string   `json:"ai_model"`
	AIRequestsPerMinute int      `json:"ai_requests_per_minute"`
	Sources             []string `json:"sources,omitempty"`
	DisabledSources     []string `json:"disabled_sources,omitempty"`
	DryRun              bool     `json:"dry_run"`
}

// InitViper points v at the pipeline config sources: an explicit file
// when given, otherwise litsort.yaml in the working directory or
// ~/.config/litsort/, with LITSORT_* environment overrides.
func InitViper(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("litsort")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", GlobalConfigDir))
		}
	}

	v.SetEnvPrefix("LITSORT")
	v.AutomaticEnv()

	setDefaults(v)

	// A missing config file is fine; defaults and env still apply.
	_ = v.ReadInConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("ocr", false)
	v.SetDefault("backups", true)
	v.SetDefault("move_unresolved", false)
	v.SetDefault("separate_ai_folder", false)
	v.SetDefault("references", false)
	v.SetDefault("categorize", []string{})
	v.SetDefault("ai", false)
	v.SetDefault("ai_model", ai.DefaultModel)
	v.SetDefault("ai_requests_per_minute", ai.DefaultRequestsPerMinute)
	v.SetDefault("sources", []string{})
	v.SetDefault("disabled_sources", []string{})
	v.SetDefault("dry_run", false)
}

// LoadOptions reads the effective pipeline options out of v.
func LoadOptions(v *viper.Viper) *Options {
	opts := &Options{
		Workers:             v.GetInt("workers"),
		OCR:                 v.GetBool("ocr"),
		Backups:             v.GetBool("backups"),
		MoveUnresolved:      v.GetBool("move_unresolved"),
		SeparateAIFolder:    v.GetBool("separate_ai_folder"),
		References:          v.GetBool("references"),
		Categorize:          v.GetStringSlice("categorize"),
		AI:                  v.GetBool("ai"),
		AIModel:             v.GetString("ai_model"),
		AIRequestsPerMinute: v.GetInt("ai_requests_per_minute"),
		Sources:             v.GetStringSlice("sources"),
		DisabledSources:     v.GetStringSlice("disabled_sources"),
		DryRun:              v.GetBool("dry_run"),
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return opts
}
