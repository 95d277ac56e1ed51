package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. LOOMPLAN_LOG_LEVEL.
const EnvPrefix = "LOOMPLAN"

// Config represents the complete loomplan configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Estimate EstimateConfig `mapstructure:"estimate"`
	Output   OutputConfig   `mapstructure:"output"`
}

// LogConfig controls diagnostic logging to stderr
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format is text or json
	Format string `mapstructure:"format"`
}

// LLMConfig controls the Claude collaborator used for decomposition and
// dependency suggestions
type LLMConfig struct {
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	MaxTokens int    `mapstructure:"max_tokens"`
	// Timeout bounds a single API call
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxTasks caps the number of tasks a decomposition may return
	MaxTasks           int    `mapstructure:"max_tasks"`
	DependencyTemplate string `mapstructure:"dependency_template"`
	DecomposeTemplate  string `mapstructure:"decompose_template"`
}

// ScheduleConfig controls calendar layout
type ScheduleConfig struct {
	// StartDate is YYYY-MM-DD; empty means today
	StartDate string `mapstructure:"start_date"`
}

// EstimateConfig controls duration estimates
type EstimateConfig struct {
	// Buffer multiplies the base estimate of each complexity tier
	Buffer float64 `mapstructure:"buffer"`
}

// OutputConfig controls how plans are printed
type OutputConfig struct {
	// Format is text, json or dot
	Format string `mapstructure:"format"`
	// Color forces colour on or off; "auto" follows the terminal
	Color string `mapstructure:"color"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		LLM: LLMConfig{
			Model:     "claude-sonnet-4-5",
			MaxTokens: 4096,
			Timeout:   2 * time.Minute,
			MaxTasks:  8,
		},
		Estimate: EstimateConfig{
			Buffer: 1.2,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.api_key", defaults.LLM.APIKey)
	v.SetDefault("llm.max_tokens", defaults.LLM.MaxTokens)
	v.SetDefault("llm.timeout", defaults.LLM.Timeout)
	v.SetDefault("llm.max_tasks", defaults.LLM.MaxTasks)
	v.SetDefault("llm.dependency_template", defaults.LLM.DependencyTemplate)
	v.SetDefault("llm.decompose_template", defaults.LLM.DecomposeTemplate)

	v.SetDefault("schedule.start_date", defaults.Schedule.StartDate)

	v.SetDefault("estimate.buffer", defaults.Estimate.Buffer)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.color", defaults.Output.Color)
}

// New returns a viper instance with defaults, env overrides and the config
// search path registered. cfgFile, when set, replaces the search path.
func New(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("loomplan")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads the config file if there is one. A missing file in the search
// path is not an error; a missing explicit file is.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "loomplan")
	}
	// Fall back to ~/.config/loomplan
	home, err := os.UserHomeDir()
	if err != nil {
		return ".loomplan"
	}
	return filepath.Join(home, ".config", "loomplan")
}

// ConfigFile returns the path to the default config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "loomplan.yaml")
}
