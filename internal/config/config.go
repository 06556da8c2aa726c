package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/BunBunAstrale/AlmostDoctorsAI/internal"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/connectivity"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/errors"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/features"
)

// EnvPrefix namespaces environment overrides, e.g. GRAPHFEAT_ENGINE_THRESHOLD
const EnvPrefix = "GRAPHFEAT"

// Config represents the complete application configuration
type Config struct {
	Paths  PathConfig   `mapstructure:"paths"`
	Engine EngineConfig `mapstructure:"engine"`
	Labels LabelConfig  `mapstructure:"labels"`
	Batch  BatchConfig  `mapstructure:"batch"`
	Log    LogConfig    `mapstructure:"log"`
}

// PathConfig holds file system paths. Manifest, Metrics and Report are
// optional outputs; empty disables them.
type PathConfig struct {
	Labels   string `mapstructure:"labels"`
	Matrices string `mapstructure:"matrices"`
	Output   string `mapstructure:"output"`
	Manifest string `mapstructure:"manifest"`
	Metrics  string `mapstructure:"metrics"`
	Report   string `mapstructure:"report"`
}

// EngineConfig holds the feature-extraction settings
type EngineConfig struct {
	Threshold     float64 `mapstructure:"threshold"`
	ZeroDiag      bool    `mapstructure:"zero_diag"`
	ClipNegatives bool    `mapstructure:"clip_negatives"`
	Density       float64 `mapstructure:"density"`
	NodePad       int     `mapstructure:"node_pad"`
}

// LabelConfig holds label-sheet column hints
type LabelConfig struct {
	IDColumn    string `mapstructure:"id_column"`
	LabelColumn string `mapstructure:"label_column"`
	Sheet       string `mapstructure:"sheet"`
}

// BatchConfig holds cohort processing settings
type BatchConfig struct {
	Workers int  `mapstructure:"workers"`
	ZScore  bool `mapstructure:"zscore"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

var defaults = map[string]interface{}{
	"paths.labels":          "",
	"paths.matrices":        "",
	"paths.output":          "features.csv",
	"paths.manifest":        "",
	"paths.metrics":         "",
	"paths.report":          "",
	"engine.threshold":      0.0,
	"engine.zero_diag":      true,
	"engine.clip_negatives": true,
	"engine.density":        0.0,
	"engine.node_pad":       features.DefaultNodePad,
	"labels.id_column":      "",
	"labels.label_column":   "",
	"labels.sheet":          "",
	"batch.workers":         1,
	"batch.zscore":          false,
	"log.level":             "INFO",
	"log.file":              "",
	"log.max_size_mb":       100,
	"log.max_age_days":      28,
}

// Load builds the configuration. Precedence, highest first:
//  1. flags that were set explicitly on the command line
//  2. GRAPHFEAT_* environment variables (a .env file in the working directory is loaded first)
//  3. the YAML file at configPath, if given
//  4. defaults
//
// Only flags registered with BindFlag take part.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	// a missing .env is not an error
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, errors.IOError("stat config file", configPath, err)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %s", configPath)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key, ok := f.Annotations[flagKeyAnnotation]
			if !ok || len(key) == 0 || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key[0], f)
		})
		if bindErr != nil {
			return nil, errors.Wrap(bindErr, "failed to bind flags")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to unmarshal config")
	}
	return &cfg, nil
}

const flagKeyAnnotation = "graphfeat_config_key"

// BindFlag ties a flag to a config key so Load can pick it up
func BindFlag(flags *pflag.FlagSet, name, key string) {
	if err := flags.SetAnnotation(name, flagKeyAnnotation, []string{key}); err != nil {
		panic(fmt.Sprintf("config: binding unknown flag %q: %v", name, err))
	}
}

// Validate checks the settings an extraction run needs
func (c *Config) Validate() error {
	if c.Paths.Labels == "" {
		return errors.ConfigInvalid("paths.labels is required")
	}
	if c.Paths.Matrices == "" {
		return errors.ConfigInvalid("paths.matrices is required")
	}
	if c.Paths.Output == "" {
		return errors.ConfigInvalid("paths.output is required")
	}
	switch strings.ToLower(filepath.Ext(c.Paths.Output)) {
	case ".csv", ".xlsx":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("paths.output must end in .csv or .xlsx, got %q", c.Paths.Output))
	}
	return c.ValidateEngine()
}

// ValidateEngine checks only the settings that affect feature values
func (c *Config) ValidateEngine() error {
	if err := c.FeatureOptions().Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if c.Engine.NodePad < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("engine.node_pad must be at least 1, got %d", c.Engine.NodePad))
	}
	if c.Batch.Workers < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("batch.workers must be at least 1, got %d", c.Batch.Workers))
	}
	if _, ok := internal.ParseLogLevel(c.Log.Level); !ok {
		return errors.ConfigInvalid(fmt.Sprintf("log.level %q is not one of ERROR, WARN, INFO, DEBUG, TRACE", c.Log.Level))
	}
	return nil
}

// FeatureOptions converts the engine section to extractor options
func (c *Config) FeatureOptions() features.Options {
	return features.Options{
		Normalize: connectivity.NormalizeOptions{
			ZeroDiagonal:  c.Engine.ZeroDiag,
			ClipNegatives: c.Engine.ClipNegatives,
		},
		Threshold: c.Engine.Threshold,
		Density:   c.Engine.Density,
	}
}

// Settings lists the values that determine the output table, for fingerprinting
func (c *Config) Settings() map[string]string {
	return map[string]string{
		"engine.threshold":      strconv.FormatFloat(c.Engine.Threshold, 'g', -1, 64),
		"engine.zero_diag":      strconv.FormatBool(c.Engine.ZeroDiag),
		"engine.clip_negatives": strconv.FormatBool(c.Engine.ClipNegatives),
		"engine.density":        strconv.FormatFloat(c.Engine.Density, 'g', -1, 64),
		"engine.node_pad":       strconv.Itoa(c.Engine.NodePad),
		"batch.zscore":          strconv.FormatBool(c.Batch.ZScore),
		"labels.id_column":      c.Labels.IDColumn,
		"labels.label_column":   c.Labels.LabelColumn,
		"labels.sheet":          c.Labels.Sheet,
	}
}

// Logging converts the log section for internal.LogConfig
func (c *Config) Logging() (internal.LogLevel, *internal.LogConfig) {
	level, _ := internal.ParseLogLevel(c.Log.Level)
	return level, &internal.LogConfig{
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
