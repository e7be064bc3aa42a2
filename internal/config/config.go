package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/svdpmukherjee/wordgame-analysis/internal/detection"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// vpr is the viper instance behind Conf, kept so Watch can hook it once a
// logger exists.
var vpr *viper.Viper

// Config is the top-level configuration structure.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Study    StudyConfig    `mapstructure:"study"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AnalysisConfig exposes the engine's tuning knobs. The numeric defaults
// were tuned informally against pilot cohorts and are empirical, not
// theoretically justified; experiments that change them must note it.
type AnalysisConfig struct {
	FastPercentile    float64 `mapstructure:"fast_percentile"`
	MinGroupSamples   int     `mapstructure:"min_group_samples"`
	TopBandMinLength  int     `mapstructure:"top_band_min_length"`
	MidBandMinLength  int     `mapstructure:"mid_band_min_length"`
	PostIntervalWords int     `mapstructure:"post_interval_words"`
	MergeGapSeconds   float64 `mapstructure:"merge_gap_seconds"`
	Workers           int     `mapstructure:"workers"`
}

// Params converts the configured knobs into the engine's parameter set.
func (a AnalysisConfig) Params() detection.Params {
	return detection.Params{
		FastPercentile:    a.FastPercentile,
		MinGroupSamples:   a.MinGroupSamples,
		TopBandMinLength:  a.TopBandMinLength,
		MidBandMinLength:  a.MidBandMinLength,
		PostIntervalWords: a.PostIntervalWords,
		MergeGapSeconds:   a.MergeGapSeconds,
	}
}

// InputConfig selects where the run's snapshot comes from.
type InputConfig struct {
	Source          string `mapstructure:"source"` // "file" or "database"
	EventsPath      string `mapstructure:"events_path"`
	ConfessionsPath string `mapstructure:"confessions_path"`
}

// OutputConfig holds emission settings.
type OutputConfig struct {
	Dir     string `mapstructure:"dir"`
	Charts  bool   `mapstructure:"charts"`
	Persist bool   `mapstructure:"persist"`
}

// StudyConfig points at the study definition shared with the ingestion
// service.
type StudyConfig struct {
	DefinitionPath string `mapstructure:"definition_path"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// setDefaults sets the default values for the configuration. The analysis
// defaults come from the engine so config and code cannot drift apart.
func setDefaults(v *viper.Viper) {
	d := detection.DefaultParams()
	v.SetDefault("analysis.fast_percentile", d.FastPercentile)
	v.SetDefault("analysis.min_group_samples", d.MinGroupSamples)
	v.SetDefault("analysis.top_band_min_length", d.TopBandMinLength)
	v.SetDefault("analysis.mid_band_min_length", d.MidBandMinLength)
	v.SetDefault("analysis.post_interval_words", d.PostIntervalWords)
	v.SetDefault("analysis.merge_gap_seconds", d.MergeGapSeconds)
	v.SetDefault("analysis.workers", 0) // 0 = one per CPU

	v.SetDefault("input.source", "file")
	v.SetDefault("input.events_path", "data/events.json")
	v.SetDefault("input.confessions_path", "")

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.charts", true)
	v.SetDefault("output.persist", false)

	v.SetDefault("study.definition_path", "config/study.yaml")

	// Database defaults
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "wordgame-db")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs
}

// Init initializes the configuration with Viper. It runs before the logger
// exists, so it stays silent; call Watch once a logger is available.
func Init(projectRoot string) error {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("WORDGAME") // e.g., WORDGAME_ANALYSIS_FAST_PERCENTILE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read the initial configuration from the file.
	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the config into our global Conf variable
	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	vpr = v
	return Conf.Validate()
}

// Watch sets up hot-reloading of the configuration file. Reload failures
// keep the previous configuration in place.
func Watch(log *zap.Logger) {
	if vpr == nil {
		return
	}
	vpr.WatchConfig()
	vpr.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		fresh := &Config{}
		if err := vpr.Unmarshal(fresh); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		if err := fresh.Validate(); err != nil {
			log.Error("Rejected reloaded configuration", zap.Error(err))
			return
		}
		Conf = fresh
	})
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.FastPercentile <= 0 || a.FastPercentile >= 1 {
		return fmt.Errorf("analysis.fast_percentile must be in (0,1), got %v", a.FastPercentile)
	}
	if a.MinGroupSamples < 1 {
		return fmt.Errorf("analysis.min_group_samples must be at least 1, got %d", a.MinGroupSamples)
	}
	if a.MidBandMinLength < 1 || a.TopBandMinLength < a.MidBandMinLength {
		return fmt.Errorf("analysis length bands are inconsistent: mid=%d top=%d", a.MidBandMinLength, a.TopBandMinLength)
	}
	if a.PostIntervalWords < 1 {
		return fmt.Errorf("analysis.post_interval_words must be at least 1, got %d", a.PostIntervalWords)
	}
	if a.MergeGapSeconds < 0 {
		return fmt.Errorf("analysis.merge_gap_seconds must not be negative, got %v", a.MergeGapSeconds)
	}
	if a.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative, got %d", a.Workers)
	}
	switch c.Input.Source {
	case "file", "database":
	default:
		return fmt.Errorf("input.source must be \"file\" or \"database\", got %q", c.Input.Source)
	}
	return nil
}
