package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cogui/internal/models"
	"cogui/internal/signal"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// Config struct is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Adaptive    AdaptiveConfig    `mapstructure:"adaptive"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port           string `mapstructure:"port"`
	SessionSecret  string `mapstructure:"session_secret"`
	AdminTokenHash string `mapstructure:"admin_token_hash"` // bcrypt hash
}

// DatabaseConfig holds database connection settings. Leave Host empty to run
// without persistence.
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

// PipelineConfig holds the signal-processor knobs.
type PipelineConfig struct {
	SampleRateMs          float64 `mapstructure:"sample_rate_ms"`
	HesitationThresholdMs float64 `mapstructure:"hesitation_threshold_ms"`
	WindowCapacity        int     `mapstructure:"window_capacity"`
	DwellDistancePx       float64 `mapstructure:"dwell_distance_px"`
	ClickHistoryCapacity  int     `mapstructure:"click_history_capacity"`
	ScrollHistoryCapacity int     `mapstructure:"scroll_history_capacity"`
	RulesFile             string  `mapstructure:"rules_file"`
}

// AdaptiveConfig holds the default adaptation policy knobs.
type AdaptiveConfig struct {
	AutoAdjust       bool   `mapstructure:"auto_adjust"`
	SensitivityLevel string `mapstructure:"sensitivity_level"`
	AdaptationSpeed  string `mapstructure:"adaptation_speed"`
	AdjustContrast   bool   `mapstructure:"adjust_contrast"`
	AdjustFontSize   bool   `mapstructure:"adjust_font_size"`
	AdjustLayout     bool   `mapstructure:"adjust_layout"`
	AdjustAnimations bool   `mapstructure:"adjust_animations"`
	AdjustNavigation bool   `mapstructure:"adjust_navigation"`
}

// PreferencesConfig holds preference persistence settings.
type PreferencesConfig struct {
	StorageKey string `mapstructure:"storage_key"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5080")

	// Database defaults; empty host means in-memory only
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "cogui-db")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Pipeline defaults
	v.SetDefault("pipeline.sample_rate_ms", 50)
	v.SetDefault("pipeline.hesitation_threshold_ms", 200)
	v.SetDefault("pipeline.window_capacity", 100)
	v.SetDefault("pipeline.dwell_distance_px", 10)
	v.SetDefault("pipeline.click_history_capacity", 500)
	v.SetDefault("pipeline.scroll_history_capacity", 500)
	v.SetDefault("pipeline.rules_file", "")

	// Adaptation policy defaults
	v.SetDefault("adaptive.auto_adjust", false)
	v.SetDefault("adaptive.sensitivity_level", "medium")
	v.SetDefault("adaptive.adaptation_speed", "medium")
	v.SetDefault("adaptive.adjust_contrast", true)
	v.SetDefault("adaptive.adjust_font_size", true)
	v.SetDefault("adaptive.adjust_layout", true)
	v.SetDefault("adaptive.adjust_animations", true)
	v.SetDefault("adaptive.adjust_navigation", true)

	// Preference persistence defaults
	v.SetDefault("preferences.storage_key", "adaptive-preferences")
}

// Init initializes the configuration with Viper.
func Init(projectRoot string, log *zap.Logger) error {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("COGUI") // e.g., COGUI_SERVER_PORT
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

	// Set up a watch for configuration changes for hot-reloading
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
		}
	})

	log.Info("Configuration loaded successfully")
	return nil
}

// SignalConfig converts the pipeline section to a processor config.
func (c *Config) SignalConfig() signal.Config {
	return signal.Config{
		SampleRateMs:          c.Pipeline.SampleRateMs,
		HesitationThresholdMs: c.Pipeline.HesitationThresholdMs,
		WindowCapacity:        c.Pipeline.WindowCapacity,
		DwellDistancePx:       c.Pipeline.DwellDistancePx,
		ClickHistoryCapacity:  c.Pipeline.ClickHistoryCapacity,
		ScrollHistoryCapacity: c.Pipeline.ScrollHistoryCapacity,
	}
}

// AdaptiveDefaults converts the adaptive section to the policy knob defaults
// a new session starts with. Unknown level strings fall back to the compiled
// defaults.
func (c *Config) AdaptiveDefaults() models.AdaptiveUIConfig {
	cfg := models.DefaultAdaptiveConfig()
	cfg.AutoAdjust = c.Adaptive.AutoAdjust
	if lvl := models.Level(c.Adaptive.SensitivityLevel); lvl.Valid() {
		cfg.SensitivityLevel = lvl
	}
	switch speed := models.AdaptationSpeed(c.Adaptive.AdaptationSpeed); speed {
	case models.SpeedSlow, models.SpeedMedium, models.SpeedFast:
		cfg.AdaptationSpeed = speed
	}
	cfg.AdjustContrast = c.Adaptive.AdjustContrast
	cfg.AdjustFontSize = c.Adaptive.AdjustFontSize
	cfg.AdjustLayout = c.Adaptive.AdjustLayout
	cfg.AdjustAnimations = c.Adaptive.AdjustAnimations
	cfg.AdjustNavigation = c.Adaptive.AdjustNavigation
	return cfg
}
