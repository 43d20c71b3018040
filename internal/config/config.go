package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Tigerweb  TigerwebConfig  `yaml:"tigerweb" mapstructure:"tigerweb"`
	Shapefile ShapefileConfig `yaml:"shapefile" mapstructure:"shapefile"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Hover     HoverConfig     `yaml:"hover" mapstructure:"hover"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// TigerwebConfig configures the TIGERweb geometry source.
type TigerwebConfig struct {
	StatesURL         string `yaml:"states_url" mapstructure:"states_url"`
	CountiesURL       string `yaml:"counties_url" mapstructure:"counties_url"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond int    `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Retries           int    `yaml:"retries" mapstructure:"retries"`
}

// ShapefileConfig configures the offline shapefile source.
type ShapefileConfig struct {
	Path            string `yaml:"path" mapstructure:"path"`
	PopulationField string `yaml:"population_field" mapstructure:"population_field"`
}

// RenderConfig configures the raster canvas and snapshot output.
type RenderConfig struct {
	Width     int    `yaml:"width" mapstructure:"width"`
	Height    int    `yaml:"height" mapstructure:"height"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// HoverConfig configures hover tooltip timing.
type HoverConfig struct {
	ThrottleMillis  int `yaml:"throttle_millis" mapstructure:"throttle_millis"`
	ShowDelayMillis int `yaml:"show_delay_millis" mapstructure:"show_delay_millis"`
}

// Throttle returns the move-coalescing window.
func (h HoverConfig) Throttle() time.Duration {
	return time.Duration(h.ThrottleMillis) * time.Millisecond
}

// ShowDelay returns the rest time before a tooltip appears.
func (h HoverConfig) ShowDelay() time.Duration {
	return time.Duration(h.ShowDelayMillis) * time.Millisecond
}

// ClassifyConfig configures classification defaults.
type ClassifyConfig struct {
	Method       string `yaml:"method" mapstructure:"method"`
	Palette      string `yaml:"palette" mapstructure:"palette"`
	PalettesFile string `yaml:"palettes_file" mapstructure:"palettes_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CHLORO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tigerweb.timeout_secs", 30)
	v.SetDefault("tigerweb.requests_per_second", 4)
	v.SetDefault("tigerweb.retries", 3)
	v.SetDefault("shapefile.population_field", "POP100")
	v.SetDefault("render.width", 1200)
	v.SetDefault("render.height", 800)
	v.SetDefault("render.output_dir", ".")
	v.SetDefault("hover.throttle_millis", 100)
	v.SetDefault("hover.show_delay_millis", 1000)
	v.SetDefault("classify.method", "quantile")
	v.SetDefault("classify.palette", "Reds")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
