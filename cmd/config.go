package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/ai"
	"github.com/ucformula/sponsor-scout/internal/discovery"
	"github.com/ucformula/sponsor-scout/internal/filtering"
	"github.com/ucformula/sponsor-scout/internal/outreach"
	"github.com/ucformula/sponsor-scout/internal/store"
	"github.com/ucformula/sponsor-scout/internal/store/file"
	"github.com/ucformula/sponsor-scout/internal/store/mongo"
	"github.com/ucformula/sponsor-scout/internal/store/postgres"
)

// Config enumerates every option. Defaults live in setDefaults.
type Config struct {
	Log       *LogConfig       `mapstructure:"log"`
	Serper    *SerperConfig    `mapstructure:"serper"`
	Discovery discovery.Config `mapstructure:"discovery"`
	Contact   *ContactConfig   `mapstructure:"contact"`
	Store     store.Config     `mapstructure:"store"`
	Filters   filtering.Config `mapstructure:"filters"`
	Outreach  outreach.Config  `mapstructure:"outreach"`
	Server    *ServerConfig    `mapstructure:"server"`
	AI        *ai.Config       `mapstructure:"ai"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
	MaxAgeDays int    `mapstructure:"max-age-days"`
}

type SerperConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	URL        string `mapstructure:"url"`
	UserAgent  string `mapstructure:"user-agent"`
	// Optional search hints, e.g. "us" and "en".
	Country  string `mapstructure:"country"`
	Language string `mapstructure:"language"`
	Num      int    `mapstructure:"num"`
}

type ContactConfig struct {
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// DiscoverySchedule is a five-field cron spec. Empty disables scheduled runs.
	DiscoverySchedule string        `mapstructure:"discovery-schedule"`
	ExposeErrors      bool          `mapstructure:"expose-errors"`
	CORSOrigin        string        `mapstructure:"cors-origin"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown-timeout"`
}

func bindEnv() {
	envs := map[string]string{
		"serper.api-key":            "SERPER_API_KEY",
		"serper.api-key-file":       "SERPER_API_KEY_FILE",
		"store.mongo-uri":           "MONGODB_URI",
		"store.postgres-dsn":        "DATABASE_URL",
		"ai.gemini.api-key":         "GEMINI_API_KEY",
		"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
		"server.discovery-schedule": "DISCOVERY_SCHEDULE",
	}

	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}
}

func setDefaults() {
	viper.SetDefault("log.max-size-mb", 50)
	viper.SetDefault("log.max-backups", 3)
	viper.SetDefault("log.max-age-days", 28)

	viper.SetDefault("discovery.queries", discovery.DefaultQueries)
	viper.SetDefault("discovery.extract", true)
	viper.SetDefault("discovery.delay", discovery.DefaultDelay)
	viper.SetDefault("discovery.workers", 1)

	viper.SetDefault("contact.timeout", 10*time.Second)

	viper.SetDefault("store.driver", store.DriverFile)
	viper.SetDefault("store.dir", "data")
	viper.SetDefault("store.database", mongo.DefaultDatabase)

	viper.SetDefault("outreach.output-dir", outreach.DefaultOutputDir)

	viper.SetDefault("server.addr", ":5000")
	viper.SetDefault("server.cors-origin", "*")
	viper.SetDefault("server.shutdown-timeout", 10*time.Second)

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", ai.ProviderGemini)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}
	if config == nil {
		return nil, fmt.Errorf("empty configuration")
	}

	if config.Log == nil {
		config.Log = &LogConfig{}
	}
	if config.Serper == nil {
		config.Serper = &SerperConfig{}
	}
	if config.Contact == nil {
		config.Contact = &ContactConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if err := config.AI.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// openStore builds the configured persistence backend. The caller owns Close.
func openStore(ctx context.Context, cfg store.Config, logger *zap.Logger) (store.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	var (
		st  store.Store
		err error
	)

	switch driver {
	case "", store.DriverFile:
		st, err = file.New(cfg.Dir, logger.With(zap.String("store", store.DriverFile)))
	case store.DriverMongo:
		if strings.TrimSpace(cfg.MongoURI) == "" {
			return nil, fmt.Errorf("store.mongo-uri is required for the mongo driver (or set MONGODB_URI)")
		}
		st, err = mongo.Open(ctx, cfg.MongoURI, cfg.Database, logger.With(zap.String("store", store.DriverMongo)))
	case store.DriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, fmt.Errorf("store.postgres-dsn is required for the postgres driver (or set DATABASE_URL)")
		}
		st, err = postgres.Open(ctx, cfg.PostgresDSN, logger.With(zap.String("store", store.DriverPostgres)))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}

	return st, nil
}
