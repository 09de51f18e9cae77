package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/ai"
	"github.com/ucformula/sponsor-scout/internal/ai/gemini"
	"github.com/ucformula/sponsor-scout/internal/contact"
	"github.com/ucformula/sponsor-scout/internal/discovery"
	"github.com/ucformula/sponsor-scout/internal/logger"
	"github.com/ucformula/sponsor-scout/internal/outreach"
	"github.com/ucformula/sponsor-scout/internal/secrets"
	"github.com/ucformula/sponsor-scout/internal/serper"
	"github.com/ucformula/sponsor-scout/internal/store"
)

// application holds the long-lived handles shared by the commands.
type application struct {
	config *Config
	logger *zap.Logger
	store  store.Store
}

// bootstrap loads the config, builds the logger and opens the store.
// Setup errors are fatal.
func bootstrap(ctx context.Context) *application {
	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logger, err := logger.New(logger.Options{
		JSON:       viper.GetBool("json"),
		Debug:      viper.GetBool("debug"),
		File:       config.Log.File,
		MaxSizeMB:  config.Log.MaxSizeMB,
		MaxBackups: config.Log.MaxBackups,
		MaxAgeDays: config.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the sponsor-scout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	st, err := openStore(ctx, config.Store, logger)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err), zap.String("driver", config.Store.Driver))
	}

	return &application{config: config, logger: logger, store: st}
}

func (a *application) close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("closing the store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *application) pipeline() (*discovery.Pipeline, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "serper api key",
		File:  a.config.Serper.APIKeyFile,
		Value: a.config.Serper.APIKey,
		Env:   "SERPER_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	search := serper.New(a.logger.With(zap.String("component", "serper")), apiKey)
	if a.config.Serper.URL != "" {
		search.APIURL = a.config.Serper.URL
	}
	if a.config.Serper.UserAgent != "" {
		search.UserAgent = a.config.Serper.UserAgent
	}
	search.Defaults = serper.SearchParams{
		GL:  a.config.Serper.Country,
		HL:  a.config.Serper.Language,
		Num: a.config.Serper.Num,
	}

	extractor := contact.New(a.logger.With(zap.String("component", "contact")))
	if a.config.Contact.UserAgent != "" {
		extractor.UserAgent = a.config.Contact.UserAgent
	}
	if a.config.Contact.Timeout > 0 {
		extractor.HTTPClient.Timeout = a.config.Contact.Timeout
	}

	return discovery.New(a.config.Discovery, discovery.Deps{
		Searcher:  search,
		Extractor: extractor,
		Sink:      a.store,
		Logger:    a.logger.With(zap.String("component", "discovery")),
	}), nil
}

func (a *application) outreach(ctx context.Context) *outreach.Service {
	var drafter outreach.AspectDrafter
	if d, err := newAIDrafter(ctx, a.config.AI, a.logger); err != nil {
		a.logger.Warn("skipping ai aspect drafting", zap.Error(err))
	} else if d != nil {
		drafter = d
	}

	return outreach.NewService(a.store, a.config.Outreach, drafter, a.logger.With(zap.String("component", "outreach")))
}

// newAIDrafter returns nil when ai assistance is disabled.
func newAIDrafter(ctx context.Context, cfg *ai.Config, logger *zap.Logger) (ai.Drafter, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	drafterLogger := logger.With(
		zap.String("provider", ai.ProviderGemini),
		zap.String("model", generator.Model()),
	)

	return gemini.NewDrafter(generator, drafterLogger, cfg.Gemini.MaxLogLength), nil
}

// redacted hides secrets before the config is logged.
func redacted(config *Config) *Config {
	c := *config

	serperCfg := *config.Serper
	if serperCfg.APIKey != "" {
		serperCfg.APIKey = "***"
	}
	c.Serper = &serperCfg

	c.Store.MongoURI = mask(c.Store.MongoURI)
	c.Store.PostgresDSN = mask(c.Store.PostgresDSN)

	if config.AI != nil && config.AI.Gemini != nil {
		aiCfg := *config.AI
		geminiCfg := *config.AI.Gemini
		if geminiCfg.APIKey != "" {
			geminiCfg.APIKey = "***"
		}
		aiCfg.Gemini = &geminiCfg
		c.AI = &aiCfg
	}

	return &c
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	return "***"
}
