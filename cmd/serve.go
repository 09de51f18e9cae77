package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/api/handler"
	"github.com/ucformula/sponsor-scout/internal/api/router"
	"github.com/ucformula/sponsor-scout/internal/job"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default is server.addr from the config)")
	serveCmd.Flags().String("schedule", "", "cron spec for background discovery runs")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.discovery-schedule", serveCmd.Flags().Lookup("schedule"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := bootstrap(ctx)
	logger := a.logger
	config := a.config

	pipeline, err := a.pipeline()
	if err != nil {
		logger.Fatal(
			"loading serper api key",
			zap.Error(err),
			zap.String("hint", "set SERPER_API_KEY or SERPER_API_KEY_FILE environment variable or the 'serper.api-key-file' key in the configuration file"),
		)
	}

	var scheduler *job.Scheduler
	if spec := config.Server.DiscoverySchedule; spec != "" {
		scheduler, err = job.StartDiscovery(spec, pipeline, logger.With(zap.String("component", "job")))
		if err != nil {
			logger.Fatal("scheduling discovery", zap.Error(err))
		}
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(logger.With(zap.String("component", "http")), config.Server.CORSOrigin)
	router.RegisterRoutes(engine, handler.NewSponsorHandler(
		pipeline,
		a.outreach(ctx),
		a.store,
		handler.Options{
			Filters:      config.Filters,
			ExposeErrors: config.Server.ExposeErrors,
			Lifetime:     ctx,
		},
		logger.With(zap.String("component", "api")),
	))

	srv := &http.Server{
		Addr:              config.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	timeout := config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	a.close(shutdownCtx)
}
