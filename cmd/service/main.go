package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/weatherlabs/weather-oracle/internal/config"
	"github.com/weatherlabs/weather-oracle/internal/forecast"
	"github.com/weatherlabs/weather-oracle/internal/geocode"
	"github.com/weatherlabs/weather-oracle/internal/health"
	httphandler "github.com/weatherlabs/weather-oracle/internal/http"
	"github.com/weatherlabs/weather-oracle/internal/observability"
	"github.com/weatherlabs/weather-oracle/internal/search"
	"github.com/weatherlabs/weather-oracle/internal/units"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	defaultUnits, err := units.Parse(cfg.DefaultUnits)
	if err != nil {
		logger.Fatal("default units", zap.Error(err))
	}

	geocoder := geocode.NewClient(cfg.GeocodingAPIURL, cfg.UpstreamTimeout)
	forecaster := forecast.NewClient(cfg.ForecastAPIURL, cfg.UpstreamTimeout)

	// No platform location service runs server-side; location requests carry
	// their coordinates in the request body or fail as unsupported.
	controller := search.NewController(geocoder, forecaster, nil, defaultUnits, logger)

	healthCfg := health.Config{
		ErrorWindow: cfg.HealthErrorWindow,
		ErrorPct:    cfg.HealthErrorPct,
	}
	handler := httphandler.NewHandler(controller, healthCfg, logger, cfg.QueryMinLength, cfg.QueryMaxLength)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	router := newRouter(handler, logger, limiter, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	health.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// newRouter assembles the route table and middleware chain. Health and
// metrics stay outside the rate limiter so probes keep working under load.
func newRouter(handler *httphandler.Handler, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)

	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	api := router.PathPrefix("").Subrouter()
	api.Use(httphandler.RateLimitMiddleware(limiter))
	api.Use(httphandler.TimeoutMiddleware(requestTimeout))
	api.HandleFunc("/search", handler.PostSearch).Methods("POST")
	api.HandleFunc("/location", handler.PostLocation).Methods("POST")
	api.HandleFunc("/units", handler.PutUnits).Methods("PUT")
	api.HandleFunc("/state", handler.GetState).Methods("GET")

	return router
}
