package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TimurManjosov/flagdemo/internal/api"
	"github.com/TimurManjosov/flagdemo/internal/config"
	"github.com/TimurManjosov/flagdemo/internal/features"
	"github.com/TimurManjosov/flagdemo/internal/logging"
	"github.com/TimurManjosov/flagdemo/internal/provider"
	"github.com/TimurManjosov/flagdemo/internal/telemetry"
)

const serviceName = "flagdemo"

// warmupBudget bounds the startup retry for the initial flag cache fetch.
// A miss is not fatal: evaluations default until the poller recovers.
const warmupBudget = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", serviceName)
		bootLogger.Fatal().Err(err).Msg("config load failed")
	}
	logger := logging.New(cfg.LogLevel, serviceName)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config validation failed")
	}

	telemetry.Init()

	ctx := context.Background()
	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing setup failed")
	}

	// one provider handle per logical project, each on its own poll interval
	userClient := provider.New(features.ProjectUserManagement, provider.Config{
		SDKKey:       cfg.UserSDKKey,
		PollInterval: cfg.UserPollInterval,
		BaseURL:      cfg.FlagBaseURL,
	})
	defer userClient.Close()
	paymentClient := provider.New(features.ProjectPayment, provider.Config{
		SDKKey:       cfg.PaymentSDKKey,
		PollInterval: cfg.PaymentPollInterval,
		BaseURL:      cfg.FlagBaseURL,
	})
	defer paymentClient.Close()

	for _, c := range []*provider.Client{userClient, paymentClient} {
		if err := c.WarmUp(ctx, warmupBudget); err != nil {
			telemetry.WarmupFailures.WithLabelValues(c.Project()).Inc()
			logger.Warn().Err(err).Str("project", c.Project()).
				Msg("flag cache warmup failed, serving defaults until poll succeeds")
		} else {
			logger.Info().Str("project", c.Project()).Msg("flag cache warmed")
		}
	}

	svc := features.NewService(map[string]features.Evaluator{
		features.ProjectUserManagement: userClient,
		features.ProjectPayment:        paymentClient,
	})

	srvAPI := api.NewServer(svc, logger, cfg.RateLimitPerIP)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: telemetry.MetricsHandler()}
	go func() {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metricsSrv.Shutdown(ctxShut)
	_ = shutdownTracing(ctxShut)
	logger.Info().Msg("stopped")
}
