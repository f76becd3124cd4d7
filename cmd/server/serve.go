package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/dental-clinic-desk/internal/config"
	"github.com/iliyamo/dental-clinic-desk/internal/database"
	"github.com/iliyamo/dental-clinic-desk/internal/encounter"
	"github.com/iliyamo/dental-clinic-desk/internal/gateway"
	"github.com/iliyamo/dental-clinic-desk/internal/handler"
	"github.com/iliyamo/dental-clinic-desk/internal/logging"
	"github.com/iliyamo/dental-clinic-desk/internal/middleware"
	"github.com/iliyamo/dental-clinic-desk/internal/observability/metrics"
	"github.com/iliyamo/dental-clinic-desk/internal/router"
	"github.com/iliyamo/dental-clinic-desk/internal/service"
)

const sweepInterval = time.Minute

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

// asyncSink hands outcomes to k without blocking the commit path. The
// broker dial can take seconds when RabbitMQ is down.
func asyncSink(k encounter.Sink, log zerolog.Logger) encounter.Sink {
	return encounter.SinkFunc(func(ctx context.Context, o encounter.Outcome) error {
		go func() {
			if err := k.Publish(ctx, o); err != nil {
				log.Warn().Err(err).Str("session_id", o.SessionID).Msg("outcome not published")
			}
		}()
		return nil
	})
}

func runServer(ctx context.Context, cfg config.Config) error {
	log := logging.New(cfg.LogLevel, cfg.Env)

	db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.Timezone))
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		return err
	}
	defer db.Close()
	records := gateway.NewRecords(db, cfg.GatewayTimeout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewEncounterMetrics(reg)

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	qcfg := config.LoadQueueConfig()
	sink := encounter.MultiSink{m}
	if qcfg.URL != "" {
		pub := &service.Publisher{URL: qcfg.URL, Queue: qcfg.Queue, Log: log}
		sink = append(sink, asyncSink(pub, log))
	} else {
		log.Info().Msg("RABBITMQ_URL not set; outcome events are not published")
	}

	sessions := encounter.NewRegistry(cfg.SessionIdleTTL)
	eh := handler.NewEncounterHandler(sessions, records,
		encounter.WithLogger(log),
		encounter.WithSink(sink),
		encounter.WithPaymentMethod(cfg.PaymentMethod),
		encounter.WithRemarks(cfg.PaymentRemarks),
		encounter.WithTimeout(cfg.GatewayTimeout),
	)
	eh.Metrics = m
	eh.Location = cfg.Timezone
	eh.MaxTender = cfg.MaxTenderAmount
	eh.Currency = cfg.CurrencySymbol

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	router.RegisterRoutes(e, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), &handler.RecommendHandler{Metrics: m})
	router.RegisterEncounters(e, eh, cfg.JWTSecret, limit)
	router.RegisterRecords(e, handler.NewRecordsHandler(records), cfg.JWTSecret, limit, cache)

	go func() {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := eh.SweepIdle(now); n > 0 {
					log.Info().Int("evicted", n).Msg("idle sessions evicted")
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Int("open_sessions", sessions.Len()).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
