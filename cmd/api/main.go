package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/leadcapture/cmd/mainconfig"
	"github.com/wolfman30/leadcapture/internal/analytics"
	"github.com/wolfman30/leadcapture/internal/api/router"
	"github.com/wolfman30/leadcapture/internal/archive"
	"github.com/wolfman30/leadcapture/internal/attribution"
	appconfig "github.com/wolfman30/leadcapture/internal/config"
	"github.com/wolfman30/leadcapture/internal/form"
	"github.com/wolfman30/leadcapture/internal/health"
	"github.com/wolfman30/leadcapture/internal/landing"
	"github.com/wolfman30/leadcapture/internal/layout"
	"github.com/wolfman30/leadcapture/internal/leadclient"
	"github.com/wolfman30/leadcapture/internal/leads"
	"github.com/wolfman30/leadcapture/internal/notify"
	"github.com/wolfman30/leadcapture/internal/observability/metrics"
	"github.com/wolfman30/leadcapture/internal/submission"
	"github.com/wolfman30/leadcapture/migrations"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting leadcapture API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"lead_store", cfg.LeadStore,
		"analytics_sink", cfg.AnalyticsSink,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	metricsHandler, leadMetrics := setupMetrics()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}
	clients := mainconfig.NewClients(awsCfg, cfg)

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	var db *sql.DB
	if pool != nil {
		defer pool.Close()
		db = stdlib.OpenDBFromPool(pool)
		defer func() { _ = db.Close() }()
		if cfg.AutoMigrate {
			if err := migrations.Up(db); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("database migrations applied")
		}
	}

	repo, err := setupLeadRepository(cfg, pool, clients)
	if err != nil {
		return err
	}

	svcOpts := []leads.ServiceOption{
		leads.WithLogger(logger),
		leads.WithMetrics(leadMetrics, cfg.LeadStore),
	}
	if notifier := setupNotifier(cfg, clients, logger); notifier != nil {
		svcOpts = append(svcOpts, leads.WithNotifier(notifier))
	}
	if cfg.LeadArchiveBucket != "" {
		svcOpts = append(svcOpts, leads.WithArchiver(archive.NewLeadArchiver(clients.S3, cfg.LeadArchiveBucket, logger)))
	}
	svc := leads.NewService(repo, svcOpts...)

	sink, deliverer, err := setupAnalyticsSink(cfg, pool, clients, logger)
	if err != nil {
		return err
	}
	events := analytics.NewDispatcher(sink, logger, leadMetrics)

	store, err := setupAttributionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	validator := form.NewValidator()
	assembler := submission.NewAssembler(validator, setupLeadCreator(cfg, svc, logger),
		submission.WithEvents(events),
		submission.WithTagging(cfg.LeadSource, cfg.LeadFormName, cfg.LeadCurrency),
		submission.WithLogger(logger),
		submission.WithMetrics(leadMetrics),
	)

	landingOpts := []landing.Option{landing.WithEvents(events), landing.WithLogger(logger)}
	if cfg.LayoutAPIBaseURL != "" {
		resolver := layout.NewResolver(layout.NewClient(cfg.LayoutAPIBaseURL, layout.WithLogger(logger)), logger)
		landingOpts = append(landingOpts, landing.WithLayout(resolver))
	}

	var pinger health.Pinger
	if db != nil {
		pinger = db
	}

	handler := router.New(&router.Config{
		Logger:             logger,
		Health:             health.NewHandler(cfg.AppVersion, pinger, logger),
		LeadsHandler:       leads.NewHandler(svc, logger),
		LandingHandler:     landing.NewHandler(store, assembler, validator, landingOpts...),
		VisitorCookie:      cfg.VisitorCookie,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if deliverer != nil {
		g.Go(func() error {
			deliverer.Start(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func setupMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadMetrics(reg)
}

func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		return nil
	}
	return pool
}

func setupLeadRepository(cfg *appconfig.Config, pool *pgxpool.Pool, clients mainconfig.Clients) (leads.Repository, error) {
	switch cfg.LeadStore {
	case "postgres":
		if pool == nil {
			return nil, errors.New("LEAD_STORE=postgres but the database is unavailable")
		}
		return leads.NewPostgresRepository(pool), nil
	case "dynamodb":
		return leads.NewDynamoRepository(clients.DynamoDB, cfg.LeadsTable), nil
	default:
		return leads.NewInMemoryRepository(), nil
	}
}

// setupNotifier returns nil when no provider or no recipient is configured.
func setupNotifier(cfg *appconfig.Config, clients mainconfig.Clients, logger *logging.Logger) leads.Notifier {
	if len(cfg.LeadNotifyRecipients) == 0 {
		return nil
	}
	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			sender = s
		}
	case "ses":
		if s := notify.NewSESSender(clients.SES, notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			sender = s
		}
	}
	if sender == nil {
		sender = notify.NewStubSender(logger)
	}
	return notify.NewLeadNotifier(sender, cfg.LeadNotifyRecipients, cfg.Location(), logger)
}

func setupAnalyticsSink(cfg *appconfig.Config, pool *pgxpool.Pool, clients mainconfig.Clients, logger *logging.Logger) (analytics.Sink, *analytics.Deliverer, error) {
	switch cfg.AnalyticsSink {
	case "sqs":
		return analytics.NewSQSSink(clients.SQS, cfg.AnalyticsQueueURL), nil, nil
	case "outbox":
		if pool == nil {
			return nil, nil, errors.New("ANALYTICS_SINK=outbox but the database is unavailable")
		}
		store := analytics.NewOutboxStore(pool)
		deliverer := analytics.NewDeliverer(store, analytics.NewLogSink(logger), logger).
			WithInterval(cfg.OutboxPollInterval)
		return analytics.NewOutboxSink(store), deliverer, nil
	default:
		return analytics.NewLogSink(logger), nil, nil
	}
}

func setupAttributionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (attribution.Store, error) {
	if cfg.AttributionStore != "redis" {
		return attribution.NewMemoryStore(), nil
	}
	opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("attribution store connected to redis", "addr", cfg.RedisAddr)
	return attribution.NewRedisStore(client, "", cfg.AttributionTTL), nil
}

// setupLeadCreator posts to a remote lead endpoint when one is configured and
// otherwise stores leads in-process.
func setupLeadCreator(cfg *appconfig.Config, svc *leads.Service, logger *logging.Logger) submission.LeadCreator {
	if cfg.LeadAPIBaseURL == "" {
		return svc
	}
	return leadclient.NewClient(cfg.LeadAPIBaseURL,
		leadclient.WithTimeout(cfg.LeadAPITimeout),
		leadclient.WithLogger(logger),
	)
}
