// Command api runs the Lapor Pak! report service.
//
// @title                       Lapor Pak! Report API
// @version                     1.0
// @description                 Citizen complaint reporting: submission with photo evidence, personal dashboard and admin triage.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/api"
	"github.com/laporpak/report-service/internal/api/handler"
	"github.com/laporpak/report-service/internal/api/metrics"
	"github.com/laporpak/report-service/internal/core/service"
	mongodb "github.com/laporpak/report-service/internal/infrastructure/db/mongo"
	redisdb "github.com/laporpak/report-service/internal/infrastructure/db/redis"
	"github.com/laporpak/report-service/internal/infrastructure/events"
	"github.com/laporpak/report-service/internal/infrastructure/geocode"
	"github.com/laporpak/report-service/internal/infrastructure/media"
	"github.com/laporpak/report-service/internal/infrastructure/queue"
	"github.com/laporpak/report-service/internal/infrastructure/session"
	"github.com/laporpak/report-service/internal/infrastructure/storage"
	"github.com/laporpak/report-service/internal/pkg/config"
	"github.com/laporpak/report-service/pkg/logger"
)

const (
	connectTimeout  = 10 * time.Second
	connectRetryFor = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

// publisher is what the dispatcher hands events to and main closes on exit.
type publisher interface {
	queue.Publisher
	Close() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg, err := config.Load(ctx, boot)
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "laporpak-report",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped with error")
	}
	log.Info().Msg("service stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  connectTimeout,
		RetryFor: connectRetryFor,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Timeout:  connectTimeout,
		RetryFor: connectRetryFor,
	}, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	reports := mongodb.NewReportRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := reports.EnsureIndexes(ctx); err != nil {
		return err
	}

	// --- Boundaries ---
	uploader, err := storage.NewCloudinaryUploader(storage.Config{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
	}, log)
	if err != nil {
		return err
	}
	compressor := media.NewCompressor(media.Config{
		MaxEdge:        cfg.Media.MaxEdge,
		MaxOutputBytes: cfg.Media.MaxOutputBytes,
		Workers:        cfg.Media.Workers,
	}, log)
	geocoder := redisdb.NewGeocodeCache(geocode.NewClient(cfg.Geocoder.URL, cfg.Geocoder.UserAgent), rdb, cfg.Geocoder.CacheTTL, log)

	// --- Change events ---
	var pub publisher = events.LogPublisher{Logger: log}
	if cfg.EventsEnabled() {
		pub = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing report events to kafka")
	}
	dispatcher := queue.NewDispatcher(cfg.Kafka.Workers, pub, logger.Component("dispatcher"),
		queue.WithMetrics(metrics.EventRecorder{}))
	dispatcher.Start(context.WithoutCancel(ctx))

	// --- Services ---
	tokens, err := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return err
	}
	identities := session.NewIdentityResolver(tokens, users)
	gate := service.NewAuthGate(identities)

	statsCache := redisdb.NewStatsCache(rdb, cfg.StatsCacheTTL)
	drafts := redisdb.NewDraftStore(rdb)
	notifier := service.NewChangeNotifier(statsCache, dispatcher, log)

	authService := service.NewAuthService(users, tokens, gate, log)
	submission := service.NewSubmissionService(service.SubmissionDeps{
		Gate:     gate,
		Reports:  reports,
		Media:    compressor,
		Uploader: uploader,
		Drafts:   drafts,
		Dedup:    redisdb.NewDedupChecker(rdb),
		Notifier: notifier,
	}, service.SubmissionConfig{
		UploadFolder:  cfg.Cloudinary.UploadFolder,
		MaxPhotoBytes: cfg.Media.MaxInputBytes,
	}, log)
	queries := service.NewReportQueryService(gate, reports, statsCache, log)
	triage := service.NewTriageService(gate, reports, notifier, log)
	locator := service.NewGeoLocator(gate, geocoder, drafts, log)

	if cfg.Bootstrap.Email != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.Bootstrap.Name, cfg.Bootstrap.Email, cfg.Bootstrap.Password); err != nil {
			return err
		}
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Identities: identities,
		Submitter:  submission,
		Reader:     queries,
		Triager:    triage,
		Drafts:     locator,
		Readiness: map[string]handler.Pinger{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.Cookie,
			TTL:    cfg.Session.TTL,
			Secure: !cfg.IsDevelopment(),
		},
		Logger: logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	dispatcher.Close()
	if err := pub.Close(); err != nil {
		log.Warn().Err(err).Msg("event publisher close failed")
	}
	return nil
}
