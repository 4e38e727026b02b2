// Command server runs the reputation and attestation engine. main wires
// configuration, storage, the anchor client, and the domain services, then
// exposes the HTTP router. Business logic lives in the internal service
// packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexara/internal/anchor"
	attestationhandler "lexara/internal/attestation/handler"
	attestationservice "lexara/internal/attestation/service"
	attestationstore "lexara/internal/attestation/store"
	"lexara/internal/audit"
	credentialhandler "lexara/internal/credential/handler"
	credentialmetrics "lexara/internal/credential/metrics"
	credentialservice "lexara/internal/credential/service"
	credentialstore "lexara/internal/credential/store"
	"lexara/internal/evidence"
	"lexara/internal/platform/config"
	"lexara/internal/platform/database"
	"lexara/internal/platform/health"
	"lexara/internal/platform/kafka/producer"
	"lexara/internal/platform/logger"
	platformredis "lexara/internal/platform/redis"
	"lexara/internal/profile"
	profilehandler "lexara/internal/profile/handler"
	reputationhandler "lexara/internal/reputation/handler"
	reputationmetrics "lexara/internal/reputation/metrics"
	"lexara/internal/reputation/score"
	reputationservice "lexara/internal/reputation/service"
	reputationstore "lexara/internal/reputation/store"
	httptransport "lexara/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing reputation engine",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"anchor_url", cfg.Anchor.BaseURL,
	)

	healthHandler := health.New(cfg.Environment)

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var (
		eventStore      reputationstore.Store
		credentialStore credentialstore.Store
		attestStore     attestationstore.Store
	)
	pool, err := database.New(cfg.Database)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		eventStore = reputationstore.NewPostgres(pool.DB())
		credentialStore = credentialstore.NewPostgres(pool.DB())
		attestStore = attestationstore.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("postgres", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	} else {
		log.Warn("no database configured, using in-memory stores")
		eventStore = reputationstore.NewInMemoryStore()
		credentialStore = credentialstore.NewInMemoryStore()
		attestStore = attestationstore.NewInMemoryStore()
	}

	// Score cache: Redis when configured, in-process otherwise.
	var scoreCache score.Cache = score.NewMemoryCache()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		scoreCache = score.NewRedisCache(redisClient.Client, cfg.Redis.ScoreTTL)
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
	}

	// Audit trail: Kafka when configured, otherwise log-only via nil auditor.
	var auditor audit.Publisher
	if cfg.Kafka.Brokers != "" {
		kafkaProducer, err := producer.New(cfg.Kafka, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaProducer.Close()
		auditor = audit.NewKafkaPublisher(kafkaProducer, cfg.Kafka.AuditTopic)
	}

	// Anchoring is a hard dependency of every write path. Without an
	// endpoint the engine can still serve reads, so development falls back
	// to a fake.
	var anchorClient anchor.Client
	if cfg.Anchor.BaseURL != "" {
		anchorClient = anchor.NewHTTPClient(cfg.Anchor, anchor.WithLogger(log))
	} else {
		log.Warn("no anchor endpoint configured, using fake anchoring")
		anchorClient = anchor.NewFake()
	}

	calculator := score.NewCalculator(eventStore,
		score.WithCache(scoreCache),
		score.WithWeights(score.Weights{
			LegalReview:       cfg.Score.LegalWeight,
			PropertyApproval:  cfg.Score.PropertyWeight,
			DisputeResolution: cfg.Score.DisputeWeight,
			General:           cfg.Score.GeneralWeight,
			Baseline:          cfg.Score.Baseline,
			ShrinkageK:        cfg.Score.ShrinkageK,
		}),
		score.WithLogger(log),
	)

	eventOpts := []reputationservice.Option{
		reputationservice.WithScoreInvalidator(calculator),
		reputationservice.WithMetrics(reputationmetrics.New()),
		reputationservice.WithLogger(log),
	}
	if auditor != nil {
		eventOpts = append(eventOpts, reputationservice.WithAuditor(auditor))
	}
	eventService := reputationservice.New(eventStore, anchorClient, eventOpts...)

	credOpts := []credentialservice.Option{
		credentialservice.WithMetrics(credentialmetrics.New()),
		credentialservice.WithLogger(log),
	}
	if auditor != nil {
		credOpts = append(credOpts, credentialservice.WithAuditor(auditor))
	}
	// Evidence blobs are content-addressed; the in-process store suffices
	// until an object-storage backend lands behind the same port.
	credentialService := credentialservice.New(credentialStore, evidence.NewInMemoryStore(), anchorClient, eventService, credOpts...)

	attestOpts := []attestationservice.Option{
		attestationservice.WithPairLimit(cfg.AttestationPairLimit),
		attestationservice.WithLogger(log),
	}
	if auditor != nil {
		attestOpts = append(attestOpts, attestationservice.WithAuditor(auditor))
	}
	attestService := attestationservice.New(attestStore, anchorClient, calculator, eventService, attestOpts...)

	profileService := profile.New(calculator, eventService, credentialService, profile.WithLogger(log))

	router := httptransport.NewRouter(httptransport.Handlers{
		Events:       reputationhandler.New(eventService, log),
		Credentials:  credentialhandler.New(credentialService, log),
		Attestations: attestationhandler.New(attestService, log),
		Profile:      profilehandler.New(profileService, log),
		Health:       healthHandler,
	}, cfg.JWTSigningKey, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
