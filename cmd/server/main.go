package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	attservice "credanchor/internal/attestation/service"
	attstore "credanchor/internal/attestation/store"
	"credanchor/internal/audit"
	"credanchor/internal/auth"
	authstore "credanchor/internal/auth/store"
	credservice "credanchor/internal/credential/service"
	credstore "credanchor/internal/credential/store"
	"credanchor/internal/institution"
	"credanchor/internal/ledger"
	"credanchor/internal/platform/config"
	"credanchor/internal/platform/database"
	"credanchor/internal/platform/health"
	"credanchor/internal/platform/httpserver"
	"credanchor/internal/platform/logger"
	"credanchor/internal/platform/metrics"
	"credanchor/internal/platform/redis"
	httptransport "credanchor/internal/transport/http"
	"credanchor/internal/verification"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	log.Info("initializing credanchor",
		"addr", cfg.Addr,
		"ledger_endpoint", cfg.LedgerEndpoint,
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}

	// Stores fall back to in-memory implementations when their backing
	// infrastructure is not configured, so the server runs standalone in dev.
	var (
		credentials  credstore.Store
		attestations attstore.AttestationStore
		requests     attstore.RequestStore
		institutions institution.Store
		nonces       authstore.NonceStore
	)
	if pool != nil {
		credentials = credstore.NewPostgres(pool.DB())
		pgAtt := attstore.NewPostgres(pool.DB())
		attestations = pgAtt
		requests = pgAtt
		institutions = institution.NewPostgres(pool.DB())
		log.Info("using postgres stores")
	} else {
		credentials = credstore.NewInMemoryStore()
		memAtt := attstore.NewInMemoryStore()
		attestations = memAtt
		requests = memAtt
		institutions = institution.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	if rdb != nil {
		nonces = authstore.NewRedisNonceStore(rdb.Client)
	} else {
		nonces = authstore.NewInMemoryNonceStore()
		log.Warn("REDIS_URL not set, using in-memory nonce store")
	}

	var auditor audit.Publisher
	var kafkaPublisher *audit.KafkaPublisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher, err = audit.NewKafkaPublisher(audit.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.AuditTopic,
		}, log)
		if err != nil {
			log.Error("kafka audit publisher init failed", "error", err)
			os.Exit(1)
		}
		auditor = kafkaPublisher
	} else {
		auditor = audit.NewPublisher(audit.NewInMemoryStore())
		log.Warn("KAFKA_BROKERS not set, keeping audit events in memory")
	}

	var ledgerClient ledger.Client
	if cfg.LedgerEndpoint != "" {
		ledgerClient = ledger.NewHTTPClient(cfg.LedgerEndpoint, cfg.LedgerTimeout)
	} else {
		ledgerClient = ledger.NewInMemoryClient()
		log.Warn("LEDGER_ENDPOINT not set, using in-memory ledger client")
	}

	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.TokenTTL)
	authService := auth.New(nonces, tokens, cfg.ChallengeTTL, log)

	credentialService := credservice.New(credentials,
		credservice.WithAuditor(auditor),
		credservice.WithMetrics(m),
		credservice.WithLogger(log),
	)
	verifier := verification.New(credentials, attestations, ledgerClient, institutions,
		verification.WithAuditor(auditor),
		verification.WithMetrics(m),
		verification.WithLogger(log),
	)
	attestationService := attservice.New(attestations, requests, credentials, institutions,
		attservice.WithAuditor(auditor),
		attservice.WithMetrics(m),
		attservice.WithLogger(log),
	)

	probes := health.New()
	if pool != nil {
		probes.RegisterCheck("postgres", pool.Health)
	}
	if rdb != nil {
		probes.RegisterCheck("redis", rdb.Health)
	}

	handler := httptransport.NewHandler(credentialService, verifier, attestationService, authService, tokens, log)
	router := httptransport.NewRouter(handler, probes, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(ctx); err != nil {
			log.Error("kafka publisher close failed", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("redis close failed", "error", err)
		}
	}
	if pool != nil {
		if err := pool.Close(); err != nil {
			log.Error("database close failed", "error", err)
		}
	}

	log.Info("server stopped")
}
