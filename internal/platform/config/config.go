package config

import (
	"os"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	DatabaseURL    string
	RedisURL       string
	KafkaBrokers   string
	AuditTopic     string
	LedgerEndpoint string
	LedgerTimeout  time.Duration
	JWTSigningKey  string
	TokenTTL       time.Duration
	ChallengeTTL   time.Duration
}

// Defaults kept as vars so tests and FromEnv overrides stay in one place.
var (
	TokenTTL      = 15 * time.Minute
	ChallengeTTL  = 5 * time.Minute
	LedgerTimeout = 5 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CREDANCHOR_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	tokenTTL := TokenTTL
	if s := os.Getenv("TOKEN_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			tokenTTL = d
		}
	}

	challengeTTL := ChallengeTTL
	if s := os.Getenv("CHALLENGE_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			challengeTTL = d
		}
	}

	ledgerTimeout := LedgerTimeout
	if s := os.Getenv("LEDGER_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			ledgerTimeout = d
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "credanchor.audit"
	}

	return Server{
		Addr:           addr,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		AuditTopic:     auditTopic,
		LedgerEndpoint: os.Getenv("LEDGER_ENDPOINT"),
		LedgerTimeout:  ledgerTimeout,
		JWTSigningKey:  jwtSigningKey,
		TokenTTL:       tokenTTL,
		ChallengeTTL:   challengeTTL,
	}
}
