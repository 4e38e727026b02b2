// Package config defines process configuration for the reputation engine.
//
// Configuration is layered: defaults, then an optional YAML file named by
// LEXARA_CONFIG, then LEXARA_-prefixed environment variables.
package config

import "time"

// Config contains all process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Environment names the deploy environment for health reporting.
	Environment string `koanf:"environment"`

	// JWTSigningKey signs and validates verifier bearer tokens.
	JWTSigningKey string `koanf:"jwt_signing_key"`

	Database Database `koanf:"database"`
	Redis    Redis    `koanf:"redis"`
	Kafka    Kafka    `koanf:"kafka"`
	Anchor   Anchor   `koanf:"anchor"`
	Score    Score    `koanf:"score"`

	// AttestationPairLimit caps attestations per attester/subject pair.
	// Zero disables the cap.
	AttestationPairLimit int `koanf:"attestation_pair_limit"`
}

// Database holds connection pool settings for PostgreSQL.
type Database struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// Redis holds settings for the optional score cache backend.
type Redis struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	ScoreTTL     time.Duration `koanf:"score_ttl"`
}

// Kafka holds settings for the optional audit event stream.
type Kafka struct {
	Brokers         string        `koanf:"brokers"`
	AuditTopic      string        `koanf:"audit_topic"`
	Acks            string        `koanf:"acks"`
	Retries         int           `koanf:"retries"`
	DeliveryTimeout time.Duration `koanf:"delivery_timeout"`
}

// Anchor holds settings for the blockchain anchoring endpoint.
type Anchor struct {
	BaseURL     string        `koanf:"base_url"`
	APIKey      string        `koanf:"api_key"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxAttempts int           `koanf:"max_attempts"`
	BackoffBase time.Duration `koanf:"backoff_base"`
}

// Score holds the tunable constants of the overall-score formula. The
// combination formula is a deterministic substitute for an upstream black box,
// so its weights and baseline stay configurable rather than hard-coded.
type Score struct {
	LegalWeight    float64 `koanf:"legal_weight"`
	PropertyWeight float64 `koanf:"property_weight"`
	DisputeWeight  float64 `koanf:"dispute_weight"`
	GeneralWeight  float64 `koanf:"general_weight"`
	Baseline       float64 `koanf:"baseline"`
	ShrinkageK     int     `koanf:"shrinkage_k"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:        ":8080",
		LogLevel:    "info",
		Environment: "development",
		Database: Database{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: Redis{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			ScoreTTL:     10 * time.Minute,
		},
		Kafka: Kafka{
			AuditTopic:      "lexara.audit",
			Acks:            "all",
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		},
		Anchor: Anchor{
			Timeout:     10 * time.Second,
			MaxAttempts: 3,
			BackoffBase: 200 * time.Millisecond,
		},
		Score: Score{
			LegalWeight:    0.3,
			PropertyWeight: 0.3,
			DisputeWeight:  0.2,
			GeneralWeight:  0.2,
			Baseline:       50,
			ShrinkageK:     5,
		},
		AttestationPairLimit: 3,
	}
}
