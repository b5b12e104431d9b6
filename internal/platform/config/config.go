package config

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bridgeid/pkg/domain"
)

// Config is the process configuration, parsed once from the environment in main.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// InstanceAddress identifies this deployment; it seeds correlation IDs.
	InstanceAddress string `env:"INSTANCE_ADDRESS,required,notEmpty"`
	// OwnerAddress bootstraps the owner the first time settings are created.
	OwnerAddress string `env:"OWNER_ADDRESS,required,notEmpty"`

	Responder Responder
	Caller    Caller
	Database  Database
	Redis     Redis
	Kafka     Kafka
	Monitor   Monitor

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// Responder holds the bootstrap responder configuration and dispatch transport settings.
type Responder struct {
	Address         string        `env:"RESPONDER_ADDRESS,required,notEmpty"`
	URL             string        `env:"RESPONDER_URL"`
	APIKey          string        `env:"RESPONDER_API_KEY"`
	CorrelationTag  string        `env:"CORRELATION_TAG" envDefault:"0x01"`
	FeeAmount       string        `env:"FEE_AMOUNT" envDefault:"200000000000000000"`
	MockMode        bool          `env:"MOCK_MODE" envDefault:"false"`
	CallbackBaseURL string        `env:"CALLBACK_BASE_URL" envDefault:"http://localhost:8080"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"10s"`
	BreakerFailures int           `env:"DISPATCH_BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"DISPATCH_BREAKER_COOLDOWN" envDefault:"30s"`
}

// Caller configures bearer token validation for callers.
type Caller struct {
	SigningKey string `env:"CALLER_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	Issuer     string `env:"CALLER_TOKEN_ISSUER" envDefault:"bridgeid"`
}

type Database struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
}

type Redis struct {
	URL          string        `env:"REDIS_URL"`
	Channel      string        `env:"REDIS_EVENTS_CHANNEL" envDefault:"bridgeid.events"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type Kafka struct {
	Brokers         string        `env:"KAFKA_BROKERS"`
	Topic           string        `env:"KAFKA_TOPIC" envDefault:"bridgeid.verification-events"`
	Acks            string        `env:"KAFKA_ACKS" envDefault:"all"`
	Retries         int           `env:"KAFKA_RETRIES" envDefault:"3"`
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"30s"`
}

// Monitor configures the stale pending request reporter.
type Monitor struct {
	StaleAfter   time.Duration `env:"PENDING_STALE_AFTER" envDefault:"1h"`
	ScanInterval time.Duration `env:"STALE_SCAN_INTERVAL" envDefault:"1m"`
}

// Bootstrap is the typed form of the responder settings used when no settings are stored yet.
type Bootstrap struct {
	Instance       common.Address
	Owner          common.Address
	Responder      common.Address
	CorrelationTag []byte
	FeeAmount      *big.Int
	MockMode       bool
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	_, err := c.Bootstrap()
	if err != nil {
		return err
	}
	var errs []error
	if !c.Responder.MockMode && c.Responder.URL == "" {
		errs = append(errs, errors.New("RESPONDER_URL is required unless MOCK_MODE is enabled"))
	}
	if c.Monitor.StaleAfter <= 0 || c.Monitor.ScanInterval <= 0 {
		errs = append(errs, errors.New("PENDING_STALE_AFTER and STALE_SCAN_INTERVAL must be positive"))
	}
	if len(c.Caller.SigningKey) < 16 {
		errs = append(errs, errors.New("CALLER_SIGNING_KEY must be at least 16 bytes"))
	}
	return errors.Join(errs...)
}

// Bootstrap converts the string settings into protocol types.
func (c *Config) Bootstrap() (Bootstrap, error) {
	instance, err := domain.ParseAddress(c.InstanceAddress)
	if err != nil {
		return Bootstrap{}, fmt.Errorf("INSTANCE_ADDRESS: %w", err)
	}
	owner, err := domain.ParseAddress(c.OwnerAddress)
	if err != nil {
		return Bootstrap{}, fmt.Errorf("OWNER_ADDRESS: %w", err)
	}
	responder, err := domain.ParseAddress(c.Responder.Address)
	if err != nil {
		return Bootstrap{}, fmt.Errorf("RESPONDER_ADDRESS: %w", err)
	}
	tag, err := hexutil.Decode(c.Responder.CorrelationTag)
	if err != nil {
		return Bootstrap{}, fmt.Errorf("CORRELATION_TAG: %w", err)
	}
	fee, err := domain.ParseFee(c.Responder.FeeAmount)
	if err != nil {
		return Bootstrap{}, fmt.Errorf("FEE_AMOUNT: %w", err)
	}
	return Bootstrap{
		Instance:       instance,
		Owner:          owner,
		Responder:      responder,
		CorrelationTag: tag,
		FeeAmount:      fee,
		MockMode:       c.Responder.MockMode,
	}, nil
}
