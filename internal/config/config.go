// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// Store drivers.
const (
	StoreMongoDB  = "mongodb"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
	StoreMemory   = "memory"
)

// Development passphrases used by the legacy-md5 derivation when no master
// key is configured. They are never applied to argon2id or KMS-wrapped keys.
const (
	LegacyBlueMasterKey  = "passwordBLUE"
	LegacyGreenMasterKey = "passwordGREEN"
)

// Config holds all application configuration.
type Config struct {
	// StoreDriver selects the backing store: mongodb, postgres, mysql or memory.
	StoreDriver string

	// MongoURI is the MongoDB connection string.
	MongoURI string
	// MongoDatabase is the secrets database. Falls back to the URI path, then "secrets".
	MongoDatabase string
	// MongoKeyVaultDatabase holds both key vaults and the activation record.
	MongoKeyVaultDatabase string
	// MongoConnectTimeout bounds connecting and the initial ping.
	MongoConnectTimeout time.Duration

	// DBConnectionString is the DSN for the postgres and mysql drivers.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// BlueMasterKey and GreenMasterKey are the per-color passphrases, or
	// base64 KMS ciphertexts of them when KMSKeyURI is set.
	BlueMasterKey  string
	GreenMasterKey string
	// KeyDerivation turns passphrases into master keys: argon2id or legacy-md5.
	KeyDerivation string
	// KMSKeyURI is the gocloud.dev secrets keeper URI used to unwrap passphrases.
	KMSKeyURI string
	// DefaultAlgorithm is used by write and rotate when no algorithm is given.
	DefaultAlgorithm string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// APITokenHash is the go-pwdhash hash of the API bearer token.
	APITokenHash string
	// ShutdownTimeout bounds graceful shutdown of the servers.
	ShutdownTimeout time.Duration

	// RateLimitEnabled indicates whether per-client rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size of the rate limiter.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	cfg := &Config{
		StoreDriver: strings.ToLower(env.GetString("STORE_DRIVER", StoreMongoDB)),

		// MongoDB
		MongoURI:              env.GetString("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:         env.GetString("MONGODB_DATABASE", ""),
		MongoKeyVaultDatabase: env.GetString("MONGODB_KEY_VAULT_DATABASE", secretsDomain.DefaultKeyVaultDatabase),
		MongoConnectTimeout:   env.GetDuration("MONGODB_CONNECT_TIMEOUT", 10, time.Second),

		// SQL
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Keys
		BlueMasterKey:    env.GetString("BLUE_MASTER_KEY", ""),
		GreenMasterKey:   env.GetString("GREEN_MASTER_KEY", ""),
		KeyDerivation:    env.GetString("KEY_DERIVATION", "argon2id"),
		KMSKeyURI:        env.GetString("KMS_KEY_URI", ""),
		DefaultAlgorithm: env.GetString("DEFAULT_ALGORITHM", string(cryptoDomain.DefaultAlgorithm)),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Server
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		APITokenHash:    env.GetString("API_TOKEN_HASH", ""),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT", 10, time.Second),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "bluegreen"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
	cfg.applyLegacyKeyDefaults()

	return cfg
}

func (c *Config) applyLegacyKeyDefaults() {
	if c.KeyDerivation != "legacy-md5" || c.KMSKeyURI != "" {
		return
	}
	if c.BlueMasterKey == "" {
		c.BlueMasterKey = LegacyBlueMasterKey
	}
	if c.GreenMasterKey == "" {
		c.GreenMasterKey = LegacyGreenMasterKey
	}
}

// ApplyOverrides replaces the store URI and the master key passphrases with
// the non-empty CLI flag values. The URI goes to the configured driver.
func (c *Config) ApplyOverrides(uri, blueKey, greenKey string) {
	if uri != "" {
		if c.StoreDriver == StoreMongoDB {
			c.MongoURI = uri
		} else {
			c.DBConnectionString = uri
		}
	}
	if blueKey != "" {
		c.BlueMasterKey = blueKey
	}
	if greenKey != "" {
		c.GreenMasterKey = greenKey
	}
}

// Validate checks the settings needed by every command. Master keys are
// checked when they are used, so key-less commands keep working.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.StoreDriver,
			validation.Required,
			validation.In(StoreMongoDB, StorePostgres, StoreMySQL, StoreMemory),
		),
		validation.Field(&c.MongoURI, validation.When(c.StoreDriver == StoreMongoDB, validation.Required)),
		validation.Field(&c.MongoKeyVaultDatabase, validation.When(c.StoreDriver == StoreMongoDB, validation.Required)),
		validation.Field(&c.DBConnectionString,
			validation.When(c.StoreDriver == StorePostgres || c.StoreDriver == StoreMySQL, validation.Required),
		),
		validation.Field(&c.KeyDerivation, validation.Required, validation.In("argon2id", "legacy-md5")),
		validation.Field(&c.DefaultAlgorithm, validation.By(func(value any) error {
			_, err := cryptoDomain.ParseAlgorithm(value.(string))
			return err
		})),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.ServerPort, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.MetricsPort, validation.When(c.MetricsEnabled, validation.Min(1), validation.Max(65535))),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrConfiguration, err.Error())
	}
	return nil
}

// SecretsDatabase returns the MongoDB database holding the secret collections.
func (c *Config) SecretsDatabase() string {
	if c.MongoDatabase != "" {
		return c.MongoDatabase
	}
	if cs, err := connstring.Parse(c.MongoURI); err == nil && cs.Database != "" {
		return cs.Database
	}
	return secretsDomain.DefaultSecretsDatabase
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
