package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/fluyo/backend/internal/logger"
	"github.com/fluyo/backend/internal/service/auth"
)

const (
	defaultListenAddr       = "localhost:8000"
	defaultLoggingLevel     = logger.LevelInfo
	defaultEnvironment      = logger.EnvProduction
	defaultMongoDatabase    = "fluyo"
	defaultTokenTTL         = 24 * time.Hour
	defaultPasswordHasher   = auth.HasherBcrypt
	defaultSessionRetention = 7 * 24 * time.Hour
	defaultCleanupInterval  = time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to. Either postgres:// or mongodb:// URI
	DatabaseDSN string

	// Database name used when DatabaseDSN points to MongoDB
	MongoDatabase string

	// Secret key
	// Used to sign access tokens, so must be kept private
	SecretKey string

	// Environment
	Environment string

	// Access token lifetime
	TokenTTL time.Duration

	// Algorithm for new password hashes (bcrypt, argon2id)
	PasswordHasher string

	// How long expired sessions are kept before purge
	SessionRetention time.Duration

	// How often expired sessions are purged
	SessionCleanupInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		LogLevel:               defaultLoggingLevel,
		ListenAddr:             defaultListenAddr,
		Environment:            defaultEnvironment,
		MongoDatabase:          defaultMongoDatabase,
		TokenTTL:               defaultTokenTTL,
		PasswordHasher:         defaultPasswordHasher,
		SessionRetention:       defaultSessionRetention,
		SessionCleanupInterval: defaultCleanupInterval,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":              setString(&c.ListenAddr),
		"DATABASE_URI":             setString(&c.DatabaseDSN),
		"MONGO_DATABASE":           setString(&c.MongoDatabase),
		"SECRET_KEY":               setString(&c.SecretKey),
		"LOG_LEVEL":                setString(&c.LogLevel),
		"ENVIRONMENT":              setString(&c.Environment),
		"TOKEN_TTL":                setDuration(&c.TokenTTL),
		"PASSWORD_HASHER":          setString(&c.PasswordHasher),
		"SESSION_RETENTION":        setDuration(&c.SessionRetention),
		"SESSION_CLEANUP_INTERVAL": setDuration(&c.SessionCleanupInterval),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("fluyo", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string (postgres:// or mongodb://)")
	fs.StringVar(&c.MongoDatabase, "mongo-database", c.MongoDatabase, "MongoDB database name")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.DurationVar(&c.TokenTTL, "token-ttl", c.TokenTTL, "Access token lifetime")
	fs.StringVar(&c.PasswordHasher, "password-hasher", c.PasswordHasher, "Password hashing algorithm (bcrypt, argon2id)")
	fs.DurationVar(&c.SessionRetention, "session-retention", c.SessionRetention, "How long expired sessions are kept")
	fs.DurationVar(&c.SessionCleanupInterval, "session-cleanup-interval", c.SessionCleanupInterval, "How often expired sessions are purged")

	return fs.Parse(args)
}

// Validate reports options the server can't start without
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token TTL must be positive"))
	}
	if c.SessionCleanupInterval <= 0 {
		errs = append(errs, errors.New("session cleanup interval must be positive"))
	}
	if c.SessionRetention < 0 {
		errs = append(errs, errors.New("session retention must not be negative"))
	}

	return errors.Join(errs...)
}
