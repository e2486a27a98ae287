package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fluyo/backend/internal/db"
	"github.com/fluyo/backend/internal/handlers"
	"github.com/fluyo/backend/internal/logger"
	"github.com/fluyo/backend/internal/metrics"
	"github.com/fluyo/backend/internal/repository"
	"github.com/fluyo/backend/internal/repository/mongodb"
	"github.com/fluyo/backend/internal/repository/postgres"
	"github.com/fluyo/backend/internal/service/auth"
	"github.com/fluyo/backend/internal/service/auth/tokenmanager"
	"github.com/fluyo/backend/internal/service/company"
	"github.com/fluyo/backend/internal/service/janitor"
	"github.com/fluyo/backend/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger  logger.Logger
	janitor *janitor.Janitor

	// Release database connections
	close func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Pick storage by DSN scheme
	storage, closeStorage, err := openStorage(ctx, c)
	if err != nil {
		return nil, err
	}
	succeeded := false
	defer func() {
		if !succeeded {
			closeStorage()
		}
	}()

	// Initialize services
	hasher, err := auth.NewPasswordHasher(c.PasswordHasher)
	if err != nil {
		return nil, fmt.Errorf("error while creating password hasher: %w", err)
	}
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey, TTL: c.TokenTTL})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager: %w", err)
	}
	m := metrics.New()
	authService, err := auth.NewService(
		auth.Config{Hasher: hasher, Logger: logger, Observer: m},
		tokenManager,
		storage,
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service: %w", err)
	}
	userService := user.NewService(hasher, storage)
	companyService := company.NewService(storage)

	j := janitor.New(
		janitor.Config{Interval: c.SessionCleanupInterval, Retention: c.SessionRetention},
		storage.Session(),
		logger,
	)

	router := handlers.NewRouter(authService, userService, companyService, m.Handler(), logger)

	succeeded = true
	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
		logger:     logger,
		janitor:    j,
		close:      closeStorage,
	}, nil
}

func openStorage(ctx context.Context, c *Config) (repository.Storage, func(), error) {
	if db.IsMongoDSN(c.DatabaseDSN) {
		client, err := db.ConnectMongo(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("error while connecting to mongo. Err: %w", err)
		}
		closeFn := func() {
			timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(timeoutCtx)
		}

		database := client.Database(c.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("error while creating mongo indexes. Err: %w", err)
		}
		return mongodb.NewStorage(database), closeFn, nil
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	return postgres.NewStorage(pool), pool.Close, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	janitorStopped := s.janitor.Run(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-janitorStopped

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
