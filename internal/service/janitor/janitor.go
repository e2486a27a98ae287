package janitor

import (
	"context"
	"time"

	"github.com/fluyo/backend/internal/logger"
)

const (
	defaultInterval  = time.Hour          // How often expired sessions are purged
	defaultRetention = 7 * 24 * time.Hour // How long expired sessions are kept for audit
)

type sessionRepo interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Config struct {
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time
}

// Janitor periodically deletes sessions that expired longer than Retention ago.
type Janitor struct {
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	sessions  sessionRepo
	logger    logger.Logger
}

func New(cfg Config, sessions sessionRepo, logger logger.Logger) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Janitor{
		interval:  cfg.Interval,
		retention: cfg.Retention,
		now:       cfg.Now,
		sessions:  sessions,
		logger:    logger,
	}
}

// Run purges on every tick until ctx is done. The returned channel is closed once the loop exits.
func (j *Janitor) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	j.logger.Debug("Starting session janitor", "interval", j.interval, "retention", j.retention)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				j.logger.Debug("Session janitor stopped by context")
				return

			case <-ticker.C:
				_, _ = j.Purge(ctx)
			}
		}
	}()

	return idleStopped
}

// Purge deletes sessions that expired before now minus the retention window.
func (j *Janitor) Purge(ctx context.Context) (int64, error) {
	before := j.now().Add(-j.retention)

	n, err := j.sessions.DeleteExpired(ctx, before)
	if err != nil {
		j.logger.Error("Failed to purge expired sessions", "error", err)
		return 0, err
	}

	j.logger.Debug("Expired sessions purged", "count", n, "before", before)
	return n, nil
}
