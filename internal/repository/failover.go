package repository

import (
	"context"
	"sync/atomic"
	"time"

	"trailmarket/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverStateRepository tries the primary store first and falls back to
// the secondary when the primary errors. After a minute it probes the
// primary again.
type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary state repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}

func (r *FailoverStateRepository) shouldRetryPrimary() bool {
	return r.isDown.Load() && time.Since(r.lastCheck) > time.Minute
}

func (r *FailoverStateRepository) SetTyping(ctx context.Context, chatID, userID int64, ttl time.Duration) error {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		err := r.primary.SetTyping(ctx, chatID, userID, ttl)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetTyping(ctx, chatID, userID, ttl)
}

func (r *FailoverStateRepository) ClearTyping(ctx context.Context, chatID, userID int64) error {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		err := r.primary.ClearTyping(ctx, chatID, userID)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.ClearTyping(ctx, chatID, userID)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.isDown.Store(false)
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
