package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const defaultRetryInterval = time.Minute

// FailoverBackend serves from primary and switches to fallback while primary
// fails. Primary is retried once per retry interval. Values written to fallback
// are not copied back, so a login made during an outage reads as signed out
// once primary recovers.
type FailoverBackend struct {
	primary  Backend
	fallback Backend
	logger   zerolog.Logger

	isDown        atomic.Bool
	mu            sync.Mutex
	lastCheck     time.Time
	retryInterval time.Duration
}

func NewFailoverBackend(primary, fallback Backend, logger *zerolog.Logger) *FailoverBackend {
	return &FailoverBackend{
		primary:       primary,
		fallback:      fallback,
		logger:        logger.With().Str("component", "session_failover").Logger(),
		retryInterval: defaultRetryInterval,
	}
}

func (f *FailoverBackend) usePrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) >= f.retryInterval {
		f.lastCheck = time.Now()
		return true
	}
	return false
}

func (f *FailoverBackend) markDown(err error) {
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
	if !f.isDown.Swap(true) {
		f.logger.Warn().Err(err).Msg("primary session backend failed, using fallback")
	}
}

func (f *FailoverBackend) markUp() {
	if f.isDown.Swap(false) {
		f.logger.Info().Msg("primary session backend recovered")
	}
}

func (f *FailoverBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if f.usePrimary() {
		v, ok, err := f.primary.Get(ctx, key)
		if err == nil {
			f.markUp()
			return v, ok, nil
		}
		f.markDown(err)
	}
	return f.fallback.Get(ctx, key)
}

func (f *FailoverBackend) Set(ctx context.Context, values map[string]string) error {
	if f.usePrimary() {
		err := f.primary.Set(ctx, values)
		if err == nil {
			f.markUp()
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.Set(ctx, values)
}

func (f *FailoverBackend) Delete(ctx context.Context, keys ...string) error {
	if f.usePrimary() {
		err := f.primary.Delete(ctx, keys...)
		if err == nil {
			f.markUp()
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.Delete(ctx, keys...)
}

// Ping succeeds while either backend answers.
func (f *FailoverBackend) Ping(ctx context.Context) error {
	if err := f.primary.Ping(ctx); err == nil {
		return nil
	}
	return f.fallback.Ping(ctx)
}
