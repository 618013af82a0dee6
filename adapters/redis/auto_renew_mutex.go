package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// AutoRenewMutex is a lease on a single Redis key. While held, a background
// loop extends the lease so a slow holder never loses it to expiry.
type AutoRenewMutex struct {
	lease   *redsync.Mutex
	key     string
	options autoRenewMutexOptions
	logger  *slog.Logger

	mu      sync.Mutex
	release context.CancelFunc
	renewed chan struct{}
	held    bool
}

type autoRenewMutexOptions struct {
	renewInterval time.Duration
	retryDelay    time.Duration
	expiry        time.Duration
	skipLockError bool
	logger        *slog.Logger
}

type AutoRenewMutexOption func(*autoRenewMutexOptions)

func WithAutoRenewMutexRenewInterval(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.renewInterval = d
	}
}

// WithAutoRenewMutexRetryDelay sets the pause between lock attempts.
func WithAutoRenewMutexRetryDelay(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.retryDelay = d
	}
}

func WithAutoRenewMutexExpiry(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.expiry = d
	}
}

// WithAutoRenewMutexSkipLockError keeps retrying on Redis errors instead of returning them from Lock.
func WithAutoRenewMutexSkipLockError(skip bool) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.skipLockError = skip
	}
}

func WithAutoRenewMutexLogger(logger *slog.Logger) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.logger = logger
	}
}

// NewAutoRenewMutex prepares a lease on key. Nothing is sent to Redis until Lock.
func NewAutoRenewMutex(client redis.UniversalClient, key string, opts ...AutoRenewMutexOption) IAutoRenewMutex {
	options := autoRenewMutexOptions{
		expiry:     8 * time.Second,
		retryDelay: 500 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.renewInterval <= 0 {
		// a third of the expiry leaves room for two failed extends
		options.renewInterval = options.expiry / 3
	}

	lease := redsync.New(goredis.NewPool(client)).NewMutex(key,
		redsync.WithExpiry(options.expiry),
		redsync.WithTries(1),
		redsync.WithRetryDelay(options.retryDelay),
	)
	return &AutoRenewMutex{
		lease:   lease,
		key:     key,
		options: options,
		logger:  options.logger.With(slog.String("caller", "AutoRenewMutex"), slog.String("key", key)),
	}
}

// Lock blocks until the lease is taken or ctx is done. The returned context
// ends when the lease is released or can no longer be extended.
func (m *AutoRenewMutex) Lock(ctx context.Context) (context.Context, error) {
	const op = "Lock"

	for {
		err := m.lease.LockContext(ctx)
		if err == nil {
			return m.hold(ctx), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var redisErr *redsync.RedisError
		if errors.As(err, &redisErr) && !m.options.skipLockError {
			return nil, fmt.Errorf("[%s] Fail to acquire %s, err=%w", op, m.key, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.options.retryDelay):
		}
	}
}

func (m *AutoRenewMutex) Unlock() (bool, error) {
	m.mu.Lock()
	release, renewed := m.release, m.renewed
	m.held = false
	m.release = nil
	m.mu.Unlock()

	if release != nil {
		release()
		<-renewed
	}
	return m.lease.Unlock()
}

// Valid reports whether the lease is held and has not lapsed.
func (m *AutoRenewMutex) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held && time.Now().Before(m.lease.Until())
}

func (m *AutoRenewMutex) hold(parent context.Context) context.Context {
	lockCtx, release := context.WithCancel(parent)
	renewed := make(chan struct{})

	m.mu.Lock()
	m.held = true
	m.release = release
	m.renewed = renewed
	m.mu.Unlock()

	go func() {
		defer close(renewed)
		ticker := time.NewTicker(m.options.renewInterval)
		defer ticker.Stop()

		for {
			select {
			case <-lockCtx.Done():
				return
			case <-ticker.C:
				if ok, err := m.lease.ExtendContext(lockCtx); err != nil || !ok {
					if lockCtx.Err() == nil {
						m.logger.Warn("lease lost", slog.Any("error", err))
					}
					m.mu.Lock()
					m.held = false
					m.mu.Unlock()
					release()
					return
				}
			}
		}
	}()
	return lockCtx
}
