package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoRenewMutex_Exclusive(t *testing.T) {
	server, client := newMiniredis(t)

	holder := NewAutoRenewMutex(client, "lock:outbox:mailer")
	lockCtx, err := holder.Lock(context.Background())
	require.NoError(t, err)
	assert.True(t, holder.Valid())
	assert.True(t, server.Exists("lock:outbox:mailer"))

	waiter := NewAutoRenewMutex(client, "lock:outbox:mailer",
		WithAutoRenewMutexRetryDelay(10*time.Millisecond),
		WithAutoRenewMutexSkipLockError(true),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = waiter.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	ok, err := holder.Unlock()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, holder.Valid())
	select {
	case <-lockCtx.Done():
	default:
		t.Fatal("lock context should be cancelled after unlock")
	}

	lockCtx, err = waiter.Lock(context.Background())
	require.NoError(t, err)
	assert.NoError(t, lockCtx.Err())
	_, err = waiter.Unlock()
	require.NoError(t, err)
}

func TestAutoRenewMutex_RenewsWhileHeld(t *testing.T) {
	_, client := newMiniredis(t)

	mutex := NewAutoRenewMutex(client, "lock:renew",
		WithAutoRenewMutexExpiry(300*time.Millisecond),
		WithAutoRenewMutexRenewInterval(50*time.Millisecond),
	)
	_, err := mutex.Lock(context.Background())
	require.NoError(t, err)
	defer mutex.Unlock()

	// outlive the original expiry
	time.Sleep(500 * time.Millisecond)
	assert.True(t, mutex.Valid())
}

func TestAutoRenewMutex_LockCancelled(t *testing.T) {
	_, client := newMiniredis(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAutoRenewMutex(client, "lock:x", WithAutoRenewMutexSkipLockError(true)).Lock(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
