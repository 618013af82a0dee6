package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestNewGroupConsumer(t *testing.T) {
	client := redis.NewClient(&redis.Options{})
	defer client.Close()

	tests := []struct {
		name     string
		client   redis.UniversalClient
		stream   string
		group    string
		consumer string
		wantErr  string
	}{
		{name: "valid", client: client, stream: "s", group: "g", consumer: "c"},
		{name: "nil client", stream: "s", group: "g", consumer: "c", wantErr: "redis client cannot be nil"},
		{name: "empty group", client: client, stream: "s", consumer: "c", wantErr: "cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc, err := NewGroupConsumer[testEvent](tt.client, tt.stream, tt.group, tt.consumer)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, gc)
		})
	}
}

func newTestGroupConsumer(t *testing.T, client *redis.Client, name string, opts ...GroupConsumerOption[testEvent]) IGroupConsumer[testEvent] {
	t.Helper()
	opts = append([]GroupConsumerOption[testEvent]{WithGroupConsumerBlockTimeout[testEvent](50 * time.Millisecond)}, opts...)
	gc, err := NewGroupConsumer(client, "outbox", "mailer", name, opts...)
	require.NoError(t, err)
	require.NoError(t, gc.Start())
	return gc
}

func pendingCount(t *testing.T, client *redis.Client) int64 {
	t.Helper()
	pending, err := client.XPending(context.Background(), "outbox", "mailer").Result()
	require.NoError(t, err)
	return pending.Count
}

func TestGroupConsumer_CreatesGroupAndAcks(t *testing.T) {
	_, client := newMiniredis(t)

	gc := newTestGroupConsumer(t, client, "c1")
	addEvent(t, client, "outbox", testEvent{ItemID: "a"})

	msg := receive(t, gc.Subscribe())
	assert.Equal(t, "a", msg.Data.ItemID)
	assert.EqualValues(t, 1, pendingCount(t, client))

	require.NoError(t, msg.Done(context.Background()))
	require.NoError(t, msg.Done(context.Background()))
	assert.EqualValues(t, 0, pendingCount(t, client))

	require.NoError(t, gc.Close())
	_, ok := <-gc.Subscribe()
	assert.False(t, ok)
}

func TestGroupConsumer_StartWithExistingGroup(t *testing.T) {
	_, client := newMiniredis(t)
	require.NoError(t, client.XGroupCreateMkStream(context.Background(), "outbox", "mailer", "0").Err())

	gc := newTestGroupConsumer(t, client, "c1")
	require.NoError(t, gc.Close())
}

func TestGroupConsumer_FailMovesToDeadLetter(t *testing.T) {
	_, client := newMiniredis(t)

	gc := newTestGroupConsumer(t, client, "c1")
	defer gc.Close()
	addEvent(t, client, "outbox", testEvent{ItemID: "a"})

	msg := receive(t, gc.Subscribe())
	require.NoError(t, msg.Fail(context.Background(), errors.New("smtp: 550 mailbox unavailable")))

	dead, err := client.XRange(context.Background(), DeadLetterStream("outbox"), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "smtp: 550 mailbox unavailable", dead[0].Values["error"])
	decoded, err := DecodeMsgpack[testEvent](map[string]any{"data": dead[0].Values["data"]})
	require.NoError(t, err)
	assert.Equal(t, "a", decoded.ItemID)
	assert.EqualValues(t, 0, pendingCount(t, client))
}

func TestGroupConsumer_UndecodableGoesToDeadLetter(t *testing.T) {
	_, client := newMiniredis(t)

	gc := newTestGroupConsumer(t, client, "c1")
	defer gc.Close()
	require.NoError(t, client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: "outbox",
		Values: map[string]any{"data": "%%%"},
	}).Err())
	addEvent(t, client, "outbox", testEvent{ItemID: "b"})

	msg := receive(t, gc.Subscribe())
	assert.Equal(t, "b", msg.Data.ItemID)

	n, err := client.XLen(context.Background(), DeadLetterStream("outbox")).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGroupConsumer_StrictOrderingReplaysPending(t *testing.T) {
	_, client := newMiniredis(t)

	first := newTestGroupConsumer(t, client, "c1")
	id := addEvent(t, client, "outbox", testEvent{ItemID: "a"})
	msg := receive(t, first.Subscribe())
	require.Equal(t, id, msg.ID)
	// left unsettled, as when an instance dies mid-delivery
	require.NoError(t, first.Close())

	ctrl := gomock.NewController(t)
	mutex := NewMockIAutoRenewMutex(ctrl)
	mutex.EXPECT().Lock(gomock.Any()).DoAndReturn(func(ctx context.Context) (context.Context, error) {
		return ctx, nil
	})
	mutex.EXPECT().Unlock().Return(true, nil)

	second := newTestGroupConsumer(t, client, "c2",
		WithGroupConsumerStrictOrdering[testEvent](true),
		WithGroupConsumerMutex[testEvent](mutex),
	)
	replayed := receive(t, second.Subscribe())
	assert.Equal(t, id, replayed.ID)
	assert.Equal(t, "a", replayed.Data.ItemID)
	require.NoError(t, replayed.Done(context.Background()))

	addEvent(t, client, "outbox", testEvent{ItemID: "b"})
	assert.Equal(t, "b", receive(t, second.Subscribe()).Data.ItemID)
	require.NoError(t, second.Close())
}

func TestGroupConsumer_StrictOrderingWaitsForLock(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, mock := newRedisMock(t)
	// nothing but the group creation may reach Redis while the lock is held elsewhere
	mock.ExpectXGroupCreateMkStream("outbox", "mailer", "0").SetVal("OK")

	ctrl := gomock.NewController(t)
	mutex := NewMockIAutoRenewMutex(ctrl)
	locked := make(chan struct{})
	mutex.EXPECT().Lock(gomock.Any()).DoAndReturn(func(ctx context.Context) (context.Context, error) {
		close(locked)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	mutex.EXPECT().Unlock().Return(false, nil)

	gc, err := NewGroupConsumer(client, "outbox", "mailer", "c1",
		WithGroupConsumerStrictOrdering[testEvent](true),
		WithGroupConsumerMutex[testEvent](mutex),
	)
	require.NoError(t, err)
	require.NoError(t, gc.Start())
	<-locked
	require.NoError(t, gc.Close())
}
