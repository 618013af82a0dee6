package sse

import (
	"context"
	"log/slog"
	"sync"

	redisAdapter "goldpawn/adapters/redis"
)

// ConnectionManager routes published messages to the subscribers of named
// channels. With a transport configured every message goes through the
// shared stream first, so subscribers on all instances receive it.
type ConnectionManager[T any] struct {
	logger     *slog.Logger
	bufferSize int
	producer   redisAdapter.IProducer[PublishRequest[T]]
	consumer   redisAdapter.IConsumer[PublishRequest[T]]

	mu       sync.RWMutex
	wg       sync.WaitGroup
	active   bool
	channels map[string]IChannel[T]
}

type ManagerOption[T any] func(*ConnectionManager[T])

func WithManagerLogger[T any](logger *slog.Logger) ManagerOption[T] {
	return func(cm *ConnectionManager[T]) {
		cm.logger = logger
	}
}

// WithManagerBufferSize sets how many messages a slow subscriber may lag behind
// before it starts missing messages.
func WithManagerBufferSize[T any](size int) ManagerOption[T] {
	return func(cm *ConnectionManager[T]) {
		cm.bufferSize = size
	}
}

// WithManagerTransport shares messages between instances through a stream.
func WithManagerTransport[T any](
	producer redisAdapter.IProducer[PublishRequest[T]],
	consumer redisAdapter.IConsumer[PublishRequest[T]],
) ManagerOption[T] {
	return func(cm *ConnectionManager[T]) {
		cm.producer = producer
		cm.consumer = consumer
	}
}

func NewConnectionManager[T any](opts ...ManagerOption[T]) *ConnectionManager[T] {
	cm := &ConnectionManager[T]{
		logger:     slog.Default(),
		bufferSize: 16,
		channels:   make(map[string]IChannel[T]),
	}
	for _, opt := range opts {
		opt(cm)
	}
	cm.logger = cm.logger.With(slog.String("caller", "ConnectionManager"))
	return cm
}

func (cm *ConnectionManager[T]) hasTransport() bool {
	return cm.producer != nil && cm.consumer != nil
}

func (cm *ConnectionManager[T]) Start() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.active {
		return
	}
	cm.active = true
	if !cm.hasTransport() {
		return
	}

	cm.producer.Start()
	cm.consumer.Start()
	messages := cm.consumer.Subscribe()
	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		for msg := range messages {
			cm.mu.RLock()
			cm.dispatch(msg)
			cm.mu.RUnlock()
		}
	}()
}

// dispatch must be called with mu held.
func (cm *ConnectionManager[T]) dispatch(req PublishRequest[T]) {
	channel, ok := cm.channels[req.Channel]
	if !ok {
		return
	}
	if dropped := channel.Broadcast(req.Message); dropped > 0 {
		cm.logger.Warn("slow subscribers missed a message",
			slog.String("channel", req.Channel),
			slog.Int("dropped", dropped),
		)
	}
}

func (cm *ConnectionManager[T]) Done() {
	cm.mu.Lock()
	if !cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = false
	cm.mu.Unlock()

	if cm.hasTransport() {
		cm.consumer.Close()
		cm.wg.Wait()
		cm.producer.Close()
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, channel := range cm.channels {
		channel.UnsubscribeAll()
	}
	clear(cm.channels)
}

// Subscribe returns a buffered channel of messages published to channelName.
func (cm *ConnectionManager[T]) Subscribe(channelName string) (<-chan T, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if !cm.active {
		return nil, context.Canceled
	}

	c, ok := cm.channels[channelName]
	if !ok {
		c = NewChannel[T](cm.bufferSize)
		cm.channels[channelName] = c
	}
	return c.Subscribe(), nil
}

func (cm *ConnectionManager[T]) Publish(channelName string, data T) error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.active {
		return context.Canceled
	}

	req := PublishRequest[T]{Channel: channelName, Message: data}
	if cm.hasTransport() {
		return cm.producer.Publish(req)
	}
	cm.dispatch(req)
	return nil
}

// Unsubscribe closes ch and drops the channel once it has no subscribers left.
func (cm *ConnectionManager[T]) Unsubscribe(channelName string, ch <-chan T) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, ok := cm.channels[channelName]
	if !ok {
		return
	}
	c.Unsubscribe(ch)
	if c.IsIdle() {
		delete(cm.channels, channelName)
	}
}
