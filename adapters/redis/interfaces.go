//go:generate mockgen -package=redis -destination=mock.go -source=interfaces.go

package redis

import (
	"context"
)

// IProducer appends typed messages to a stream in the background.
type IProducer[T any] interface {
	Start()
	Publish(data T) error
	Close()
}

// IGroupConsumer reads a stream through a consumer group. Every delivered
// message must be settled with Done or Fail.
type IGroupConsumer[T any] interface {
	Start() error
	Subscribe() <-chan *Message[T]
	Close() error
}

// IConsumer tails a stream without acknowledgement, every instance sees every message.
type IConsumer[T any] interface {
	Start()
	Subscribe() <-chan T
	Close()
}

type IAutoRenewMutex interface {
	Lock(ctx context.Context) (context.Context, error)
	Unlock() (bool, error)
	Valid() bool
}
