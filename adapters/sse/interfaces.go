//go:generate mockgen -package=sse -destination=mock.go -source=interfaces.go

package sse

// PublishRequest is what travels over the shared stream: the target channel
// and the payload for its subscribers.
type PublishRequest[T any] struct {
	Channel string `json:"channel" msgpack:"channel"`
	Message T      `json:"message" msgpack:"message"`
}

// IChannel fans a message out to the subscribers of one topic.
type IChannel[T any] interface {
	Subscribe() <-chan T
	Unsubscribe(ch <-chan T)
	UnsubscribeAll()
	// Broadcast never blocks. It returns how many subscribers missed the
	// message because their buffer was full.
	Broadcast(message T) int
	IsIdle() bool
}

type IConnectionManager[T any] interface {
	// Start must be called before any other method.
	Start()
	// Done releases every subscriber and stops the transport.
	Done()
	Subscribe(channelName string) (<-chan T, error)
	Publish(channelName string, data T) error
	Unsubscribe(channelName string, ch <-chan T)
}
