package lifecycle

//go:generate mockgen -package=lifecycle -destination=mock.go -source=interfaces.go

import "context"

// BlobRemover deletes a stored object given the public URL it was served from.
type BlobRemover interface {
	DeleteByURL(ctx context.Context, url string) error
}

// EventSink receives an event after every successful lifecycle operation.
type EventSink interface {
	PublishItemEvent(ctx context.Context, event ItemEvent) error
}
