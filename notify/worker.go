package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	redisAdapter "goldpawn/adapters/redis"
)

// Worker drains the notification outbox. Requests that cannot be delivered
// end up in the stream's dead-letter stream.
type Worker struct {
	consumer  redisAdapter.IGroupConsumer[Request]
	deliverer Deliverer
	timeout   time.Duration
	logger    *slog.Logger
	wg        sync.WaitGroup
}

type WorkerOption func(*Worker)

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithWorkerTimeout bounds a single delivery.
func WithWorkerTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		w.timeout = d
	}
}

func NewWorker(consumer redisAdapter.IGroupConsumer[Request], deliverer Deliverer, opts ...WorkerOption) *Worker {
	w := &Worker{
		consumer:  consumer,
		deliverer: deliverer,
		timeout:   30 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(slog.String("caller", "notify.Worker"))
	return w
}

func (w *Worker) Start() error {
	if err := w.consumer.Start(); err != nil {
		return err
	}
	messages := w.consumer.Subscribe()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for msg := range messages {
			w.handle(msg)
		}
	}()
	return nil
}

func (w *Worker) handle(msg *redisAdapter.Message[Request]) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	logger := w.logger.With(slog.String("messageId", msg.ID))
	if err := w.deliverer.Deliver(ctx, msg.Data); err != nil {
		logger.Error("failed to deliver notification", slog.Any("error", err))
		if err := msg.Fail(ctx, err); err != nil {
			logger.Error("failed to dead-letter notification", slog.Any("error", err))
		}
		return
	}
	if err := msg.Done(ctx); err != nil {
		logger.Error("failed to ack notification", slog.Any("error", err))
	}
}

// Close stops reading and waits for the delivery in flight.
func (w *Worker) Close() {
	w.consumer.Close()
	w.wg.Wait()
}
