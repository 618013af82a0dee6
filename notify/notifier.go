package notify

//go:generate mockgen -package=notify -destination=mock.go -source=notifier.go

import (
	"context"
	"fmt"
	"log/slog"

	"goldpawn/adapters/mail"
	"goldpawn/validation"

	"github.com/go-playground/validator/v10"
)

// Deliverer sends a single request.
type Deliverer interface {
	Deliver(ctx context.Context, req Request) error
}

type Notifier struct {
	sender     mail.Sender
	recipients []mail.Recipient
	validate   *validator.Validate
	logger     *slog.Logger
}

type NotifierOption func(*Notifier)

func WithNotifierLogger(logger *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		n.logger = logger
	}
}

func NewNotifier(sender mail.Sender, recipients []mail.Recipient, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		sender:     sender,
		recipients: recipients,
		validate:   validation.New(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With(slog.String("caller", "notify.Notifier"))
	return n
}

// Deliver validates req and mails it to every configured recipient, with
// replies going to the requester.
func (n *Notifier) Deliver(ctx context.Context, req Request) error {
	const op = "Notifier.Deliver"
	if err := validation.Check(n.validate, req); err != nil {
		return err
	}
	if len(n.recipients) == 0 {
		return mail.ErrNoRecipients
	}

	subject, body, err := Compose(req)
	if err != nil {
		return err
	}
	err = n.sender.Send(ctx, mail.Message{
		To:      n.recipients,
		ReplyTo: req.Email,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to send email, err=%w", op, err)
	}
	n.logger.Info("notification sent", slog.String("subject", subject), slog.Int("recipients", len(n.recipients)))
	return nil
}
