// Package mail sends HTML email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("no recipients configured")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type Recipient struct {
	Email string `json:"email"`
}

// ParseRecipients splits a comma separated address list, dropping blank entries.
func ParseRecipients(list string) []Recipient {
	addrs := lo.Compact(lo.Map(strings.Split(list, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	return lo.Map(addrs, func(addr string, _ int) Recipient {
		return Recipient{Email: addr}
	})
}

type Message struct {
	To      []Recipient
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPSender struct {
	dialer   dialer
	from     string
	fromName string
}

func NewSMTPSender(config Config) *SMTPSender {
	from := config.From
	if from == "" {
		from = config.Username
	}
	return &SMTPSender{
		dialer:   gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		from:     from,
		fromName: config.FromName,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	const op = "Send"

	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("[%s] Fail to send email, err=%w", op, err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Message, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", lo.Map(msg.To, func(r Recipient, _ int) string { return r.Email })...)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return m, nil
}
