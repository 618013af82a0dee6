package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []Recipient
	}{
		{name: "empty", list: "", want: []Recipient{}},
		{name: "single", list: "shop@example.com", want: []Recipient{{Email: "shop@example.com"}}},
		{name: "blanks dropped", list: " a@example.com, ,b@example.com,, ", want: []Recipient{{Email: "a@example.com"}, {Email: "b@example.com"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRecipients(tt.list))
		})
	}
}

func TestSMTPSender_Send(t *testing.T) {
	d := &fakeDialer{}
	sender := &SMTPSender{dialer: d, from: "noreply@example.com", fromName: "Gold Shop"}

	err := sender.Send(context.Background(), Message{
		To:      ParseRecipients("a@example.com,b@example.com"),
		ReplyTo: "customer@example.com",
		Subject: "New listing: Ring",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"customer@example.com"}, m.GetHeader("Reply-To"))
	assert.Equal(t, []string{"New listing: Ring"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{`"Gold Shop" <noreply@example.com>`}, m.GetHeader("From"))
}

func TestSMTPSender_SendErrors(t *testing.T) {
	d := &fakeDialer{err: errors.New("535 authentication failed")}
	sender := &SMTPSender{dialer: d, from: "noreply@example.com"}

	err := sender.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.Empty(t, d.sent)

	err = sender.Send(context.Background(), Message{To: []Recipient{{Email: "a@example.com"}}, Subject: "x"})
	assert.ErrorContains(t, err, "535 authentication failed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = sender.Send(ctx, Message{To: []Recipient{{Email: "a@example.com"}}})
	assert.ErrorIs(t, err, context.Canceled)
}
