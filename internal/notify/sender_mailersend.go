package notify

import (
	"context"
	"fmt"

	"github.com/mailersend/mailersend-go"
)

// MailerSendSender delivers external messages through the MailerSend
// transactional email API.  It is the production Sender; tests use
// in-memory fakes instead.
type MailerSendSender struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
}

// NewMailerSendSender constructs a sender from an API key and the
// from-address used on every message.
func NewMailerSendSender(apiKey, fromName, fromEmail string) *MailerSendSender {
	return &MailerSendSender{
		client:    mailersend.NewMailersend(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send implements Sender.  The context carries the dispatcher's
// per-channel timeout; the API call is abandoned when it expires.
func (m *MailerSendSender) Send(ctx context.Context, to Recipient, subject, body string) error {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	msg.SetRecipients([]mailersend.Recipient{{Name: to.Name, Email: to.Email}})
	msg.SetSubject(subject)
	msg.SetText(body)

	if _, err := m.client.Email.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailersend: %w", err)
	}
	return nil
}
