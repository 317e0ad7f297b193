package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Attachment is a file sent along with a message
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is a single outgoing email
type Message struct {
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// LogMailer writes messages to the log instead of delivering them
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a mailer that logs every message it is given
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mailer").Logger()}
}

func (m *LogMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := m.log.Info().
		Str("from", msg.From).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.Body))
	for _, a := range msg.Attachments {
		event = event.Str("attachment", a.Name).Int("attachment_bytes", len(a.Data))
	}
	event.Msg("Email delivered")
	return nil
}
