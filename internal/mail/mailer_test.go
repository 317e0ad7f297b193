package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogMailerSend(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewLogMailer(zerolog.New(&buf))

	err := mailer.Send(context.Background(), &Message{
		From:    "noreply@example.com",
		To:      "author@example.com",
		Subject: "Your text material was approved",
		Body:    "Congratulations",
		Attachments: []Attachment{
			{Name: "material.txt", ContentType: "text/plain", Data: []byte("hello")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"to":"author@example.com"`, `"attachment":"material.txt"`, `"component":"mailer"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %s, got %s", want, out)
		}
	}
}

func TestLogMailerCancelled(t *testing.T) {
	mailer := NewLogMailer(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := mailer.Send(ctx, &Message{To: "a@example.com"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
