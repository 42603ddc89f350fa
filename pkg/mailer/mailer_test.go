package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewPicksImplementation(t *testing.T) {
	_, ok := New(Config{}, zap.NewNop()).(*NopMailer)
	assert.True(t, ok)

	m, ok := New(Config{Host: "smtp.example.com", From: "shop@example.com"}, zap.NewNop()).(*SMTPMailer)
	assert.True(t, ok)
	assert.Equal(t, 587, m.cfg.Port)
}

func TestNopMailerSend(t *testing.T) {
	err := NewNopMailer(zap.NewNop()).Send(context.Background(), Message{To: "a@example.com", Subject: "hi"})
	assert.NoError(t, err)
}

func TestCompose(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.example.com", From: "shop@example.com"})
	raw := string(m.compose(Message{To: "buyer@example.com", Subject: "Invoice", Body: "line one\nline two"}))

	assert.True(t, strings.HasPrefix(raw, "From: shop@example.com\r\n"))
	assert.Contains(t, raw, "To: buyer@example.com\r\n")
	assert.Contains(t, raw, "Subject: Invoice\r\n")
	assert.Contains(t, raw, "line one\r\nline two")
}

func TestSendFailsWhenRelayUnreachable(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "127.0.0.1", Port: 1, From: "shop@example.com"})
	err := m.Send(context.Background(), Message{To: "buyer@example.com"})
	assert.Error(t, err)
}
