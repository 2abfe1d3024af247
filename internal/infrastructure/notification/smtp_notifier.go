package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
}

// Addr returns the host:port address of the relay
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// sendFunc matches smtp.SendMail and is swapped out in tests
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends plain-text mail through an SMTP relay. Notify
// returns immediately: delivery runs in a goroutine and failures are
// logged, never returned.
type SMTPNotifier struct {
	config SMTPConfig
	logger *zap.Logger
	send   sendFunc
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(config SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		config: config,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// Notify queues the message for delivery and returns immediately
func (n *SMTPNotifier) Notify(_ context.Context, msg Message) {
	if msg.To == "" {
		n.logger.Debug("Dropping notification without recipient",
			zap.String("subject", msg.Subject),
		)
		return
	}

	go n.deliver(msg)
}

// deliver sends one message, logging the outcome
func (n *SMTPNotifier) deliver(msg Message) {
	started := time.Now()

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	payload := buildPayload(n.config.FromAddress, msg)
	if err := n.send(n.config.Addr(), auth, n.config.FromAddress, []string{msg.To}, payload); err != nil {
		n.logger.Error("Failed to deliver notification",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return
	}

	n.logger.Info("Notification delivered",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Duration("took", time.Since(started)),
	)
}

// buildPayload renders the RFC 5322 message bytes
func buildPayload(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

var _ Notifier = (*SMTPNotifier)(nil)
