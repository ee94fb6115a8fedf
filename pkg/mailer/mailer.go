package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/OsasDev/qirllo-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	TextBody  string
	HTMLBody  string
}

// Mailer delivers outbound email. Delivery is best-effort: callers must not
// roll back domain writes when sending fails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the Sendgrid mailer when an API key is configured and falls back
// to the console mailer for development.
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendgridAPIKey != "" {
		return &SendgridMailer{
			key:         cfg.SendgridAPIKey,
			fromName:    cfg.FromName,
			fromAddress: cfg.FromAddress,
			logger:      logger,
		}
	}
	return &ConsoleMailer{logger: logger}
}

// SendgridMailer delivers mail through the Sendgrid v3 API.
type SendgridMailer struct {
	key         string
	fromName    string
	fromAddress string
	logger      *zap.Logger
}

// Send delivers a single message.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(m.fromName, m.fromAddress)
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	html := msg.HTMLBody
	if html == "" {
		html = msg.TextBody
	}
	mail := sgmail.NewSingleEmail(from, msg.Subject, to, msg.TextBody, html)

	client := sendgrid.NewSendClient(m.key)
	res, err := client.SendWithContext(ctx, mail)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", res.StatusCode, res.Body)
	}

	m.logger.Info("email sent", zap.String("to", msg.ToAddress), zap.String("subject", msg.Subject))
	return nil
}

// ConsoleMailer logs messages instead of delivering them.
type ConsoleMailer struct {
	logger *zap.Logger
}

// Send writes the message to the application log.
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email (console)",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextBody),
	)
	return nil
}
