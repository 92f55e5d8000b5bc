package mail

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

func newSMTPClient(cfg *config.MailConfig, logger *logging.Service) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return client, nil
}

// LogClient writes messages to the logger instead of delivering them. It is
// the development driver.
type LogClient struct {
	logger *logging.Service
}

func (c *LogClient) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	for _, msg := range messages {
		to := msg.GetToString()

		var buf bytes.Buffer
		if _, err := msg.WriteTo(&buf); err != nil {
			return fmt.Errorf("failed to render message: %w", err)
		}

		c.logger.Info("email (log driver)",
			zap.Strings("to", to),
			zap.Strings("subject", msg.GetGenHeader(mail.HeaderSubject)),
			zap.String("raw", buf.String()))
	}
	return nil
}
