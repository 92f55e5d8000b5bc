package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmlTemplate "html/template"
	"os"
	"path/filepath"
	textTemplate "text/template"
	"time"

	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const (
	TemplateEmailVerification = "emailVerification"
	TemplateForgotPassword    = "forgotPassword"
)

//go:embed templates/*.html templates/*.txt
var defaultTemplates embed.FS

// Client is the part of *mail.Client the service depends on.
type Client interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Message describes a templated email. Name and URL are exposed to the
// templates as {{.Name}} and {{.URL}}.
type Message struct {
	Template string
	To       string
	Subject  string
	ReplyTo  string
	Name     string
	URL      string
}

type Service struct {
	config        *config.Config
	client        Client
	htmlTemplates *htmlTemplate.Template
	textTemplates *textTemplate.Template
	logger        *logging.Service
}

func NewService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	var client Client
	switch cfg.Mail.Driver {
	case "smtp":
		smtp, err := newSMTPClient(&cfg.Mail, logger)
		if err != nil {
			return nil, err
		}
		client = smtp
	default:
		client = &LogClient{logger: logger}
	}
	return NewServiceWithClient(cfg, logger, client)
}

func NewServiceWithClient(cfg *config.Config, logger *logging.Service, client Client) (*Service, error) {
	if cfg.Mail.FromAddress == "" {
		logger.Error("mail service initialization failed: FROM_ADDRESS is required")
		return nil, errors.New("MAIL_FROM_ADDRESS is required")
	}

	service := &Service{
		config: cfg,
		client: client,
		logger: logger.With(zap.String("component", "mail")),
	}

	if err := service.loadTemplates(); err != nil {
		logger.Error("failed to load mail templates", zap.Error(err))
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}

	logger.Info("mail service initialized", zap.String("driver", cfg.Mail.Driver))
	return service, nil
}

// loadTemplates parses the embedded defaults, then lets files in
// MAIL_TEMPLATES_DIR redefine templates with the same name.
func (s *Service) loadTemplates() error {
	var err error
	s.htmlTemplates, err = htmlTemplate.ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse embedded HTML templates: %w", err)
	}
	s.textTemplates, err = textTemplate.ParseFS(defaultTemplates, "templates/*.txt")
	if err != nil {
		return fmt.Errorf("failed to parse embedded text templates: %w", err)
	}

	dir := s.config.Mail.TemplatesDir
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		s.logger.Warn("mail templates directory not readable, using defaults", zap.String("templates_dir", dir), zap.Error(err))
		return nil
	}

	if matches, _ := filepath.Glob(filepath.Join(dir, "*.html")); len(matches) > 0 {
		if s.htmlTemplates, err = s.htmlTemplates.ParseFiles(matches...); err != nil {
			return fmt.Errorf("failed to parse HTML templates: %w", err)
		}
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "*.txt")); len(matches) > 0 {
		if s.textTemplates, err = s.textTemplates.ParseFiles(matches...); err != nil {
			return fmt.Errorf("failed to parse text templates: %w", err)
		}
	}

	s.logger.Info("mail templates loaded",
		zap.String("templates_dir", dir),
		zap.Int("html_templates", len(s.htmlTemplates.Templates())),
		zap.Int("text_templates", len(s.textTemplates.Templates())))
	return nil
}

func (s *Service) NewMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	var err error
	if s.config.Mail.FromName != "" {
		err = message.FromFormat(s.config.Mail.FromName, s.config.Mail.FromAddress)
	} else {
		err = message.From(s.config.Mail.FromAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}
	return message, nil
}

func (s *Service) SendTemplate(ctx context.Context, msg Message) error {
	s.logger.Info("sending template email",
		zap.String("template", msg.Template),
		zap.String("recipient", msg.To),
		zap.String("subject", msg.Subject))

	message, err := s.NewMessage()
	if err != nil {
		return err
	}

	if err := message.To(msg.To); err != nil {
		s.logger.Warn("invalid recipient address", zap.Error(err), zap.String("recipient", msg.To))
		return fmt.Errorf("failed to set TO address: %w", err)
	}

	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = s.config.Mail.ReplyTo
	}
	if replyTo != "" {
		if err := message.ReplyTo(replyTo); err != nil {
			return fmt.Errorf("failed to set REPLY-TO address: %w", err)
		}
	}

	message.Subject(msg.Subject)

	data := map[string]any{
		"Name":    msg.Name,
		"URL":     msg.URL,
		"AppName": s.config.App.Name,
	}
	if err := s.render(msg.Template, data, message); err != nil {
		s.logger.Error("failed to render template", zap.Error(err), zap.String("template", msg.Template))
		return fmt.Errorf("failed to render template: %w", err)
	}

	return s.Send(ctx, message)
}

func (s *Service) render(name string, data map[string]any, message *mail.Msg) error {
	var rendered bool

	if tmpl := s.htmlTemplates.Lookup(name + ".html"); tmpl != nil {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("failed to execute HTML template: %w", err)
		}
		message.SetBodyString(mail.TypeTextHTML, buf.String())
		rendered = true
	}

	if tmpl := s.textTemplates.Lookup(name + ".txt"); tmpl != nil {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("failed to execute text template: %w", err)
		}
		if rendered {
			message.AddAlternativeString(mail.TypeTextPlain, buf.String())
		} else {
			message.SetBodyString(mail.TypeTextPlain, buf.String())
		}
		rendered = true
	}

	if !rendered {
		return fmt.Errorf("template '%s' not found", name)
	}
	return nil
}

func (s *Service) Send(ctx context.Context, message *mail.Msg) error {
	start := time.Now()
	err := s.client.DialAndSendWithContext(ctx, message)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("failed to send email", zap.Error(err), zap.Duration("attempt_duration", duration))
		return err
	}

	s.logger.Info("email sent", zap.Duration("send_duration", duration))
	return nil
}
