package mail

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockMailClient struct {
	sendFunc func(msg *mail.Msg) error
	sent     []*mail.Msg
}

func (m *MockMailClient) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	for _, msg := range messages {
		m.sent = append(m.sent, msg)
		if m.sendFunc != nil {
			if err := m.sendFunc(msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func getTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "TechSpark"},
		Mail: config.MailConfig{
			Driver:      "log",
			Host:        "localhost",
			Port:        587,
			Encryption:  "tls",
			FromAddress: "noreply@techspark.dev",
			FromName:    "TechSpark",
			ReplyTo:     "noreply@noreply.com",
		},
	}
}

func partContents(t *testing.T, msg *mail.Msg) map[mail.ContentType]string {
	t.Helper()
	out := make(map[mail.ContentType]string)
	for _, part := range msg.GetParts() {
		content, err := part.GetContent()
		require.NoError(t, err)
		out[part.GetContentType()] = string(content)
	}
	return out
}

func TestNewService(t *testing.T) {
	t.Run("with mock client", func(t *testing.T) {
		client := &MockMailClient{}

		service, err := NewServiceWithClient(getTestConfig(), nil, client)

		require.NoError(t, err)
		assert.Equal(t, client, service.client)
		assert.NotNil(t, service.htmlTemplates.Lookup("emailVerification.html"))
		assert.NotNil(t, service.textTemplates.Lookup("forgotPassword.txt"))
	})

	t.Run("missing from address", func(t *testing.T) {
		cfg := getTestConfig()
		cfg.Mail.FromAddress = ""

		service, err := NewServiceWithClient(cfg, nil, &MockMailClient{})

		require.Error(t, err)
		assert.Nil(t, service)
		assert.Contains(t, err.Error(), "MAIL_FROM_ADDRESS is required")
	})

	t.Run("log driver", func(t *testing.T) {
		service, err := NewService(getTestConfig(), nil)

		require.NoError(t, err)
		assert.IsType(t, &LogClient{}, service.client)
	})

	t.Run("smtp driver", func(t *testing.T) {
		cfg := getTestConfig()
		cfg.Mail.Driver = "smtp"
		cfg.Mail.Username = "mailer"
		cfg.Mail.Password = "hunter22"

		service, err := NewService(cfg, nil)

		require.NoError(t, err)
		assert.IsType(t, &mail.Client{}, service.client)
	})
}

func TestService_TemplateOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "emailVerification.txt"), []byte("custom {{.URL}}"), 0o644))

	cfg := getTestConfig()
	cfg.Mail.TemplatesDir = dir
	client := &MockMailClient{}
	service, err := NewServiceWithClient(cfg, nil, client)
	require.NoError(t, err)

	err = service.SendTemplate(context.Background(), Message{
		Template: TemplateEmailVerification,
		To:       "ada@example.com",
		Subject:  "Verify",
		URL:      "http://client/verify-email/abc",
	})
	require.NoError(t, err)

	parts := partContents(t, client.sent[0])
	assert.Equal(t, "custom http://client/verify-email/abc", parts[mail.TypeTextPlain])
	assert.Contains(t, parts[mail.TypeTextHTML], "Verify email")
}

func TestService_MissingTemplatesDirUsesDefaults(t *testing.T) {
	cfg := getTestConfig()
	cfg.Mail.TemplatesDir = "/non/existent/path"

	service, err := NewServiceWithClient(cfg, nil, &MockMailClient{})

	require.NoError(t, err)
	assert.NotNil(t, service.htmlTemplates.Lookup("forgotPassword.html"))
}

func TestService_SendTemplate(t *testing.T) {
	t.Run("renders both parts and headers", func(t *testing.T) {
		client := &MockMailClient{}
		service, err := NewServiceWithClient(getTestConfig(), nil, client)
		require.NoError(t, err)

		err = service.SendTemplate(context.Background(), Message{
			Template: TemplateForgotPassword,
			To:       "ada@example.com",
			Subject:  "Password Reset - TechSpark",
			Name:     "Ada",
			URL:      "http://localhost:3000/reset-password/tok",
		})
		require.NoError(t, err)
		require.Len(t, client.sent, 1)

		msg := client.sent[0]
		assert.Equal(t, []string{"<ada@example.com>"}, msg.GetToString())
		assert.Equal(t, []string{"Password Reset - TechSpark"}, msg.GetGenHeader(mail.HeaderSubject))
		assert.Contains(t, strings.Join(msg.GetGenHeader(mail.HeaderReplyTo), ","), "noreply@noreply.com")

		from, err := msg.GetSender(false)
		require.NoError(t, err)
		assert.Contains(t, from, "noreply@techspark.dev")

		parts := partContents(t, msg)
		assert.Contains(t, parts[mail.TypeTextHTML], "Hello Ada")
		assert.Contains(t, parts[mail.TypeTextHTML], "http://localhost:3000/reset-password/tok")
		assert.Contains(t, parts[mail.TypeTextPlain], "http://localhost:3000/reset-password/tok")
	})

	t.Run("explicit reply-to wins", func(t *testing.T) {
		client := &MockMailClient{}
		service, err := NewServiceWithClient(getTestConfig(), nil, client)
		require.NoError(t, err)

		err = service.SendTemplate(context.Background(), Message{
			Template: TemplateEmailVerification,
			To:       "ada@example.com",
			Subject:  "Email Verification - TechSpark",
			ReplyTo:  "noreply@gmail.com",
		})
		require.NoError(t, err)

		assert.Contains(t, strings.Join(client.sent[0].GetGenHeader(mail.HeaderReplyTo), ","), "noreply@gmail.com")
	})

	t.Run("unknown template", func(t *testing.T) {
		client := &MockMailClient{}
		service, err := NewServiceWithClient(getTestConfig(), nil, client)
		require.NoError(t, err)

		err = service.SendTemplate(context.Background(), Message{Template: "welcome", To: "ada@example.com"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "template 'welcome' not found")
		assert.Empty(t, client.sent)
	})

	t.Run("invalid recipient", func(t *testing.T) {
		service, err := NewServiceWithClient(getTestConfig(), nil, &MockMailClient{})
		require.NoError(t, err)

		err = service.SendTemplate(context.Background(), Message{Template: TemplateEmailVerification, To: "not-an-email"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to set TO address")
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &MockMailClient{sendFunc: func(*mail.Msg) error { return assert.AnError }}
		service, err := NewServiceWithClient(getTestConfig(), nil, client)
		require.NoError(t, err)

		err = service.SendTemplate(context.Background(), Message{Template: TemplateEmailVerification, To: "ada@example.com"})

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestLogClient(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.NewWithLogger(zap.New(core))

	service, err := NewServiceWithClient(getTestConfig(), logger, &LogClient{logger: logger})
	require.NoError(t, err)

	err = service.SendTemplate(context.Background(), Message{
		Template: TemplateEmailVerification,
		To:       "ada@example.com",
		Subject:  "Email Verification - TechSpark",
		URL:      "http://localhost:3000/verify-email/tok",
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("email (log driver)").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["raw"], "Email Verification - TechSpark")
}
