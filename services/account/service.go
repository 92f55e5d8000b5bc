package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/tech-arch1tect/sparkauth/services/mail"
	"github.com/tech-arch1tect/sparkauth/services/metrics"
	"github.com/tech-arch1tect/sparkauth/services/tokens"
	"github.com/tech-arch1tect/sparkauth/services/users"
	"go.uber.org/zap"
)

type Mailer interface {
	SendTemplate(ctx context.Context, msg mail.Message) error
}

type SessionIssuer interface {
	Issue(userID string) (string, error)
}

type Service struct {
	config  *config.Config
	users   users.Store
	tokens  tokens.Store
	issuer  SessionIssuer
	mailer  Mailer
	logger  *logging.Service
	metrics metrics.Recorder
	now     func() time.Time
}

func NewService(
	cfg *config.Config,
	userStore users.Store,
	tokenStore tokens.Store,
	issuer SessionIssuer,
	mailer Mailer,
	logger *logging.Service,
	recorder metrics.Recorder,
) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		config:  cfg,
		users:   userStore,
		tokens:  tokenStore,
		issuer:  issuer,
		mailer:  mailer,
		logger:  logger.With(zap.String("component", "account")),
		metrics: recorder,
		now:     time.Now,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*users.User, string, error) {
	trim(&in.Name, &in.Email)
	if err := in.Validate(); err != nil {
		return nil, "", ErrMissingFields
	}
	if err := s.checkPasswordLength(in.Password); err != nil {
		return nil, "", err
	}
	if !validEmail(in.Email) {
		return nil, "", ErrInvalidEmail
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		s.metrics.AuthEvent("register", "exists")
		return nil, "", ErrUserExists
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, "", err
	}

	user := &users.User{
		Name:  in.Name,
		Email: in.Email,
		Role:  users.RoleUser,
		Photo: s.config.Auth.DefaultPhoto,
		Bio:   s.config.Auth.DefaultBio,
	}
	user.SetPassword(in.Password)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			s.metrics.AuthEvent("register", "exists")
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	s.metrics.AuthEvent("register", "success")
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*users.User, string, error) {
	trim(&in.Email)
	if err := in.Validate(); err != nil {
		return nil, "", ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.metrics.AuthEvent("login", "unknown_email")
			return nil, "", ErrUnknownEmail
		}
		return nil, "", err
	}

	if !user.CheckPassword(in.Password) {
		s.logger.Warn("login failed: invalid credentials", zap.String("user_id", user.ID))
		s.metrics.AuthEvent("login", "invalid_credentials")
		return nil, "", ErrInvalidCredential
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.metrics.AuthEvent("login", "success")
	return user, token, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*users.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the non-empty fields of in and returns the record as
// stored.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*users.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	trim(&in.Name, &in.Bio, &in.Photo)
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Photo != "" {
		user.Photo = in.Photo
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// RequestVerification replaces the user's verification token and emails a
// link carrying its clear value.
func (s *Service) RequestVerification(ctx context.Context, user *users.User) error {
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	clear, err := s.issueToken(ctx, user.ID, tokens.PurposeVerification, s.config.Auth.VerificationTokenExpiry)
	if err != nil {
		return err
	}

	err = s.mailer.SendTemplate(ctx, mail.Message{
		Template: mail.TemplateEmailVerification,
		To:       user.Email,
		Subject:  "Email Verification - " + s.config.App.Name,
		Name:     user.Name,
		URL:      s.clientLink("verify-email", clear),
	})
	if err != nil {
		s.logger.Error("verification email failed", zap.Error(err), zap.String("user_id", user.ID))
		s.metrics.AuthEvent("verification_request", "mail_failed")
		return ErrEmailNotSent
	}

	s.metrics.AuthEvent("verification_request", "success")
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, clear string) error {
	clear = strings.TrimSpace(clear)
	if clear == "" {
		return ErrEmptyVerification
	}

	token, err := s.tokens.FindLive(ctx, tokens.PurposeVerification, tokens.Hash(clear), s.now())
	if err != nil {
		if errors.Is(err, tokens.ErrNotFound) {
			s.metrics.AuthEvent("verify", "invalid_token")
			return ErrBadVerification
		}
		return err
	}

	user, err := s.Profile(ctx, token.UserID)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	user.IsVerified = true
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		s.logger.Warn("failed to delete consumed verification token", zap.Error(err), zap.String("token_id", token.ID))
	}

	s.logger.Info("user verified", zap.String("user_id", user.ID))
	s.metrics.AuthEvent("verify", "success")
	return nil
}

func (s *Service) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	trim(&in.Email)
	if in.Email == "" {
		return ErrEmailRequired
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.metrics.AuthEvent("forgot_password", "unknown_email")
			return ErrUserNotFound
		}
		return err
	}

	clear, err := s.issueToken(ctx, user.ID, tokens.PurposeReset, s.config.Auth.ResetTokenExpiry)
	if err != nil {
		return err
	}

	err = s.mailer.SendTemplate(ctx, mail.Message{
		Template: mail.TemplateForgotPassword,
		To:       user.Email,
		Subject:  "Password Reset - " + s.config.App.Name,
		Name:     user.Name,
		URL:      s.clientLink("reset-password", clear),
	})
	if err != nil {
		s.logger.Error("password reset email failed", zap.Error(err), zap.String("user_id", user.ID))
		s.metrics.AuthEvent("forgot_password", "mail_failed")
		return ErrEmailNotSent
	}

	s.metrics.AuthEvent("forgot_password", "success")
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, clear string, in ResetPasswordInput) error {
	if in.Password == "" {
		return ErrPasswordRequired
	}
	if err := s.checkPasswordLength(in.Password); err != nil {
		return err
	}

	token, err := s.tokens.FindLive(ctx, tokens.PurposeReset, tokens.Hash(strings.TrimSpace(clear)), s.now())
	if err != nil {
		if errors.Is(err, tokens.ErrNotFound) {
			s.metrics.AuthEvent("reset_password", "invalid_token")
			return ErrBadResetToken
		}
		return err
	}

	user, err := s.Profile(ctx, token.UserID)
	if err != nil {
		return err
	}

	user.SetPassword(in.Password)
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		s.logger.Warn("failed to delete consumed reset token", zap.Error(err), zap.String("token_id", token.ID))
	}

	s.logger.Info("password reset", zap.String("user_id", user.ID))
	s.metrics.AuthEvent("reset_password", "success")
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return ErrMissingFields
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(in.CurrentPassword) {
		s.metrics.AuthEvent("change_password", "invalid_password")
		return ErrInvalidPassword
	}
	if err := s.checkPasswordLength(in.NewPassword); err != nil {
		return err
	}

	user.SetPassword(in.NewPassword)
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	s.metrics.AuthEvent("change_password", "success")
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]users.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, ErrCannotListUsers
	}
	return all, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("failed to delete user", zap.Error(err), zap.String("user_id", id))
		return ErrCannotDeleteUser
	}
	if err := s.tokens.DeleteByUser(ctx, id); err != nil {
		s.logger.Warn("failed to delete tokens of deleted user", zap.Error(err), zap.String("user_id", id))
	}

	s.logger.Info("user deleted", zap.String("user_id", id))
	s.metrics.AuthEvent("delete_user", "success")
	return nil
}

func (s *Service) issueToken(ctx context.Context, userID string, purpose tokens.Purpose, ttl time.Duration) (string, error) {
	clear, hash, err := tokens.Generate(userID, s.config.Auth.TokenBytes)
	if err != nil {
		return "", err
	}

	now := s.now()
	err = s.tokens.Replace(ctx, &tokens.Token{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %s token: %w", purpose, err)
	}
	return clear, nil
}

func (s *Service) checkPasswordLength(password string) error {
	if !longEnough(password, s.config.Auth.MinPasswordLength) {
		return passwordTooShort(s.config.Auth.MinPasswordLength)
	}
	if !shortEnough(password) {
		return ErrPasswordTooLong
	}
	return nil
}

func (s *Service) clientLink(route, clear string) string {
	return strings.TrimRight(s.config.App.ClientURL, "/") + "/" + route + "/" + clear
}
