package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GormStore struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewGormStore(db *gorm.DB, logger *logging.Service) *GormStore {
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) Replace(ctx context.Context, token *Token) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	// sqlite compares timestamps as text, so keep a single offset
	token.CreatedAt = token.CreatedAt.UTC()
	token.ExpiresAt = token.ExpiresAt.UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND purpose = ?", token.UserID, token.Purpose).Delete(&Token{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous tokens: %w", err)
		}
		if err := tx.Create(token).Error; err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("token replace failed",
			zap.Error(err),
			zap.String("user_id", token.UserID),
			zap.String("purpose", string(token.Purpose)))
		return err
	}
	return nil
}

func (s *GormStore) FindLive(ctx context.Context, purpose Purpose, hash string, now time.Time) (*Token, error) {
	var token Token
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND purpose = ? AND expires_at > ?", hash, purpose, now.UTC()).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	return &token, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Token{}).Error; err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteByUser(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Token{}).Error; err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}
