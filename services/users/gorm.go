package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GormStore struct {
	db     *gorm.DB
	hasher hasher
	logger *logging.Service
}

func NewGormStore(db *gorm.DB, bcryptCost int, logger *logging.Service) *GormStore {
	return &GormStore{
		db:     db,
		hasher: newHasher(bcryptCost),
		logger: logger,
	}
}

func (s *GormStore) Create(ctx context.Context, user *User) error {
	if err := s.hasher.prepare(user, true); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		s.logger.Error("failed to create user", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Debug("user created", zap.String("user_id", user.ID))
	return nil
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.first(ctx, "email = ?", NormalizeEmail(email))
}

func (s *GormStore) first(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *GormStore) Save(ctx context.Context, user *User) error {
	if err := s.hasher.prepare(user, false); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"name":        user.Name,
		"email":       user.Email,
		"password":    user.Password,
		"role":        user.Role,
		"photo":       user.Photo,
		"bio":         user.Bio,
		"is_verified": user.IsVerified,
		"updated_at":  user.UpdatedAt,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		s.logger.Error("failed to save user", zap.Error(result.Error), zap.String("user_id", user.ID))
		return fmt.Errorf("failed to save user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if result.Error != nil {
		s.logger.Error("failed to delete user", zap.Error(result.Error), zap.String("user_id", id))
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]User, error) {
	var all []User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return all, nil
}
