package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Store interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, error)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type hasher struct {
	cost int
}

func newHasher(cost int) hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return hasher{cost: cost}
}

// prepare applies the write-time invariants shared by every store:
// normalised email, hashed password, role default and timestamps.
func (h hasher) prepare(user *User, creating bool) error {
	now := time.Now()
	user.Email = NormalizeEmail(user.Email)

	if creating {
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		if user.Role == "" {
			user.Role = RoleUser
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
	}
	user.UpdatedAt = now

	if user.pendingPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.pendingPassword), h.cost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hash)
		user.pendingPassword = ""
	}

	if user.Password == "" {
		return errors.New("user password is required")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("invalid role: %s", user.Role)
	}
	return nil
}
