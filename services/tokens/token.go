package tokens

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

type Purpose string

const (
	PurposeVerification Purpose = "verification"
	PurposeReset        Purpose = "reset"
)

var ErrNotFound = errors.New("token not found or expired")

// Token is a single-use secret owned by a user. Only the SHA-256 of the clear
// value is stored; the clear value exists in the emailed link alone.
type Token struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID    string    `gorm:"size:36;not null;index:idx_tokens_user_purpose" bson:"userId" json:"userId"`
	Purpose   Purpose   `gorm:"size:16;not null;index:idx_tokens_user_purpose" bson:"purpose" json:"purpose"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" bson:"tokenHash" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `gorm:"not null;index" bson:"expiresAt" json:"expiresAt"`
}

type Store interface {
	// Replace deletes every token the user holds for token.Purpose, then
	// inserts token.
	Replace(ctx context.Context, token *Token) error
	// FindLive returns the token with the given hash and purpose whose expiry
	// is after now.
	FindLive(ctx context.Context, purpose Purpose, hash string, now time.Time) (*Token, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUser removes every token the user holds, of any purpose.
	DeleteByUser(ctx context.Context, userID string) error
}

// Generate returns a fresh clear value and its hash. The clear value is
// size random bytes hex-encoded, suffixed with the owning user's id.
func Generate(userID string, size int) (clear string, hash string, err error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	clear = hex.EncodeToString(buf) + userID
	return clear, Hash(clear), nil
}

func Hash(clear string) string {
	sum := sha256.Sum256([]byte(clear))
	return hex.EncodeToString(sum[:])
}
