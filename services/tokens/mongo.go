package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const CollectionName = "tokens"

type MongoStore struct {
	coll   *mongo.Collection
	logger *logging.Service
}

func NewMongoStore(db *mongo.Database, logger *logging.Service) *MongoStore {
	return &MongoStore{coll: db.Collection(CollectionName), logger: logger}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("token_hash_unique"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "purpose", Value: 1}},
			Options: options.Index().SetName("user_purpose"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create token indexes: %w", err)
	}
	return nil
}

// Replace is two single-document operations, not a transaction. A concurrent
// request for the same user and purpose can leave two live tokens.
func (s *MongoStore) Replace(ctx context.Context, token *Token) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	if _, err := s.coll.DeleteMany(ctx, bson.M{"userId": token.UserID, "purpose": token.Purpose}); err != nil {
		s.logger.Error("failed to delete previous tokens", zap.Error(err), zap.String("user_id", token.UserID))
		return fmt.Errorf("failed to delete previous tokens: %w", err)
	}
	if _, err := s.coll.InsertOne(ctx, token); err != nil {
		s.logger.Error("failed to insert token", zap.Error(err), zap.String("user_id", token.UserID))
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func (s *MongoStore) FindLive(ctx context.Context, purpose Purpose, hash string, now time.Time) (*Token, error) {
	filter := bson.M{
		"tokenHash": hash,
		"purpose":   purpose,
		"expiresAt": bson.M{"$gt": now},
	}

	var token Token
	if err := s.coll.FindOne(ctx, filter).Decode(&token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	return &token, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}
